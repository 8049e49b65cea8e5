package dropdown

import (
	"context"
	"html"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/tagdrop/internal/logger"
	"github.com/hpungsan/tagdrop/internal/taxonomy"
)

// SelectClass is the class attribute of every rendered dropdown.
const SelectClass = "taxonomy_dropdown_widget_dropdown"

// NavigateScript is the inline onchange handler that follows the chosen option.
const NavigateScript = "document.location.href=this.options[this.selectedIndex].value;"

// Renderer turns terms into <select> markup.
type Renderer struct {
	terms TermSource
	links LinkResolver
	log   *zap.Logger

	filters       []QueryFilter
	legacyFilters []QueryFilter
}

// NewRenderer creates a Renderer over a term source and link resolver.
func NewRenderer(terms TermSource, links LinkResolver, log *zap.Logger) *Renderer {
	return &Renderer{terms: terms, links: links, log: logger.Component(log, "renderer")}
}

// AddFilter registers a query filter. Filters run in registration order.
// Register filters before the renderer is shared across goroutines.
func (r *Renderer) AddFilter(f QueryFilter) {
	r.filters = append(r.filters, f)
}

// AddLegacyFilter registers a filter that runs after every current filter.
func (r *Renderer) AddLegacyFilter(f QueryFilter) {
	r.legacyFilters = append(r.legacyFilters, f)
}

// Render produces the dropdown for opts. ok is false when there is nothing
// to show: the query failed, returned no terms, or every term was filtered.
func (r *Renderer) Render(ctx context.Context, opts Options, id InstanceID) (markup string, ok bool) {
	q := BuildQuery(opts)
	for _, f := range r.filters {
		q = f(q, id)
	}
	for _, f := range r.legacyFilters {
		q = f(q, id)
	}

	log := r.log.With(
		zap.String(logger.FieldTaxonomy, opts.Taxonomy),
		zap.String(logger.FieldInstanceID, id.String()))

	terms, err := r.terms.QueryTerms(ctx, opts.Taxonomy, q)
	if err != nil {
		log.Debug("term query failed", zap.Error(err))
		return "", false
	}
	if len(terms) == 0 {
		return "", false
	}

	view := ViewFromContext(ctx)

	var b strings.Builder
	b.WriteString(`<select name="`)
	b.WriteString(html.EscapeString(id.FieldName()))
	b.WriteString(`" class="` + SelectClass + `" onchange="` + NavigateScript + `"`)
	if domID := id.DOMID(); domID != "" {
		b.WriteString(` id="`)
		b.WriteString(html.EscapeString(domID))
		b.WriteString(`"`)
	}
	b.WriteString(`>`)
	b.WriteString(`<option value="">`)
	b.WriteString(html.EscapeString(opts.SelectName))
	b.WriteString(`</option>`)

	rendered := 0
	for _, t := range terms {
		if opts.Threshold > 0 && t.Count < opts.Threshold {
			continue
		}

		link, err := r.links.TermLink(ctx, t)
		if err != nil || link == "" {
			log.Debug("term link unavailable",
				zap.Int64(logger.FieldTerm, t.ID),
				zap.Error(err))
			continue
		}

		b.WriteString(`<option value="`)
		b.WriteString(html.EscapeString(link))
		b.WriteString(`"`)
		if view != nil && view.IsViewingTerm(opts.Taxonomy, t.Slug) {
			b.WriteString(` selected="selected"`)
		}
		b.WriteString(`>`)
		// Truncation counts runes of the stored name; escaping comes after so
		// an entity is never cut in half.
		b.WriteString(html.EscapeString(displayName(t, opts)))
		b.WriteString(`</option>`)
		rendered++
	}

	if rendered == 0 {
		return "", false
	}

	b.WriteString(`</select>`)
	return b.String(), true
}

// displayName truncates the term name to MaxNameLength characters, appending
// Cutoff when it was cut, then adds the count when PostCounts is set.
func displayName(t taxonomy.Term, opts Options) string {
	name := Truncate(t.Name, opts.MaxNameLength, opts.Cutoff)
	if opts.PostCounts {
		name += " (" + strconv.Itoa(t.Count) + ")"
	}
	return name
}

// Truncate shortens s to n characters plus cutoff. n <= 0 leaves s intact.
func Truncate(s string, n int, cutoff string) string {
	if n <= 0 || taxonomy.CountChars(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + cutoff
}
