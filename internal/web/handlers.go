package web

import (
	"context"
	"database/sql"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/tagdrop/internal/config"
	"github.com/hpungsan/tagdrop/internal/dropdown"
	"github.com/hpungsan/tagdrop/internal/errors"
	"github.com/hpungsan/tagdrop/internal/logger"
	"github.com/hpungsan/tagdrop/internal/ops"
)

// Handlers contains HTTP route handlers for the host pages.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	svc      *dropdown.Service
	renderer *Renderer
	log      *zap.Logger
}

// HandleHome handles GET /: every stored widget as a sidebar. Query-string
// term links (?taxonomy=...&term=...) are served as archive pages.
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if slug := q.Get("term"); slug != "" {
		h.renderArchive(w, r, q.Get("taxonomy"), slug)
		return
	}

	sidebar, widgets, err := h.sidebar(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	terms, err := ops.ListTerms(r.Context(), h.db, ops.ListTermsInput{
		Taxonomy: q.Get("taxonomy"),
		OrderBy:  "count",
		Order:    "DESC",
		Limit:    parseIntParam(r, "limit", ops.DefaultListLimit),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	items := make([]ops.TermOutput, 0, len(terms.Items))
	for _, t := range terms.Items {
		items = append(items, ops.TermOutput{Term: t, Link: ops.TermURL(h.cfg, t)})
	}

	h.renderer.renderPage(w, "home", HomePageData{
		PageData: PageData{
			Title:   "Tags",
			Version: h.renderer.version,
			Nav:     "home",
		},
		Sidebar: sidebar,
		Widgets: widgets,
		Terms:   items,
	})
}

// HandleArchive handles GET /{base}/{slug}/: a term archive page with the
// viewed term pre-selected in every dropdown.
func (h *Handlers) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.renderArchive(w, r, taxonomyForBase(h.cfg, r.PathValue("base")), r.PathValue("slug"))
}

func (h *Handlers) renderArchive(w http.ResponseWriter, r *http.Request, taxonomyName, slug string) {
	term, err := ops.FetchTerm(r.Context(), h.db, h.cfg, ops.FetchTermInput{
		Taxonomy: taxonomyName,
		Slug:     slug,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	ctx := dropdown.WithView(r.Context(), dropdown.Viewing{Taxonomy: term.Taxonomy, Slug: term.Slug})
	sidebar, _, err := h.sidebar(ctx)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "archive", ArchivePageData{
		PageData: PageData{
			Title:   term.Name,
			Version: h.renderer.version,
			Nav:     "archive",
		},
		Term:        term,
		Description: renderMarkdown(term.Description),
		Sidebar:     sidebar,
	})
}

// HandleDropdown handles GET /dropdown: the template helper. Query
// parameters form the raw options bag and "id" names the instance. Responds
// with the bare <select> fragment, or 204 when there are no terms to show.
func (h *Handlers) HandleDropdown(w http.ResponseWriter, r *http.Request) {
	raw, id := optionsFromQuery(r)

	out, err := ops.RenderDropdown(r.Context(), h.svc, ops.RenderDropdownInput{Options: raw, ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if out.NoTerms {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out.Markup))
}

// HandleTaxonomies handles GET /api/taxonomies: the taxonomies a dropdown
// may use, or all of them with ?all=true.
func (h *Handlers) HandleTaxonomies(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ListTaxonomies(r.Context(), h.db, ops.ListTaxonomiesInput{All: parseBoolParam(r, "all")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// sidebar renders every stored widget in number order, skipping the ones
// with nothing to show. Markup comes from the dropdown renderer, which
// escapes all term and option text.
func (h *Handlers) sidebar(ctx context.Context) ([]template.HTML, int, error) {
	var out []template.HTML
	total := 0
	for offset := 0; ; {
		list, err := ops.ListWidgets(ctx, h.db, ops.ListWidgetsInput{Limit: ops.MaxListLimit, Offset: offset})
		if err != nil {
			return nil, 0, err
		}
		total = list.Pagination.Total

		for _, wdg := range list.Items {
			res, err := ops.DisplayWidget(ctx, h.db, h.svc, ops.DisplayWidgetInput{ID: wdg.ID})
			if err != nil {
				if errors.Is(err, errors.ErrNotFound) {
					continue
				}
				return nil, 0, err
			}
			if res.Empty {
				h.log.Debug("widget has no terms", zap.Int64(logger.FieldInstanceID, res.Number))
				continue
			}
			out = append(out, template.HTML(res.Markup))
		}

		if !list.Pagination.HasMore || len(list.Items) == 0 {
			break
		}
		offset += len(list.Items)
	}
	return out, total, nil
}

// optionsFromQuery turns query parameters into a raw options bag. Repeated
// keys (and PHP-style "key[]" keys) become lists.
func optionsFromQuery(r *http.Request) (map[string]any, any) {
	var id any
	raw := make(map[string]any)
	for key, values := range r.URL.Query() {
		if key == "id" {
			if len(values) > 0 {
				id = values[0]
			}
			continue
		}
		list := strings.HasSuffix(key, "[]")
		key = strings.TrimSuffix(key, "[]")
		if len(values) == 1 && !list {
			raw[key] = values[0]
			continue
		}
		raw[key] = append([]string(nil), values...)
	}
	return raw, id
}

// taxonomyForBase maps an archive path segment back to its taxonomy.
// Segments that are not a configured permalink base name the taxonomy itself.
func taxonomyForBase(cfg *config.Config, base string) string {
	for name := range cfg.PermalinkBases {
		if cfg.PermalinkBase(name) == base {
			return name
		}
	}
	return base
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
