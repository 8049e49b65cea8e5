package dropdown

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/hpungsan/tagdrop/internal/logger"
	"github.com/hpungsan/tagdrop/internal/taxonomy"
)

// Sanitizer maps arbitrary input onto a valid Options record.
type Sanitizer struct {
	registry TaxonomyRegistry
	log      *zap.Logger
}

// NewSanitizer creates a Sanitizer. A nil registry rejects every taxonomy.
func NewSanitizer(registry TaxonomyRegistry, log *zap.Logger) *Sanitizer {
	return &Sanitizer{registry: registry, log: logger.Component(log, "sanitizer")}
}

// Sanitize validates each recognized key of raw and fills the rest from
// Defaults. It never fails: rejected values fall back to their default.
func (s *Sanitizer) Sanitize(ctx context.Context, raw map[string]any) Options {
	opts := Defaults()

	for _, key := range Keys {
		v, ok := raw[key]
		if !ok {
			continue
		}

		switch key {
		case KeyTaxonomy:
			if name, ok := v.(string); ok && s.taxonomyExists(ctx, name) {
				opts.Taxonomy = name
			}
		case KeyTitle:
			opts.Title = taxonomy.SanitizeText(toText(v))
		case KeySelectName:
			if text := taxonomy.SanitizeText(toText(v)); text != "" {
				opts.SelectName = text
			}
		case KeyCutoff:
			if text := taxonomy.SanitizeText(toText(v)); text != "" {
				opts.Cutoff = text
			}
		case KeyMaxNameLength:
			opts.MaxNameLength = nonNegative(v)
		case KeyLimit:
			opts.Limit = nonNegative(v)
		case KeyThreshold:
			opts.Threshold = nonNegative(v)
		case KeyOrder:
			if o, ok := v.(string); ok && (Order(o) == OrderASC || Order(o) == OrderDESC) {
				opts.Order = Order(o)
			}
		case KeyOrderBy:
			if o, ok := v.(string); ok && (OrderBy(o) == OrderByName || OrderBy(o) == OrderByCount) {
				opts.OrderBy = OrderBy(o)
			}
		case KeyIncExc:
			if o, ok := v.(string); ok && (IncExc(o) == Include || IncExc(o) == Exclude) {
				opts.IncExc = IncExc(o)
			}
		case KeyIncExcIDs:
			ids := toIDList(v)
			slices.Sort(ids)
			opts.IncExcIDs = ids
		case KeyHideEmpty:
			opts.HideEmpty = truthy(v)
		case KeyPostCounts:
			opts.PostCounts = truthy(v)
		}
	}

	return opts
}

func (s *Sanitizer) taxonomyExists(ctx context.Context, name string) bool {
	if s.registry == nil || name == "" {
		return false
	}
	ok, err := s.registry.TaxonomyExists(ctx, name)
	if err != nil {
		s.log.Debug("taxonomy lookup failed",
			zap.String(logger.FieldTaxonomy, name),
			zap.Error(err))
		return false
	}
	return ok
}
