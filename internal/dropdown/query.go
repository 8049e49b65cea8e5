package dropdown

import (
	"context"

	"github.com/hpungsan/tagdrop/internal/taxonomy"
)

// TermQuery is what the renderer asks the term store for.
type TermQuery struct {
	Order        Order
	OrderBy      OrderBy
	HideEmpty    bool
	Hierarchical bool
	// Number caps the result size; 0 means no cap.
	Number  int
	Include []int64
	Exclude []int64
}

// QueryFilter may rewrite the query before it is dispatched.
type QueryFilter func(q TermQuery, id InstanceID) TermQuery

// TermSource lists the terms of a taxonomy. Implementations apply the
// ordering, limiting and include/exclude semantics of the query.
type TermSource interface {
	QueryTerms(ctx context.Context, taxonomyName string, q TermQuery) ([]taxonomy.Term, error)
}

// LinkResolver returns the archive URL of a term already fetched from the
// TermSource.
type LinkResolver interface {
	TermLink(ctx context.Context, t taxonomy.Term) (string, error)
}

// TaxonomyRegistry reports whether a taxonomy may back a dropdown.
type TaxonomyRegistry interface {
	TaxonomyExists(ctx context.Context, name string) (bool, error)
}

// Host bundles everything the dropdown needs from the platform.
type Host interface {
	TermSource
	LinkResolver
	TaxonomyRegistry
}

// ViewContext reports which term archive, if any, is being viewed.
type ViewContext interface {
	IsViewingTerm(taxonomyName, slug string) bool
}

// Viewing is the ViewContext of a single term archive page.
type Viewing struct {
	Taxonomy string
	Slug     string
}

// IsViewingTerm implements ViewContext.
func (v Viewing) IsViewingTerm(taxonomyName, slug string) bool {
	return v.Slug != "" && v.Taxonomy == taxonomyName && v.Slug == slug
}

type viewKey struct{}

// WithView attaches the request's view context to ctx.
func WithView(ctx context.Context, v ViewContext) context.Context {
	return context.WithValue(ctx, viewKey{}, v)
}

// ViewFromContext returns the view attached by WithView, or nil.
func ViewFromContext(ctx context.Context) ViewContext {
	v, _ := ctx.Value(viewKey{}).(ViewContext)
	return v
}

// BuildQuery derives the base term query from sanitized options.
func BuildQuery(opts Options) TermQuery {
	q := TermQuery{
		Order:     opts.Order,
		OrderBy:   opts.OrderBy,
		HideEmpty: opts.HideEmpty,
	}
	if opts.Limit > 0 {
		q.Number = opts.Limit
	}
	if len(opts.IncExcIDs) > 0 {
		ids := append([]int64(nil), opts.IncExcIDs...)
		if opts.IncExc == Include {
			q.Include = ids
		} else {
			q.Exclude = ids
		}
	}
	return q
}
