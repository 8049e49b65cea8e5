// Package dropdown turns a loosely typed options bag into a validated
// Options record and renders flat taxonomy terms as a navigating <select>.
package dropdown

import "github.com/hpungsan/tagdrop/internal/taxonomy"

// Order is the sort direction of the term query.
type Order string

const (
	OrderASC  Order = "ASC"
	OrderDESC Order = "DESC"
)

// OrderBy is the term field the query sorts on.
type OrderBy string

const (
	OrderByName  OrderBy = "name"
	OrderByCount OrderBy = "count"
)

// IncExc selects whether IncExcIDs restricts the query to, or removes, the listed terms.
type IncExc string

const (
	Include IncExc = "include"
	Exclude IncExc = "exclude"
)

// Raw option keys, shared by stored settings, JSON requests and form input.
const (
	KeyTaxonomy      = "taxonomy"
	KeyTitle         = "title"
	KeySelectName    = "select_name"
	KeyMaxNameLength = "max_name_length"
	KeyCutoff        = "cutoff"
	KeyLimit         = "limit"
	KeyOrder         = "order"
	KeyOrderBy       = "orderby"
	KeyThreshold     = "threshold"
	KeyIncExc        = "incexc"
	KeyIncExcIDs     = "incexc_ids"
	KeyHideEmpty     = "hide_empty"
	KeyPostCounts    = "post_counts"
)

// Keys lists every recognized option key in sanitizing order.
var Keys = []string{
	KeyTaxonomy, KeyTitle, KeySelectName, KeyMaxNameLength, KeyCutoff,
	KeyLimit, KeyOrder, KeyOrderBy, KeyThreshold, KeyIncExc, KeyIncExcIDs,
	KeyHideEmpty, KeyPostCounts,
}

// Defaults for fields whose input was absent or rejected.
const (
	DefaultSelectName  = "Select Tag"
	DefaultCutoff      = "…"
	DefaultWidgetTitle = "Tags"
)

// Options is a fully validated dropdown configuration. Every field always
// holds a usable value; build one with Defaults or Sanitizer.Sanitize.
type Options struct {
	Taxonomy      string  `json:"taxonomy"`
	Title         string  `json:"title"`
	SelectName    string  `json:"select_name"`
	MaxNameLength int     `json:"max_name_length"` // 0 = no truncation
	Cutoff        string  `json:"cutoff"`
	Limit         int     `json:"limit"` // 0 = no limit
	Order         Order   `json:"order"`
	OrderBy       OrderBy `json:"orderby"`
	Threshold     int     `json:"threshold"`
	IncExc        IncExc  `json:"incexc"`
	IncExcIDs     []int64 `json:"incexc_ids"`
	HideEmpty     bool    `json:"hide_empty"`
	PostCounts    bool    `json:"post_counts"`
}

// Defaults returns the options used when nothing was supplied.
func Defaults() Options {
	return Options{
		Taxonomy:   taxonomy.DefaultTaxonomy,
		SelectName: DefaultSelectName,
		Cutoff:     DefaultCutoff,
		Order:      OrderASC,
		OrderBy:    OrderByName,
		IncExc:     Exclude,
		IncExcIDs:  []int64{},
		HideEmpty:  true,
	}
}

// Map returns the options as a raw bag using the recognized keys.
// Sanitizing the result yields the same Options.
func (o Options) Map() map[string]any {
	ids := make([]any, len(o.IncExcIDs))
	for i, id := range o.IncExcIDs {
		ids[i] = id
	}
	return map[string]any{
		KeyTaxonomy:      o.Taxonomy,
		KeyTitle:         o.Title,
		KeySelectName:    o.SelectName,
		KeyMaxNameLength: o.MaxNameLength,
		KeyCutoff:        o.Cutoff,
		KeyLimit:         o.Limit,
		KeyOrder:         string(o.Order),
		KeyOrderBy:       string(o.OrderBy),
		KeyThreshold:     o.Threshold,
		KeyIncExc:        string(o.IncExc),
		KeyIncExcIDs:     ids,
		KeyHideEmpty:     o.HideEmpty,
		KeyPostCounts:    o.PostCounts,
	}
}
