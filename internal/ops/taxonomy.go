package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/tagdrop/internal/db"
	"github.com/hpungsan/tagdrop/internal/errors"
	"github.com/hpungsan/tagdrop/internal/taxonomy"
)

// RegisterTaxonomyInput contains parameters for the RegisterTaxonomy operation.
type RegisterTaxonomyInput struct {
	Name         string // required
	Label        string // default: Name
	Public       *bool  // default: true
	Hierarchical bool
}

// RegisterTaxonomyOutput contains the result of the RegisterTaxonomy operation.
type RegisterTaxonomyOutput struct {
	Taxonomy taxonomy.Taxonomy `json:"taxonomy"`
}

// RegisterTaxonomy creates a taxonomy or replaces the label and flags of an
// existing one.
func RegisterTaxonomy(ctx context.Context, database *sql.DB, input RegisterTaxonomyInput) (*RegisterTaxonomyOutput, error) {
	name := taxonomy.Normalize(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	if !taxonomy.ValidName(name) {
		return nil, errors.NewInvalidRequest("name must be 1-32 characters of a-z, 0-9, _ or -")
	}

	label := taxonomy.SanitizeText(input.Label)
	if label == "" {
		label = name
	}
	public := true
	if input.Public != nil {
		public = *input.Public
	}

	t := taxonomy.Taxonomy{Name: name, Label: label, Public: public, Hierarchical: input.Hierarchical}
	if err := db.UpsertTaxonomy(ctx, database, t); err != nil {
		return nil, err
	}
	return &RegisterTaxonomyOutput{Taxonomy: t}, nil
}

// ListTaxonomiesInput contains parameters for the ListTaxonomies operation.
type ListTaxonomiesInput struct {
	// All includes private, hierarchical and reserved taxonomies.
	All bool
}

// ListTaxonomiesOutput contains the result of the ListTaxonomies operation.
type ListTaxonomiesOutput struct {
	Items []taxonomy.Taxonomy `json:"items"`
}

// ListTaxonomies lists the taxonomies a dropdown may use, or all of them.
func ListTaxonomies(ctx context.Context, database *sql.DB, input ListTaxonomiesInput) (*ListTaxonomiesOutput, error) {
	all, err := db.ListTaxonomies(ctx, database)
	if err != nil {
		return nil, err
	}

	items := []taxonomy.Taxonomy{}
	for _, t := range all {
		if input.All || t.Selectable() {
			items = append(items, t)
		}
	}
	return &ListTaxonomiesOutput{Items: items}, nil
}

// TaxonomyExists reports whether name is a registered, non-hierarchical taxonomy.
func TaxonomyExists(ctx context.Context, database *sql.DB, name string) (bool, error) {
	t, err := db.GetTaxonomy(ctx, database, name)
	if errors.Is(err, errors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !t.Hierarchical, nil
}
