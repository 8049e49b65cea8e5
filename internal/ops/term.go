package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/tagdrop/internal/config"
	"github.com/hpungsan/tagdrop/internal/db"
	"github.com/hpungsan/tagdrop/internal/errors"
	"github.com/hpungsan/tagdrop/internal/taxonomy"
)

// AddTermInput contains parameters for the AddTerm operation.
type AddTermInput struct {
	Taxonomy    string // default: post_tag
	Name        string // required
	Slug        string // default: derived from Name
	Description string // Markdown
	Count       int
}

// TermOutput is a term together with its archive link.
type TermOutput struct {
	taxonomy.Term
	Link string `json:"link"`
}

// AddTerm creates a term. Slugs are unique per taxonomy.
func AddTerm(ctx context.Context, database *sql.DB, cfg *config.Config, input AddTermInput) (*TermOutput, error) {
	t, err := prepareTerm(input)
	if err != nil {
		return nil, err
	}

	if _, err := db.GetTaxonomy(ctx, database, t.Taxonomy); err != nil {
		return nil, err
	}

	if err := db.InsertTerm(ctx, database, &t); err != nil {
		return nil, err
	}
	return &TermOutput{Term: t, Link: TermURL(cfg, t)}, nil
}

// prepareTerm validates and normalizes an AddTermInput.
func prepareTerm(input AddTermInput) (taxonomy.Term, error) {
	taxonomyName := taxonomy.Normalize(input.Taxonomy)
	if taxonomyName == "" {
		taxonomyName = taxonomy.DefaultTaxonomy
	}

	name := taxonomy.SanitizeText(input.Name)
	if name == "" {
		return taxonomy.Term{}, errors.NewInvalidRequest("name is required")
	}

	slugSource := input.Slug
	if strings.TrimSpace(slugSource) == "" {
		slugSource = name
	}
	slug := taxonomy.Slugify(slugSource)
	if slug == "" {
		return taxonomy.Term{}, errors.NewInvalidRequest("slug must contain at least one letter or digit")
	}

	if input.Count < 0 {
		return taxonomy.Term{}, errors.NewInvalidRequest("count must not be negative")
	}

	return taxonomy.Term{
		Taxonomy:    taxonomyName,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		Count:       input.Count,
	}, nil
}

// ListTermsInput contains parameters for the ListTerms operation.
type ListTermsInput struct {
	Taxonomy  string // default: post_tag
	OrderBy   string // name (default) or count
	Order     string // ASC (default) or DESC
	HideEmpty bool
	Limit     int // default: 20, max: 100
	Offset    int
}

// ListTermsOutput contains the result of the ListTerms operation.
type ListTermsOutput struct {
	Items      []taxonomy.Term `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// ListTerms lists the terms of a taxonomy with pagination.
func ListTerms(ctx context.Context, database *sql.DB, input ListTermsInput) (*ListTermsOutput, error) {
	taxonomyName := taxonomy.Normalize(input.Taxonomy)
	if taxonomyName == "" {
		taxonomyName = taxonomy.DefaultTaxonomy
	}

	f := db.TermFilter{OrderBy: db.TermOrderByName, HideEmpty: input.HideEmpty}
	switch strings.ToLower(strings.TrimSpace(input.OrderBy)) {
	case "", "name":
	case "count":
		f.OrderBy = db.TermOrderByCount
	default:
		return nil, errors.NewInvalidRequest("orderby must be one of: name, count")
	}
	switch strings.ToUpper(strings.TrimSpace(input.Order)) {
	case "", "ASC":
	case "DESC":
		f.Desc = true
	default:
		return nil, errors.NewInvalidRequest("order must be one of: ASC, DESC")
	}

	if _, err := db.GetTaxonomy(ctx, database, taxonomyName); err != nil {
		return nil, err
	}

	f.Limit, f.Offset = clampLimit(input.Limit, input.Offset)

	total, err := db.CountTerms(ctx, database, taxonomyName, f)
	if err != nil {
		return nil, err
	}
	items, err := db.QueryTerms(ctx, database, taxonomyName, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []taxonomy.Term{}
	}

	sort := string(f.OrderBy) + "_asc"
	if f.Desc {
		sort = string(f.OrderBy) + "_desc"
	}

	return &ListTermsOutput{
		Items:      items,
		Pagination: newPagination(f.Limit, f.Offset, len(items), total),
		Sort:       sort,
	}, nil
}

// FetchTermInput contains parameters for the FetchTerm operation.
type FetchTermInput struct {
	ID       int64
	Taxonomy string
	Slug     string
}

// FetchTerm retrieves a term by id or by taxonomy and slug.
func FetchTerm(ctx context.Context, database *sql.DB, cfg *config.Config, input FetchTermInput) (*TermOutput, error) {
	t, err := resolveTerm(ctx, database, input.ID, input.Taxonomy, input.Slug)
	if err != nil {
		return nil, err
	}
	return &TermOutput{Term: *t, Link: TermURL(cfg, *t)}, nil
}

func resolveTerm(ctx context.Context, database *sql.DB, id int64, taxonomyName, slug string) (*taxonomy.Term, error) {
	addr, err := ValidateTermAddress(id, taxonomyName, slug)
	if err != nil {
		return nil, err
	}
	if addr.ByID {
		return db.GetTermByID(ctx, database, addr.ID)
	}
	return db.GetTermBySlug(ctx, database, addr.Taxonomy, addr.Slug)
}

// SetTermCountInput contains parameters for the SetTermCount operation.
type SetTermCountInput struct {
	ID    int64
	Count int
}

// SetTermCount sets how many objects a term is assigned to.
func SetTermCount(ctx context.Context, database *sql.DB, cfg *config.Config, input SetTermCountInput) (*TermOutput, error) {
	if input.ID <= 0 {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.Count < 0 {
		return nil, errors.NewInvalidRequest("count must not be negative")
	}
	if err := db.UpdateTermCount(ctx, database, input.ID, input.Count); err != nil {
		return nil, err
	}
	return FetchTerm(ctx, database, cfg, FetchTermInput{ID: input.ID})
}

// DeleteTermInput contains parameters for the DeleteTerm operation.
type DeleteTermInput struct {
	ID       int64
	Taxonomy string
	Slug     string
}

// DeleteTermOutput contains the result of the DeleteTerm operation.
type DeleteTermOutput struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

// DeleteTerm removes a term.
func DeleteTerm(ctx context.Context, database *sql.DB, input DeleteTermInput) (*DeleteTermOutput, error) {
	t, err := resolveTerm(ctx, database, input.ID, input.Taxonomy, input.Slug)
	if err != nil {
		return nil, err
	}
	if err := db.DeleteTerm(ctx, database, t.ID); err != nil {
		return nil, err
	}
	return &DeleteTermOutput{Deleted: true, ID: t.ID}, nil
}
