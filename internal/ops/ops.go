// Package ops implements the host operations behind the CLI, MCP and web
// surfaces: taxonomy, term and widget management, rendering, lifecycle
// cleanup and seed import.
package ops

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/tagdrop/internal/errors"
	"github.com/hpungsan/tagdrop/internal/taxonomy"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

func newPagination(limit, offset, returned, total int) Pagination {
	return Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+returned < total,
		Total:   total,
	}
}

// clampLimit applies the list defaults and bounds.
func clampLimit(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit, max(offset, 0)
}

// TermAddress is a validated term address.
type TermAddress struct {
	ByID     bool
	ID       int64
	Taxonomy string
	Slug     string
}

// ValidateTermAddress validates term addressing parameters.
// Rules:
// - Must specify exactly one addressing mode: id OR (taxonomy + slug)
// - If id provided with slug → ErrAmbiguousAddressing
// - If neither id nor slug provided → ErrInvalidRequest
// - taxonomy defaults to post_tag in slug mode
func ValidateTermAddress(id int64, taxonomyName, slug string) (*TermAddress, error) {
	slug = strings.TrimSpace(slug)
	taxonomyName = strings.TrimSpace(taxonomyName)

	if id < 0 {
		return nil, errors.NewInvalidRequest("id must be positive")
	}
	if id > 0 && slug != "" {
		return nil, errors.NewAmbiguousAddressing("specify either id or slug, not both")
	}
	if id == 0 && slug == "" {
		return nil, errors.NewInvalidRequest("must specify either id or slug")
	}

	if id > 0 {
		return &TermAddress{ByID: true, ID: id}, nil
	}

	if taxonomyName == "" {
		taxonomyName = taxonomy.DefaultTaxonomy
	}
	normalized := taxonomy.Slugify(slug)
	if normalized == "" {
		return nil, errors.NewInvalidRequest("slug must not be empty")
	}
	return &TermAddress{Taxonomy: taxonomyName, Slug: normalized}, nil
}

// WidgetAddress is a validated widget address.
type WidgetAddress struct {
	ByID   bool
	ID     string
	Number int64
}

// ValidateWidgetAddress requires exactly one of id or number.
func ValidateWidgetAddress(id string, number int64) (*WidgetAddress, error) {
	id = strings.TrimSpace(id)
	if id != "" && number != 0 {
		return nil, errors.NewAmbiguousAddressing("specify either id or number, not both")
	}
	if id == "" && number <= 0 {
		return nil, errors.NewInvalidRequest("must specify either id or a positive number")
	}
	if id != "" {
		return &WidgetAddress{ByID: true, ID: id}, nil
	}
	return &WidgetAddress{Number: number}, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
