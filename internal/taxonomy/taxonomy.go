package taxonomy

import "regexp"

// DefaultTaxonomy is the flat taxonomy every store registers on creation.
const DefaultTaxonomy = "post_tag"

// reserved taxonomies are internal to the host and never offered as a
// dropdown source even when registered as public and flat.
var reserved = map[string]bool{
	"nav_menu":    true,
	"post_format": true,
}

// nameRegex is the accepted shape of a normalized taxonomy name.
var nameRegex = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// Taxonomy is a classification scheme terms belong to.
type Taxonomy struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Public       bool   `json:"public"`
	Hierarchical bool   `json:"hierarchical"`
}

// Selectable reports whether the taxonomy may back a dropdown: public,
// flat, and not reserved.
func (t Taxonomy) Selectable() bool {
	return t.Public && !t.Hierarchical && !reserved[t.Name]
}

// Term is a single entry of a taxonomy.
type Term struct {
	ID          int64  `json:"id"`
	Taxonomy    string `json:"taxonomy"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	// Count is the number of objects the term is assigned to.
	Count int `json:"count"`
}

// ValidName reports whether name is a normalized taxonomy name.
func ValidName(name string) bool {
	return nameRegex.MatchString(name)
}
