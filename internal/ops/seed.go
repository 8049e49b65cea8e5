package ops

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/tagdrop/internal/db"
	"github.com/hpungsan/tagdrop/internal/dropdown"
	"github.com/hpungsan/tagdrop/internal/errors"
	"github.com/hpungsan/tagdrop/internal/taxonomy"
)

// ImportMode controls collision behavior during seed import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail before writing if any term slug exists
	ImportModeReplace ImportMode = "replace" // upsert terms by slug
)

// SeedFile is the YAML fixture format.
type SeedFile struct {
	Taxonomies []SeedTaxonomy `yaml:"taxonomies"`
	Terms      []SeedTerm     `yaml:"terms"` // default taxonomy
	Widgets    []SeedWidget   `yaml:"widgets"`
	Options    map[string]any `yaml:"options"`
}

// SeedTaxonomy declares a taxonomy and its terms.
type SeedTaxonomy struct {
	Name         string     `yaml:"name"`
	Label        string     `yaml:"label"`
	Public       *bool      `yaml:"public"`
	Hierarchical bool       `yaml:"hierarchical"`
	Terms        []SeedTerm `yaml:"terms"`
}

// SeedTerm declares a term.
type SeedTerm struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Count       int    `yaml:"count"`
}

// SeedWidget declares a widget instance.
type SeedWidget struct {
	Number   int64          `yaml:"number"`
	Settings map[string]any `yaml:"settings"`
}

// ImportSeedInput contains parameters for the ImportSeed operation.
type ImportSeedInput struct {
	Path string     // required, .yaml or .yml
	Mode ImportMode // default: replace
}

// ImportOutput contains the result of a seed import.
type ImportOutput struct {
	Taxonomies int           `json:"taxonomies"`
	Terms      int           `json:"terms"`
	Widgets    int           `json:"widgets"`
	Options    int           `json:"options"`
	Errors     []ImportError `json:"errors"`
}

// ImportError describes a seed entry that was rejected.
type ImportError struct {
	Entry   string `json:"entry"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportSeed loads a YAML fixture of taxonomies, terms, widgets and
// options into the store.
func ImportSeed(ctx context.Context, database *sql.DB, svc *dropdown.Service, input ImportSeedInput) (*ImportOutput, error) {
	if err := ValidateSeedPath(input.Path); err != nil {
		return nil, err
	}

	f, err := openFileNoFollowRead(input.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ImportSeedFrom(ctx, database, svc, f, input.Mode)
}

// ImportSeedFrom imports a fixture read from r.
func ImportSeedFrom(ctx context.Context, database *sql.DB, svc *dropdown.Service, r io.Reader, mode ImportMode) (*ImportOutput, error) {
	if mode == "" {
		mode = ImportModeReplace
	}
	if mode != ImportModeError && mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	var seed SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid seed file: %v", err))
	}

	out := &ImportOutput{Errors: []ImportError{}}

	// Validate everything before writing anything.
	var terms []taxonomy.Term
	var taxonomies []RegisterTaxonomyInput
	addTerms := func(taxonomyName string, list []SeedTerm) {
		for i, st := range list {
			t, err := prepareTerm(AddTermInput{
				Taxonomy:    taxonomyName,
				Name:        st.Name,
				Slug:        st.Slug,
				Description: st.Description,
				Count:       st.Count,
			})
			if err != nil {
				out.Errors = append(out.Errors, importError(fmt.Sprintf("%s.terms[%d]", taxonomyName, i), err))
				continue
			}
			terms = append(terms, t)
		}
	}

	for i, st := range seed.Taxonomies {
		in := RegisterTaxonomyInput{Name: st.Name, Label: st.Label, Public: st.Public, Hierarchical: st.Hierarchical}
		if !taxonomy.ValidName(in.Name) {
			out.Errors = append(out.Errors, importError(fmt.Sprintf("taxonomies[%d]", i),
				errors.NewInvalidRequest("invalid taxonomy name: "+st.Name)))
			continue
		}
		taxonomies = append(taxonomies, in)
		addTerms(st.Name, st.Terms)
	}
	addTerms(taxonomy.DefaultTaxonomy, seed.Terms)

	if mode == ImportModeError {
		for _, t := range terms {
			exists, err := db.CheckSlugExists(ctx, database, t.Taxonomy, t.Slug)
			if err != nil {
				return nil, err
			}
			if exists {
				out.Errors = append(out.Errors, importError(t.Taxonomy+"/"+t.Slug,
					errors.NewNameAlreadyExists("term", t.Taxonomy, t.Slug)))
			}
		}
		if len(out.Errors) > 0 {
			return out, nil
		}
	}

	for _, in := range taxonomies {
		if _, err := RegisterTaxonomy(ctx, database, in); err != nil {
			return nil, err
		}
		out.Taxonomies++
	}

	for i := range terms {
		if err := db.UpsertTerm(ctx, database, &terms[i]); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				out.Errors = append(out.Errors, importError(terms[i].Taxonomy+"/"+terms[i].Slug, err))
				continue
			}
			return nil, err
		}
		out.Terms++
	}

	for i, sw := range seed.Widgets {
		if _, err := SaveWidget(ctx, database, svc, SaveWidgetInput{Number: sw.Number, Settings: sw.Settings}); err != nil {
			out.Errors = append(out.Errors, importError(fmt.Sprintf("widgets[%d]", i), err))
			continue
		}
		out.Widgets++
	}

	for key, value := range seed.Options {
		if _, err := SetOption(ctx, database, SetOptionInput{Key: key, Value: value}); err != nil {
			out.Errors = append(out.Errors, importError("options."+key, err))
			continue
		}
		out.Options++
	}

	return out, nil
}

func importError(entry string, err error) ImportError {
	e := errors.As(err)
	return ImportError{Entry: entry, Code: string(e.Code), Message: e.Message}
}
