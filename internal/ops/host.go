package ops

import (
	"context"
	"database/sql"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/hpungsan/tagdrop/internal/config"
	"github.com/hpungsan/tagdrop/internal/db"
	"github.com/hpungsan/tagdrop/internal/dropdown"
	"github.com/hpungsan/tagdrop/internal/errors"
	"github.com/hpungsan/tagdrop/internal/logger"
	"github.com/hpungsan/tagdrop/internal/taxonomy"
)

// Host adapts the SQLite store to the dropdown's platform interfaces.
type Host struct {
	db  *sql.DB
	cfg *config.Config
	log *zap.Logger
}

var _ dropdown.Host = (*Host)(nil)

// NewHost creates a Host. A nil cfg uses the default configuration.
func NewHost(database *sql.DB, cfg *config.Config, log *zap.Logger) *Host {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Host{db: database, cfg: cfg, log: logger.Component(log, "host")}
}

// NewService builds the dropdown service over the store.
func NewService(database *sql.DB, cfg *config.Config, log *zap.Logger) *dropdown.Service {
	return dropdown.NewService(NewHost(database, cfg, log), log)
}

// TaxonomyExists reports whether name is a registered flat taxonomy.
func (h *Host) TaxonomyExists(ctx context.Context, name string) (bool, error) {
	return TaxonomyExists(ctx, h.db, name)
}

// QueryTerms lists terms with the store's ordering and filtering.
func (h *Host) QueryTerms(ctx context.Context, taxonomyName string, q dropdown.TermQuery) ([]taxonomy.Term, error) {
	f := db.TermFilter{
		OrderBy:   db.TermOrderByName,
		Desc:      q.Order == dropdown.OrderDESC,
		HideEmpty: q.HideEmpty,
		Limit:     q.Number,
		Include:   q.Include,
		Exclude:   q.Exclude,
	}
	if q.OrderBy == dropdown.OrderByCount {
		f.OrderBy = db.TermOrderByCount
	}
	return db.QueryTerms(ctx, h.db, taxonomyName, f)
}

// TermLink returns the archive URL of a term returned by QueryTerms. It
// builds the link from the term itself without touching the store.
func (h *Host) TermLink(_ context.Context, t taxonomy.Term) (string, error) {
	if t.Slug == "" || t.Taxonomy == "" {
		return "", errors.NewInvalidRequest("term " + strconv.FormatInt(t.ID, 10) + " has no slug or taxonomy")
	}
	return TermURL(h.cfg, t), nil
}

// TermURL builds the archive URL of t: <site_url>/<base>/<slug>/ when the
// taxonomy has a permalink base, else a query-string link.
func TermURL(cfg *config.Config, t taxonomy.Term) string {
	site := cfg.SiteURL
	if base := cfg.PermalinkBase(t.Taxonomy); base != "" {
		return site + "/" + base + "/" + url.PathEscape(t.Slug) + "/"
	}
	q := url.Values{}
	q.Set("taxonomy", t.Taxonomy)
	q.Set("term", t.Slug)
	return site + "/?" + q.Encode()
}
