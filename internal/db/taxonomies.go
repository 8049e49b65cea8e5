package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/tagdrop/internal/errors"
	"github.com/hpungsan/tagdrop/internal/taxonomy"
)

// UpsertTaxonomy registers a taxonomy or replaces its label and flags.
func UpsertTaxonomy(ctx context.Context, db *sql.DB, t taxonomy.Taxonomy) error {
	query := `
		INSERT INTO taxonomies (name, label, public, hierarchical, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			label = excluded.label,
			public = excluded.public,
			hierarchical = excluded.hierarchical
	`
	if _, err := db.ExecContext(ctx, query, t.Name, t.Label, t.Public, t.Hierarchical, time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetTaxonomy retrieves a taxonomy by name.
func GetTaxonomy(ctx context.Context, db *sql.DB, name string) (*taxonomy.Taxonomy, error) {
	query := `SELECT name, label, public, hierarchical FROM taxonomies WHERE name = ?`

	var t taxonomy.Taxonomy
	err := db.QueryRowContext(ctx, query, name).Scan(&t.Name, &t.Label, &t.Public, &t.Hierarchical)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("taxonomy", name)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &t, nil
}

// ListTaxonomies returns every registered taxonomy ordered by name.
func ListTaxonomies(ctx context.Context, db *sql.DB) ([]taxonomy.Taxonomy, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, label, public, hierarchical FROM taxonomies ORDER BY name`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []taxonomy.Taxonomy
	for rows.Next() {
		var t taxonomy.Taxonomy
		if err := rows.Scan(&t.Name, &t.Label, &t.Public, &t.Hierarchical); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}
