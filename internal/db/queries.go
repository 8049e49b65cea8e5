package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/tagdrop/internal/errors"
	"github.com/hpungsan/tagdrop/internal/taxonomy"
)

// TermOrderBy is a sortable term column.
type TermOrderBy string

const (
	TermOrderByName  TermOrderBy = "name"
	TermOrderByCount TermOrderBy = "count"
)

// TermFilter narrows and orders a term listing.
type TermFilter struct {
	OrderBy   TermOrderBy // default: name
	Desc      bool
	HideEmpty bool // only terms with count > 0
	Limit     int  // 0 = no limit
	Offset    int
	Include   []int64 // when non-empty, only these ids
	Exclude   []int64
}

const termColumns = `id, taxonomy, name, slug, description, count`

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyError checks if the error is a SQLite FOREIGN KEY violation.
func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// InsertTerm stores a new term and sets t.ID.
func InsertTerm(ctx context.Context, db *sql.DB, t *taxonomy.Term) error {
	now := time.Now().Unix()
	query := `
		INSERT INTO terms (taxonomy, name, slug, description, count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.ExecContext(ctx, query, t.Taxonomy, t.Name, t.Slug, t.Description, t.Count, now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewNameAlreadyExists("term", t.Taxonomy, t.Slug)
		}
		if isForeignKeyError(err) {
			return errors.NewNotFound("taxonomy", t.Taxonomy)
		}
		return errors.NewInternal(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	t.ID = id
	return nil
}

// UpsertTerm inserts a term or, when its (taxonomy, slug) exists, replaces
// name, description and count. t.ID is set to the stored row.
func UpsertTerm(ctx context.Context, db *sql.DB, t *taxonomy.Term) error {
	now := time.Now().Unix()
	query := `
		INSERT INTO terms (taxonomy, name, slug, description, count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(taxonomy, slug) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			count = excluded.count,
			updated_at = excluded.updated_at
		RETURNING id
	`

	err := db.QueryRowContext(ctx, query, t.Taxonomy, t.Name, t.Slug, t.Description, t.Count, now, now).Scan(&t.ID)
	if err != nil {
		if isForeignKeyError(err) {
			return errors.NewNotFound("taxonomy", t.Taxonomy)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetTermByID retrieves a term by id.
func GetTermByID(ctx context.Context, db *sql.DB, id int64) (*taxonomy.Term, error) {
	row := db.QueryRowContext(ctx, `SELECT `+termColumns+` FROM terms WHERE id = ?`, id)
	t, err := scanTerm(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("term", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return t, nil
}

// GetTermBySlug retrieves a term by taxonomy and slug.
func GetTermBySlug(ctx context.Context, db *sql.DB, taxonomyName, slug string) (*taxonomy.Term, error) {
	row := db.QueryRowContext(ctx, `SELECT `+termColumns+` FROM terms WHERE taxonomy = ? AND slug = ?`, taxonomyName, slug)
	t, err := scanTerm(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("term", taxonomyName+"/"+slug)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return t, nil
}

// CheckSlugExists reports whether a term with slug exists in the taxonomy.
func CheckSlugExists(ctx context.Context, db *sql.DB, taxonomyName, slug string) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM terms WHERE taxonomy = ? AND slug = ? LIMIT 1`, taxonomyName, slug).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// UpdateTermCount sets the object count of a term.
func UpdateTermCount(ctx context.Context, db *sql.DB, id int64, count int) error {
	result, err := db.ExecContext(ctx, `UPDATE terms SET count = ?, updated_at = ? WHERE id = ?`, count, time.Now().Unix(), id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, "term", strconv.FormatInt(id, 10))
}

// DeleteTerm removes a term.
func DeleteTerm(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM terms WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, "term", strconv.FormatInt(id, 10))
}

// QueryTerms lists the terms of a taxonomy. Ties on the sort column are
// broken by ascending name, then id, so results are stable.
func QueryTerms(ctx context.Context, db *sql.DB, taxonomyName string, f TermFilter) ([]taxonomy.Term, error) {
	where, args := termWhere(taxonomyName, f)

	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	var order string
	switch f.OrderBy {
	case TermOrderByCount:
		order = fmt.Sprintf("count %s, name ASC, id ASC", dir)
	default:
		order = fmt.Sprintf("name %s, id ASC", dir)
	}

	query := `SELECT ` + termColumns + ` FROM terms WHERE ` + where + ` ORDER BY ` + order
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, max(f.Offset, 0))
	} else if f.Offset > 0 {
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, f.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var terms []taxonomy.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		terms = append(terms, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return terms, nil
}

// CountTerms returns how many terms match f, ignoring its limit and offset.
func CountTerms(ctx context.Context, db *sql.DB, taxonomyName string, f TermFilter) (int, error) {
	where, args := termWhere(taxonomyName, f)
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM terms WHERE `+where, args...).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

func termWhere(taxonomyName string, f TermFilter) (string, []any) {
	clauses := []string{"taxonomy = ?"}
	args := []any{taxonomyName}

	if f.HideEmpty {
		clauses = append(clauses, "count > 0")
	}
	if len(f.Include) > 0 {
		clauses = append(clauses, "id IN ("+placeholders(len(f.Include))+")")
		for _, id := range f.Include {
			args = append(args, id)
		}
	}
	if len(f.Exclude) > 0 {
		clauses = append(clauses, "id NOT IN ("+placeholders(len(f.Exclude))+")")
		for _, id := range f.Exclude {
			args = append(args, id)
		}
	}
	return strings.Join(clauses, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTerm scans a single row into a Term.
func scanTerm(row scanner) (*taxonomy.Term, error) {
	var t taxonomy.Term
	if err := row.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.Description, &t.Count); err != nil {
		return nil, err
	}
	return &t, nil
}

func requireAffected(result sql.Result, kind, identifier string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(kind, identifier)
	}
	return nil
}
