package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/hpungsan/tagdrop/internal/errors"
)

// Widget is a stored sidebar widget instance.
type Widget struct {
	ID        string          `json:"id"`
	Number    int64           `json:"number"`
	Settings  json.RawMessage `json:"settings"`
	CreatedAt int64           `json:"created_at"`
	UpdatedAt int64           `json:"updated_at"`
}

const widgetColumns = `id, number, settings, created_at, updated_at`

// InsertWidget stores a new widget. A zero w.Number is assigned the next
// free number; w.Number, CreatedAt and UpdatedAt are set on success.
func InsertWidget(ctx context.Context, db *sql.DB, w *Widget) error {
	now := time.Now().Unix()

	var err error
	if w.Number > 0 {
		_, err = db.ExecContext(ctx,
			`INSERT INTO widgets (id, number, settings, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			w.ID, w.Number, string(w.Settings), now, now)
	} else {
		err = db.QueryRowContext(ctx, `
			INSERT INTO widgets (id, number, settings, created_at, updated_at)
			VALUES (?, (SELECT COALESCE(MAX(number), 0) + 1 FROM widgets), ?, ?, ?)
			RETURNING number`,
			w.ID, string(w.Settings), now, now).Scan(&w.Number)
	}
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewNameAlreadyExists("widget", "widgets", strconv.FormatInt(w.Number, 10))
		}
		return errors.NewInternal(err)
	}

	w.CreatedAt = now
	w.UpdatedAt = now
	return nil
}

// UpdateWidgetSettings replaces the settings of a widget.
func UpdateWidgetSettings(ctx context.Context, db *sql.DB, w *Widget) error {
	now := time.Now().Unix()
	result, err := db.ExecContext(ctx, `UPDATE widgets SET settings = ?, updated_at = ? WHERE id = ?`,
		string(w.Settings), now, w.ID)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := requireAffected(result, "widget", w.ID); err != nil {
		return err
	}
	w.UpdatedAt = now
	return nil
}

// GetWidgetByID retrieves a widget by its ULID.
func GetWidgetByID(ctx context.Context, db *sql.DB, id string) (*Widget, error) {
	w, err := scanWidget(db.QueryRowContext(ctx, `SELECT `+widgetColumns+` FROM widgets WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("widget", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return w, nil
}

// GetWidgetByNumber retrieves a widget by its instance number.
func GetWidgetByNumber(ctx context.Context, db *sql.DB, number int64) (*Widget, error) {
	w, err := scanWidget(db.QueryRowContext(ctx, `SELECT `+widgetColumns+` FROM widgets WHERE number = ?`, number))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("widget", strconv.FormatInt(number, 10))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return w, nil
}

// ListWidgets returns widgets ordered by number, plus the total count.
// limit <= 0 returns every widget from offset.
func ListWidgets(ctx context.Context, db *sql.DB, limit, offset int) ([]Widget, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM widgets`).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+widgetColumns+` FROM widgets ORDER BY number LIMIT ? OFFSET ?`, limit, max(offset, 0))
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []Widget
	for rows.Next() {
		w, err := scanWidget(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return out, total, nil
}

// DeleteWidget removes a widget by id.
func DeleteWidget(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM widgets WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return requireAffected(result, "widget", id)
}

func scanWidget(row scanner) (*Widget, error) {
	var (
		w        Widget
		settings string
	)
	if err := row.Scan(&w.ID, &w.Number, &settings, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Settings = json.RawMessage(settings)
	return &w, nil
}
