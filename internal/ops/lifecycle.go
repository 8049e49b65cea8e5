package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/hpungsan/tagdrop/internal/db"
	"github.com/hpungsan/tagdrop/internal/errors"
)

// LegacyOptionKeys are stored settings left behind by old releases.
var LegacyOptionKeys = []string{
	"widget_TagDropdown",
	"widget_TagDropdown_exclude",
	"function_TagDropdown",
	"TDW_direct",
}

// CleanupOutput contains the result of Activate and Deactivate.
type CleanupOutput struct {
	Removed []string `json:"removed"`
}

// Activate removes obsolete stored settings. Safe to run repeatedly.
func Activate(ctx context.Context, database *sql.DB) (*CleanupOutput, error) {
	return CleanupLegacyOptions(ctx, database)
}

// Deactivate removes obsolete stored settings. Safe to run repeatedly.
func Deactivate(ctx context.Context, database *sql.DB) (*CleanupOutput, error) {
	return CleanupLegacyOptions(ctx, database)
}

// CleanupLegacyOptions deletes every key in LegacyOptionKeys and reports the
// ones that were present.
func CleanupLegacyOptions(ctx context.Context, database *sql.DB) (*CleanupOutput, error) {
	removed, err := db.DeleteOptions(ctx, database, LegacyOptionKeys)
	if err != nil {
		return nil, err
	}
	return &CleanupOutput{Removed: removed}, nil
}

// SetOptionInput contains parameters for the SetOption operation.
type SetOptionInput struct {
	Key   string // required
	Value any    // any JSON-encodable value
}

// SetOptionOutput contains the result of the SetOption operation.
type SetOptionOutput struct {
	Key string `json:"key"`
}

// SetOption stores a host setting.
func SetOption(ctx context.Context, database *sql.DB, input SetOptionInput) (*SetOptionOutput, error) {
	key := strings.TrimSpace(input.Key)
	if key == "" {
		return nil, errors.NewInvalidRequest("key is required")
	}
	if err := db.SetOption(ctx, database, key, input.Value); err != nil {
		return nil, err
	}
	return &SetOptionOutput{Key: key}, nil
}

// FetchOptionInput contains parameters for the FetchOption operation.
type FetchOptionInput struct {
	Key string // required
}

// FetchOptionOutput contains a stored host setting.
type FetchOptionOutput struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// FetchOption returns a stored host setting as raw JSON.
func FetchOption(ctx context.Context, database *sql.DB, input FetchOptionInput) (*FetchOptionOutput, error) {
	key := strings.TrimSpace(input.Key)
	if key == "" {
		return nil, errors.NewInvalidRequest("key is required")
	}
	value, err := db.GetOption(ctx, database, key)
	if err != nil {
		return nil, err
	}
	return &FetchOptionOutput{Key: key, Value: value}, nil
}
