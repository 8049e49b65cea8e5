package dropdown

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitize_EmptyYieldsDefaults(t *testing.T) {
	s := NewSanitizer(newFakeHost(), zap.NewNop())

	got := s.Sanitize(context.Background(), map[string]any{})
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Errorf("Sanitize({}) mismatch (-want +got):\n%s", diff)
	}

	got = s.Sanitize(context.Background(), nil)
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Errorf("Sanitize(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_AllValid(t *testing.T) {
	s := NewSanitizer(newFakeHost(), zap.NewNop())

	got := s.Sanitize(context.Background(), map[string]any{
		"taxonomy":        "genre",
		"title":           "Browse genres",
		"select_name":     "Pick one",
		"max_name_length": "12",
		"cutoff":          "...",
		"limit":           10,
		"order":           "DESC",
		"orderby":         "count",
		"threshold":       2.0,
		"incexc":          "include",
		"incexc_ids":      "9,4",
		"hide_empty":      "0",
		"post_counts":     "on",
	})

	want := Options{
		Taxonomy:      "genre",
		Title:         "Browse genres",
		SelectName:    "Pick one",
		MaxNameLength: 12,
		Cutoff:        "...",
		Limit:         10,
		Order:         OrderDESC,
		OrderBy:       OrderByCount,
		Threshold:     2,
		IncExc:        Include,
		IncExcIDs:     []int64{4, 9},
		HideEmpty:     false,
		PostCounts:    true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sanitize mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_FieldRules(t *testing.T) {
	ctx := context.Background()
	s := NewSanitizer(newFakeHost(), zap.NewNop())

	tests := []struct {
		name  string
		raw   map[string]any
		check func(t *testing.T, o Options)
	}{
		{
			name: "incexc ids sorted with duplicates kept",
			raw:  map[string]any{"incexc_ids": "3, -1, 0, 7, 3"},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, []int64{3, 3, 7}, o.IncExcIDs)
			},
		},
		{
			name: "incexc ids of unsupported shape",
			raw:  map[string]any{"incexc_ids": 12},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, []int64{}, o.IncExcIDs)
			},
		},
		{
			name: "invalid order keeps default",
			raw:  map[string]any{"order": "sideways"},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, OrderASC, o.Order)
			},
		},
		{
			name: "enum match is exact",
			raw:  map[string]any{"order": "desc", "orderby": "Count", "incexc": " include"},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, OrderASC, o.Order)
				assert.Equal(t, OrderByName, o.OrderBy)
				assert.Equal(t, Exclude, o.IncExc)
			},
		},
		{
			name: "non-string enum rejected",
			raw:  map[string]any{"order": 1},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, OrderASC, o.Order)
			},
		},
		{
			name: "unknown taxonomy keeps default",
			raw:  map[string]any{"taxonomy": "category"},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, "post_tag", o.Taxonomy)
			},
		},
		{
			name: "negative numbers become zero",
			raw:  map[string]any{"max_name_length": -4, "limit": "-1", "threshold": -2.5},
			check: func(t *testing.T, o Options) {
				assert.Zero(t, o.MaxNameLength)
				assert.Zero(t, o.Limit)
				assert.Zero(t, o.Threshold)
			},
		},
		{
			name: "leading integer parsing",
			raw:  map[string]any{"max_name_length": "12abc", "limit": " 7", "threshold": true},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, 12, o.MaxNameLength)
				assert.Equal(t, 7, o.Limit)
				assert.Equal(t, 1, o.Threshold)
			},
		},
		{
			name: "text fields sanitized",
			raw:  map[string]any{"title": "  <b>My</b>\n\tTags%20 ", "select_name": "<i>Choose</i>"},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, "My Tags", o.Title)
				assert.Equal(t, "Choose", o.SelectName)
			},
		},
		{
			name: "empty title accepted",
			raw:  map[string]any{"title": ""},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, "", o.Title)
			},
		},
		{
			name: "empty select name and cutoff revert",
			raw:  map[string]any{"select_name": "<br>", "cutoff": "   "},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, DefaultSelectName, o.SelectName)
				assert.Equal(t, DefaultCutoff, o.Cutoff)
			},
		},
		{
			name: "composite text input ignored",
			raw:  map[string]any{"select_name": []any{"x"}},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, DefaultSelectName, o.SelectName)
			},
		},
		{
			name: "booleans use truthiness",
			raw:  map[string]any{"hide_empty": "", "post_counts": 1},
			check: func(t *testing.T, o Options) {
				assert.False(t, o.HideEmpty)
				assert.True(t, o.PostCounts)
			},
		},
		{
			name: "unknown keys ignored",
			raw:  map[string]any{"colour": "red", "exclude": "1,2"},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, Defaults(), o)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, s.Sanitize(ctx, tt.raw))
		})
	}
}

func TestSanitize_RegistryErrorRejectsTaxonomy(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	host := newFakeHost()
	host.lookupErr = errors.New("database is locked")
	s := NewSanitizer(host, zap.New(core))

	got := s.Sanitize(context.Background(), map[string]any{"taxonomy": "genre"})
	if got.Taxonomy != "post_tag" {
		t.Errorf("Taxonomy = %q, want post_tag", got.Taxonomy)
	}
	if logs.FilterMessage("taxonomy lookup failed").Len() != 1 {
		t.Errorf("expected one lookup failure log, got %v", logs.All())
	}
}

func TestSanitize_NilRegistry(t *testing.T) {
	s := NewSanitizer(nil, nil)
	got := s.Sanitize(context.Background(), map[string]any{"taxonomy": "post_tag"})
	if got.Taxonomy != "post_tag" {
		t.Errorf("Taxonomy = %q, want default post_tag", got.Taxonomy)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := NewSanitizer(newFakeHost(), zap.NewNop())

	inputs := []map[string]any{
		{},
		{"title": "Tags", "incexc_ids": "5,1,1", "order": "DESC", "post_counts": true},
		{"taxonomy": "genre", "max_name_length": "7", "cutoff": "~", "threshold": 3},
		{"title": "&lt;b&gt;Hot&lt;/b&gt; tags", "select_name": "&lt;br&gt;"},
		{"title": "&amp;lt;i&amp;gt;Tags", "cutoff": "&lt;em&gt;...&lt;/em&gt;"},
	}

	for _, raw := range inputs {
		once := s.Sanitize(ctx, raw)
		twice := s.Sanitize(ctx, once.Map())
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("re-sanitizing changed options (-once +twice):\n%s", diff)
		}
	}
}

func TestSanitize_EncodedMarkup(t *testing.T) {
	s := NewSanitizer(newFakeHost(), zap.NewNop())

	got := s.Sanitize(context.Background(), map[string]any{
		"title":       "&lt;b&gt;Hot&lt;/b&gt; tags",
		"select_name": "&lt;br&gt;",
		"cutoff":      "&lt;i&gt;&amp;hellip;&lt;/i&gt;",
	})
	if got.Title != "Hot tags" {
		t.Errorf("Title = %q, want %q", got.Title, "Hot tags")
	}
	if got.SelectName != DefaultSelectName {
		t.Errorf("SelectName = %q, want default %q", got.SelectName, DefaultSelectName)
	}
	if got.Cutoff != "…" {
		t.Errorf("Cutoff = %q, want %q", got.Cutoff, "…")
	}
}

func TestSanitize_JSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSanitizer(newFakeHost(), zap.NewNop())

	once := s.Sanitize(ctx, map[string]any{"incexc_ids": []any{8, 2}, "limit": 4})
	data, err := json.Marshal(once)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(once, s.Sanitize(ctx, raw)); diff != "" {
		t.Errorf("stored options did not survive a round trip (-want +got):\n%s", diff)
	}
}
