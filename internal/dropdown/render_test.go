package dropdown

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestRender_Markup(t *testing.T) {
	host := newFakeHost(tag(1, "Alpha", "alpha", 5))
	r := NewRenderer(host, host, zaptest.NewLogger(t))

	got, ok := r.Render(context.Background(), Defaults(), NumericID(3))
	require.True(t, ok)

	want := `<select name="taxonomy_dropdown_widget_dropdown_3" class="taxonomy_dropdown_widget_dropdown"` +
		` onchange="document.location.href=this.options[this.selectedIndex].value;"` +
		` id="taxonomy_dropdown_widget_dropdown_3">` +
		`<option value="">Select Tag</option>` +
		`<option value="http://example.test/tag/alpha/">Alpha</option>` +
		`</select>`
	assert.Equal(t, want, got)
}

func TestRender_NoIDOmitsIDAttribute(t *testing.T) {
	host := newFakeHost(tag(1, "Alpha", "alpha", 5))
	r := NewRenderer(host, host, zap.NewNop())

	got, ok := r.Render(context.Background(), Defaults(), NoID)
	require.True(t, ok)
	assert.Contains(t, got, `name="taxonomy_dropdown_widget_dropdown_"`)
	assert.NotContains(t, got, ` id=`)
}

func TestRender_SlugIDUsesRawSlug(t *testing.T) {
	host := newFakeHost(tag(1, "Alpha", "alpha", 5))
	r := NewRenderer(host, host, zap.NewNop())

	got, ok := r.Render(context.Background(), Defaults(), SlugID("footer"))
	require.True(t, ok)
	assert.Contains(t, got, `name="taxonomy_dropdown_widget_dropdown_footer"`)
	assert.Contains(t, got, ` id="footer"`)
}

func TestRender_EndToEndOrdering(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost(
		tag(1, "Alpha", "alpha", 5),
		tag(2, "Beta", "beta", 9),
	)
	svc := NewService(host, zap.NewNop())

	got, ok := svc.Dropdown(ctx, map[string]any{
		"taxonomy":    "post_tag",
		"limit":       2,
		"orderby":     "count",
		"order":       "DESC",
		"post_counts": true,
	}, NumericID(1))
	require.True(t, ok)

	want := `<select name="taxonomy_dropdown_widget_dropdown_1" class="taxonomy_dropdown_widget_dropdown"` +
		` onchange="document.location.href=this.options[this.selectedIndex].value;"` +
		` id="taxonomy_dropdown_widget_dropdown_1">` +
		`<option value="">Select Tag</option>` +
		`<option value="http://example.test/tag/beta/">Beta (9)</option>` +
		`<option value="http://example.test/tag/alpha/">Alpha (5)</option>` +
		`</select>`
	assert.Equal(t, want, got)
}

func TestRender_LimitAndHideEmpty(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost(
		tag(1, "Alpha", "alpha", 5),
		tag(2, "Beta", "beta", 9),
		tag(3, "Delta", "delta", 1),
		tag(4, "Gamma", "gamma", 0),
	)
	svc := NewService(host, zap.NewNop())

	got, ok := svc.Dropdown(ctx, map[string]any{
		"limit":   2,
		"orderby": "count",
		"order":   "DESC",
	}, NumericID(1))
	require.True(t, ok)

	assert.Equal(t, 3, strings.Count(got, "<option "), "default option plus two terms")
	assert.NotContains(t, got, "Delta", "limit drops the lowest count")
	assert.NotContains(t, got, "Gamma", "empty terms are hidden by default")
}

func TestRender_Truncation(t *testing.T) {
	host := newFakeHost(tag(1, "Elephant", "elephant", 1), tag(2, "Ant", "ant", 1))
	r := NewRenderer(host, host, zap.NewNop())

	opts := Defaults()
	opts.MaxNameLength = 4
	opts.Cutoff = "..."

	got, ok := r.Render(context.Background(), opts, NoID)
	require.True(t, ok)
	assert.Contains(t, got, ">Elep...</option>")
	assert.Contains(t, got, ">Ant</option>")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s      string
		n      int
		cutoff string
		want   string
	}{
		{"Elephant", 4, "...", "Elep..."},
		{"Elephant", 0, "...", "Elephant"},
		{"Elephant", 8, "...", "Elephant"},
		{"Ünïcödé", 3, "…", "Ünï…"},
		{"", 2, "…", ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.n, tt.cutoff); got != tt.want {
			t.Errorf("Truncate(%q, %d, %q) = %q, want %q", tt.s, tt.n, tt.cutoff, got, tt.want)
		}
	}
}

func TestRender_Threshold(t *testing.T) {
	host := newFakeHost(tag(1, "Rare", "rare", 1), tag(2, "Common", "common", 10))
	r := NewRenderer(host, host, zap.NewNop())

	opts := Defaults()
	opts.Threshold = 5

	got, ok := r.Render(context.Background(), opts, NoID)
	require.True(t, ok)
	assert.NotContains(t, got, "Rare")
	assert.Contains(t, got, ">Common</option>")
}

func TestRender_NoTerms(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		host := newFakeHost()
		r := NewRenderer(host, host, zap.NewNop())
		got, ok := r.Render(ctx, Defaults(), NumericID(1))
		assert.False(t, ok)
		assert.Empty(t, got)
	})

	t.Run("query error", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		host := newFakeHost(tag(1, "Alpha", "alpha", 5))
		host.queryErr = errors.New("no such table: terms")
		r := NewRenderer(host, host, zap.New(core))

		_, ok := r.Render(ctx, Defaults(), NumericID(1))
		assert.False(t, ok)
		require.Equal(t, 1, logs.FilterMessage("term query failed").Len())
		entry := logs.FilterMessage("term query failed").All()[0]
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
	})

	t.Run("threshold removes everything", func(t *testing.T) {
		host := newFakeHost(tag(1, "Alpha", "alpha", 2))
		r := NewRenderer(host, host, zap.NewNop())
		opts := Defaults()
		opts.Threshold = 3
		_, ok := r.Render(ctx, opts, NumericID(1))
		assert.False(t, ok)
	})

	t.Run("no links resolve", func(t *testing.T) {
		host := newFakeHost(tag(1, "Alpha", "alpha", 2))
		host.noLink[1] = true
		r := NewRenderer(host, host, zap.NewNop())
		_, ok := r.Render(ctx, Defaults(), NumericID(1))
		assert.False(t, ok)
	})

	t.Run("repeatable", func(t *testing.T) {
		host := newFakeHost()
		r := NewRenderer(host, host, zap.NewNop())
		for i := 0; i < 3; i++ {
			_, ok := r.Render(ctx, Defaults(), NumericID(1))
			assert.False(t, ok)
		}
	})
}

func TestRender_SkipsUnresolvedLink(t *testing.T) {
	host := newFakeHost(tag(1, "Alpha", "alpha", 2), tag(2, "Beta", "beta", 2))
	host.noLink[1] = true
	r := NewRenderer(host, host, zap.NewNop())

	got, ok := r.Render(context.Background(), Defaults(), NoID)
	require.True(t, ok)
	assert.NotContains(t, got, "Alpha")
	assert.Contains(t, got, ">Beta</option>")
}

func TestRender_Query(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		opts func(o *Options)
		want TermQuery
	}{
		{
			name: "defaults",
			opts: func(o *Options) {},
			want: TermQuery{Order: OrderASC, OrderBy: OrderByName, HideEmpty: true},
		},
		{
			name: "limit and exclude",
			opts: func(o *Options) {
				o.Limit = 5
				o.IncExcIDs = []int64{2, 4}
			},
			want: TermQuery{Order: OrderASC, OrderBy: OrderByName, HideEmpty: true, Number: 5, Exclude: []int64{2, 4}},
		},
		{
			name: "include",
			opts: func(o *Options) {
				o.IncExc = Include
				o.IncExcIDs = []int64{1}
				o.HideEmpty = false
				o.Order = OrderDESC
				o.OrderBy = OrderByCount
			},
			want: TermQuery{Order: OrderDESC, OrderBy: OrderByCount, Include: []int64{1}},
		},
		{
			name: "include with no ids sends no list",
			opts: func(o *Options) { o.IncExc = Include },
			want: TermQuery{Order: OrderASC, OrderBy: OrderByName, HideEmpty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost()
			r := NewRenderer(host, host, zap.NewNop())
			opts := Defaults()
			tt.opts(&opts)

			r.Render(ctx, opts, NoID)
			require.Len(t, host.queries, 1)
			assert.Equal(t, tt.want, host.queries[0])
		})
	}
}

func TestRender_FiltersRunCurrentThenLegacy(t *testing.T) {
	host := newFakeHost(tag(1, "Alpha", "alpha", 1), tag(2, "Beta", "beta", 1))
	r := NewRenderer(host, host, zap.NewNop())

	var order []string
	r.AddLegacyFilter(func(q TermQuery, id InstanceID) TermQuery {
		order = append(order, "legacy")
		q.Number = 1
		return q
	})
	r.AddFilter(func(q TermQuery, id InstanceID) TermQuery {
		order = append(order, "current:"+id.String())
		q.Number = 2
		q.Order = OrderDESC
		return q
	})

	got, ok := r.Render(context.Background(), Defaults(), NumericID(9))
	require.True(t, ok)
	assert.Equal(t, []string{"current:9", "legacy"}, order)
	assert.Equal(t, 1, host.queries[0].Number)
	assert.Contains(t, got, ">Beta</option>")
	assert.NotContains(t, got, "Alpha")
}

func TestRender_SelectsViewedTerm(t *testing.T) {
	host := newFakeHost(tag(1, "Alpha", "alpha", 1), tag(2, "Beta", "beta", 1))
	r := NewRenderer(host, host, zap.NewNop())

	ctx := WithView(context.Background(), Viewing{Taxonomy: "post_tag", Slug: "beta"})
	got, ok := r.Render(ctx, Defaults(), NoID)
	require.True(t, ok)
	assert.Contains(t, got, `<option value="http://example.test/tag/beta/" selected="selected">Beta</option>`)
	assert.Equal(t, 1, strings.Count(got, "selected="))

	ctx = WithView(context.Background(), Viewing{Taxonomy: "genre", Slug: "beta"})
	got, _ = r.Render(ctx, Defaults(), NoID)
	assert.NotContains(t, got, "selected=")
}

func TestRender_EscapesText(t *testing.T) {
	host := newFakeHost(tag(1, `Rock & "Roll" <3`, "rock-roll", 1))
	r := NewRenderer(host, host, zap.NewNop())

	opts := Defaults()
	opts.SelectName = "Tags & more"

	got, ok := r.Render(context.Background(), opts, NoID)
	require.True(t, ok)
	assert.Contains(t, got, `<option value="">Tags &amp; more</option>`)
	assert.Contains(t, got, `>Rock &amp; &#34;Roll&#34; &lt;3</option>`)
}
