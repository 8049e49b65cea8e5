package dropdown

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWidgetDisplay(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost(tag(1, "Alpha", "alpha", 3))
	svc := NewService(host, zap.NewNop())
	w := svc.Widget()

	opts := Defaults()
	opts.Title = "Tags & Topics"

	got := w.Display(ctx, DefaultWidgetArgs(), 2, opts)
	assert.True(t, strings.HasPrefix(got,
		`<div class="widget taxonomy_dropdown_widget"><h2 class="widget-title">`+
			`<label for="taxonomy_dropdown_widget_dropdown_2">Tags &amp; Topics</label></h2>`+
			`<select name="taxonomy_dropdown_widget_dropdown_2"`), got)
	assert.True(t, strings.HasSuffix(got, `</select></div>`), got)
}

func TestWidgetDisplay_EmptyTitleOmitsTitleBlock(t *testing.T) {
	host := newFakeHost(tag(1, "Alpha", "alpha", 3))
	w := NewService(host, zap.NewNop()).Widget()

	got := w.Display(context.Background(), WidgetArgs{BeforeWidget: "<li>", AfterWidget: "</li>", BeforeTitle: "<h3>", AfterTitle: "</h3>"}, 1, Defaults())
	assert.True(t, strings.HasPrefix(got, "<li><select"), got)
	assert.NotContains(t, got, "<h3>")
	assert.NotContains(t, got, "<label")
}

func TestWidgetDisplay_NoTermsEmitsNothing(t *testing.T) {
	host := newFakeHost()
	w := NewService(host, zap.NewNop()).Widget()

	opts := Defaults()
	opts.Title = "Tags"
	assert.Equal(t, "", w.Display(context.Background(), DefaultWidgetArgs(), 1, opts))
}

func TestWidgetDisplay_TitleFilters(t *testing.T) {
	host := newFakeHost(tag(1, "Alpha", "alpha", 3))
	w := NewService(host, zap.NewNop()).Widget()

	var seen int64
	w.AddTitleFilter(func(label string, number int64) string {
		seen = number
		return "<span>" + label + "</span>"
	})
	w.AddTitleFilter(func(label string, _ int64) string {
		return strings.ToUpper(label)
	})

	opts := Defaults()
	opts.Title = "Tags"
	got := w.Display(context.Background(), WidgetArgs{}, 4, opts)

	assert.Equal(t, int64(4), seen)
	assert.Contains(t, got, `<SPAN><LABEL FOR="TAXONOMY_DROPDOWN_WIDGET_DROPDOWN_4">TAGS</LABEL></SPAN>`)
}

func TestWidgetUpdate(t *testing.T) {
	ctx := context.Background()
	w := NewService(newFakeHost(), zap.NewNop()).Widget()

	got := w.Update(ctx, map[string]any{"limit": "3"})
	assert.Equal(t, DefaultWidgetTitle, got.Title)
	assert.Equal(t, 3, got.Limit)

	got = w.Update(ctx, map[string]any{"title": ""})
	assert.Equal(t, "", got.Title, "an explicit empty title is kept")

	raw := map[string]any{"cutoff": "~"}
	w.Update(ctx, raw)
	_, mutated := raw["title"]
	assert.False(t, mutated, "Update must not modify the caller's map")
}
