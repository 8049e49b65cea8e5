package dropdown

import (
	"context"
	"html"
)

// WidgetArgs is the markup a sidebar wraps around each widget.
type WidgetArgs struct {
	BeforeWidget string `json:"before_widget"`
	AfterWidget  string `json:"after_widget"`
	BeforeTitle  string `json:"before_title"`
	AfterTitle   string `json:"after_title"`
}

// DefaultWidgetArgs is the sidebar markup used when the caller has none.
func DefaultWidgetArgs() WidgetArgs {
	return WidgetArgs{
		BeforeWidget: `<div class="widget taxonomy_dropdown_widget">`,
		AfterWidget:  `</div>`,
		BeforeTitle:  `<h2 class="widget-title">`,
		AfterTitle:   `</h2>`,
	}
}

// TitleFilter rewrites the widget title markup. number is the widget number.
type TitleFilter func(label string, number int64) string

// Widget wraps a rendered dropdown in sidebar markup.
type Widget struct {
	sanitizer    *Sanitizer
	renderer     *Renderer
	titleFilters []TitleFilter
}

// NewWidget creates a Widget.
func NewWidget(s *Sanitizer, r *Renderer) *Widget {
	return &Widget{sanitizer: s, renderer: r}
}

// AddTitleFilter registers a title filter. Filters run in registration order.
func (w *Widget) AddTitleFilter(f TitleFilter) {
	w.titleFilters = append(w.titleFilters, f)
}

// Display renders widget number with opts. It returns "" when the dropdown
// has no terms, so an empty widget leaves no trace in the sidebar.
func (w *Widget) Display(ctx context.Context, args WidgetArgs, number int64, opts Options) string {
	id := NumericID(number)
	markup, ok := w.renderer.Render(ctx, opts, id)
	if !ok {
		return ""
	}

	out := args.BeforeWidget
	if opts.Title != "" {
		label := `<label for="` + id.DOMID() + `">` + html.EscapeString(opts.Title) + `</label>`
		for _, f := range w.titleFilters {
			label = f(label, number)
		}
		out += args.BeforeTitle + label + args.AfterTitle
	}
	out += markup + args.AfterWidget
	return out
}

// Update sanitizes new widget settings. A missing title gets the widget default.
func (w *Widget) Update(ctx context.Context, raw map[string]any) Options {
	if _, ok := raw[KeyTitle]; !ok {
		merged := make(map[string]any, len(raw)+1)
		for k, v := range raw {
			merged[k] = v
		}
		merged[KeyTitle] = DefaultWidgetTitle
		raw = merged
	}
	return w.sanitizer.Sanitize(ctx, raw)
}
