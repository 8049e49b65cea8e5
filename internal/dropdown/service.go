package dropdown

import (
	"context"

	"go.uber.org/zap"
)

// Service is the dropdown entry point shared by the web, MCP and CLI
// surfaces. Configure filters before serving; afterwards it is safe for
// concurrent use.
type Service struct {
	*Sanitizer
	*Renderer
	widget *Widget
}

// NewService wires a sanitizer, renderer and widget over host.
func NewService(host Host, log *zap.Logger) *Service {
	s := NewSanitizer(host, log)
	r := NewRenderer(host, host, log)
	return &Service{Sanitizer: s, Renderer: r, widget: NewWidget(s, r)}
}

// Widget returns the sidebar widget wrapper.
func (s *Service) Widget() *Widget {
	return s.widget
}

// Dropdown sanitizes raw and renders it under id.
func (s *Service) Dropdown(ctx context.Context, raw map[string]any, id InstanceID) (string, bool) {
	return s.Render(ctx, s.Sanitize(ctx, raw), id)
}
