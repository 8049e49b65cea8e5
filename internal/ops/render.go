package ops

import (
	"context"
	"sort"
	"strings"

	"github.com/hpungsan/tagdrop/internal/dropdown"
	"github.com/hpungsan/tagdrop/internal/errors"
)

// RenderDropdownInput contains parameters for the RenderDropdown operation.
type RenderDropdownInput struct {
	Options map[string]any // raw options bag
	ID      any            // instance id: number, numeric string or slug
}

// RenderOutput contains the result of a render operation.
type RenderOutput struct {
	Markup     string `json:"markup"`
	NoTerms    bool   `json:"no_terms"`
	InstanceID string `json:"instance_id,omitempty"`
}

// RenderDropdown sanitizes the options and renders the dropdown.
func RenderDropdown(ctx context.Context, svc *dropdown.Service, input RenderDropdownInput) (*RenderOutput, error) {
	id := dropdown.ParseInstanceID(input.ID)
	markup, ok := svc.Dropdown(ctx, input.Options, id)
	return &RenderOutput{Markup: markup, NoTerms: !ok, InstanceID: id.String()}, nil
}

// RenderLegacyInput contains parameters for the RenderLegacy operation.
type RenderLegacyInput struct {
	Shim string         // generate_tag_dropdown, tdw_direct or make_tag_dropdown
	Args map[string]any // options bag, or limit/count/exclude for positional shims
}

// RenderLegacy renders through one of the deprecated entry points.
func RenderLegacy(ctx context.Context, svc *dropdown.Service, input RenderLegacyInput) (*RenderOutput, error) {
	shim := strings.ToLower(strings.TrimSpace(input.Shim))
	if _, ok := dropdown.Shims[shim]; !ok {
		return nil, errors.NewInvalidRequest("shim must be one of: " + strings.Join(ShimNames(), ", "))
	}

	markup, ok, err := svc.Legacy(ctx, shim, input.Args)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return &RenderOutput{Markup: markup, NoTerms: !ok}, nil
}

// ShimNames lists the legacy shim names in sorted order.
func ShimNames() []string {
	names := make([]string, 0, len(dropdown.Shims))
	for name := range dropdown.Shims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
