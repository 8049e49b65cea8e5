package dropdown

import (
	"context"
	"fmt"
)

// Instance ids of the deprecated entry points.
var (
	legacyGenerateID = SlugID("legacy_gtd")
	legacyDirectID   = SlugID("legacy_tdw")
	legacyMakeID     = SlugID("legacy_mtd")
)

// Shim names accepted by Legacy.
const (
	ShimGenerateTagDropdown = "generate_tag_dropdown"
	ShimTDWDirect           = "tdw_direct"
	ShimMakeTagDropdown     = "make_tag_dropdown"
)

// Shims lists the deprecated entry points with the version each was
// deprecated in.
var Shims = map[string]string{
	ShimGenerateTagDropdown: "2.0",
	ShimTDWDirect:           "1.7",
	ShimMakeTagDropdown:     "1.6",
}

func deprecationNotice(name, version string) string {
	return fmt.Sprintf("<!-- NOTICE: %s is deprecated as of version %s. Use the dropdown helper instead. -->", name, version)
}

// GenerateTagDropdown renders a full options bag.
//
// Deprecated: use Service.Dropdown.
func (s *Service) GenerateTagDropdown(ctx context.Context, raw map[string]any) (string, bool) {
	return s.legacy(ctx, ShimGenerateTagDropdown, raw, legacyGenerateID)
}

// TDWDirect renders from positional arguments: the maximum name length,
// whether to show post counts, and term ids to exclude.
//
// Deprecated: use Service.Dropdown.
func (s *Service) TDWDirect(ctx context.Context, limit, count, exclude any) (string, bool) {
	raw := map[string]any{
		KeyMaxNameLength: limit,
		KeyPostCounts:    count,
	}
	if truthy(exclude) {
		raw[KeyIncExc] = string(Exclude)
		raw[KeyIncExcIDs] = exclude
	}
	return s.legacy(ctx, ShimTDWDirect, raw, legacyDirectID)
}

// MakeTagDropdown renders with only a maximum name length.
//
// Deprecated: use Service.Dropdown.
func (s *Service) MakeTagDropdown(ctx context.Context, limit any) (string, bool) {
	return s.legacy(ctx, ShimMakeTagDropdown, map[string]any{KeyMaxNameLength: limit}, legacyMakeID)
}

// Legacy dispatches a shim by name. args holds the options bag for
// generate_tag_dropdown and the keys "limit", "count" and "exclude" for the
// positional shims.
func (s *Service) Legacy(ctx context.Context, shim string, args map[string]any) (string, bool, error) {
	switch shim {
	case ShimGenerateTagDropdown:
		markup, ok := s.GenerateTagDropdown(ctx, args)
		return markup, ok, nil
	case ShimTDWDirect:
		markup, ok := s.TDWDirect(ctx, args["limit"], args["count"], args["exclude"])
		return markup, ok, nil
	case ShimMakeTagDropdown:
		markup, ok := s.MakeTagDropdown(ctx, args["limit"])
		return markup, ok, nil
	}
	return "", false, fmt.Errorf("unknown legacy shim %q", shim)
}

func (s *Service) legacy(ctx context.Context, shim string, raw map[string]any, id InstanceID) (string, bool) {
	notice := deprecationNotice(shim, Shims[shim])
	markup, ok := s.Dropdown(ctx, raw, id)
	return notice + markup, ok
}
