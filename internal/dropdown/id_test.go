package dropdown

import "testing"

func TestParseInstanceID(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		kind  IDKind
		field string
		domID string
	}{
		{"nil", nil, KindNone, "taxonomy_dropdown_widget_dropdown_", ""},
		{"int", 4, KindNumeric, "taxonomy_dropdown_widget_dropdown_4", "taxonomy_dropdown_widget_dropdown_4"},
		{"float", 2.0, KindNumeric, "taxonomy_dropdown_widget_dropdown_2", "taxonomy_dropdown_widget_dropdown_2"},
		{"numeric string", "12", KindNumeric, "taxonomy_dropdown_widget_dropdown_12", "taxonomy_dropdown_widget_dropdown_12"},
		{"decimal string", "3.0", KindNumeric, "taxonomy_dropdown_widget_dropdown_3", "taxonomy_dropdown_widget_dropdown_3"},
		{"slug", "footer", KindSlug, "taxonomy_dropdown_widget_dropdown_footer", "footer"},
		{"slugified", "My Sidebar", KindSlug, "taxonomy_dropdown_widget_dropdown_my-sidebar", "my-sidebar"},
		{"mixed string is a slug", "12abc", KindSlug, "taxonomy_dropdown_widget_dropdown_12abc", "12abc"},
		{"empty after slugify", "<b></b>", KindNone, "taxonomy_dropdown_widget_dropdown_", ""},
		{"bool", true, KindNone, "taxonomy_dropdown_widget_dropdown_", ""},
		{"list", []any{1}, KindNone, "taxonomy_dropdown_widget_dropdown_", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := ParseInstanceID(tt.in)
			if id.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", id.Kind(), tt.kind)
			}
			if got := id.FieldName(); got != tt.field {
				t.Errorf("FieldName() = %q, want %q", got, tt.field)
			}
			if got := id.DOMID(); got != tt.domID {
				t.Errorf("DOMID() = %q, want %q", got, tt.domID)
			}
		})
	}
}

func TestInstanceIDAccessors(t *testing.T) {
	if NoID != (InstanceID{}) || !NoID.IsZero() {
		t.Error("zero InstanceID should be NoID")
	}
	if got := NumericID(7).Number(); got != 7 {
		t.Errorf("Number() = %d, want 7", got)
	}
	if got := SlugID("legacy_gtd").Slug(); got != "legacy_gtd" {
		t.Errorf("Slug() = %q, want legacy_gtd", got)
	}
	if got := SlugID("x").Number(); got != 0 {
		t.Errorf("slug Number() = %d, want 0", got)
	}
	if ParseInstanceID(NumericID(5)) != NumericID(5) {
		t.Error("ParseInstanceID should pass InstanceID through")
	}
}
