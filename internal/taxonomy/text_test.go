package taxonomy

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Post_Tag ", "post_tag"},
		{"Two   Words", "two words"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Select Tag", "Select Tag"},
		{"markup stripped", "<b>Pick</b> a <em>tag</em>", "Pick a tag"},
		{"whitespace collapsed", "  Pick\n\t a   tag  ", "Pick a tag"},
		{"entities decoded", "Tom &amp; Jerry", "Tom & Jerry"},
		{"hellip entity", "&hellip;", "…"},
		{"script body dropped", "<script>alert(1)</script>Tags", "Tags"},
		{"style body dropped", "<style>p{}</style>Tags", "Tags"},
		{"octets removed", "100%41off", "100off"},
		{"nested octets removed", "a%2%41b", "a"},
		{"control characters dropped", "a\x00b\x07c", "abc"},
		{"invalid utf8 dropped", "ok\xffay", "okay"},
		{"blank", "   ", ""},
		{"only markup", "<br/>", ""},
		{"encoded markup stripped", "&lt;b&gt;Hot&lt;/b&gt; tags", "Hot tags"},
		{"encoded markup only", "&lt;br&gt;", ""},
		{"double encoded markup stripped", "&amp;lt;i&amp;gt;x", "x"},
		{"encoded octet removed", "100&#37;41off", "100off"},
		{"octet hides entity", "&l%41t;b&gt;x", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeText_Stable(t *testing.T) {
	inputs := []string{
		"&lt;b&gt;Hot&lt;/b&gt; tags",
		"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;Tags",
		"Tom &amp;amp; Jerry",
		"a &lt; b",
		"&hellip;",
		"<p>Pick&nbsp;one</p>",
	}
	for _, in := range inputs {
		once := SanitizeText(in)
		if twice := SanitizeText(once); twice != once {
			t.Errorf("SanitizeText(%q) = %q, but sanitizing again gives %q", in, once, twice)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"legacy_gtd", "legacy_gtd"},
		{"Crème Brûlée", "creme-brulee"},
		{" --A.B-- ", "a-b"},
		{"<em>x</em> y", "x-y"},
		{"My Widget #1!", "my-widget-1"},
		{"sidebar-2", "sidebar-2"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCountChars(t *testing.T) {
	if got := CountChars("héllo"); got != 5 {
		t.Errorf("CountChars(héllo) = %d, want 5", got)
	}
}

func TestTaxonomy_Selectable(t *testing.T) {
	tests := []struct {
		tax  Taxonomy
		want bool
	}{
		{Taxonomy{Name: "post_tag", Public: true}, true},
		{Taxonomy{Name: "genre", Public: false}, false},
		{Taxonomy{Name: "category", Public: true, Hierarchical: true}, false},
		{Taxonomy{Name: "nav_menu", Public: true}, false},
		{Taxonomy{Name: "post_format", Public: true}, false},
	}
	for _, tt := range tests {
		if got := tt.tax.Selectable(); got != tt.want {
			t.Errorf("%+v.Selectable() = %v, want %v", tt.tax, got, tt.want)
		}
	}
}

func TestValidName(t *testing.T) {
	for _, name := range []string{"post_tag", "genre", "a-b", "x1"} {
		if !ValidName(name) {
			t.Errorf("ValidName(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"", "Post Tag", "UPPER", "this_name_is_far_too_long_to_be_a_taxonomy"} {
		if ValidName(name) {
			t.Errorf("ValidName(%q) = true, want false", name)
		}
	}
}
