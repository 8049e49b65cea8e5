package dropdown

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/hpungsan/tagdrop/internal/taxonomy"
)

// FieldPrefix prefixes the name and numeric id attributes of every dropdown.
const FieldPrefix = "taxonomy_dropdown_widget_dropdown_"

// IDKind discriminates InstanceID variants.
type IDKind int

const (
	KindNone IDKind = iota
	KindNumeric
	KindSlug
)

// InstanceID distinguishes multiple dropdowns on one page. The zero value is NoID.
type InstanceID struct {
	kind IDKind
	num  int64
	slug string
}

// NoID is the absent instance id.
var NoID = InstanceID{}

// NumericID identifies a numbered widget instance.
func NumericID(n int64) InstanceID {
	return InstanceID{kind: KindNumeric, num: n}
}

// SlugID identifies a named dropdown. s is slugified; an empty result is NoID.
func SlugID(s string) InstanceID {
	slug := taxonomy.Slugify(s)
	if slug == "" {
		return NoID
	}
	return InstanceID{kind: KindSlug, slug: slug}
}

var numericRegex = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?\s*$`)

// ParseInstanceID reads an instance id from loosely typed input. Integers
// and decimal strings are numeric, other strings are slugs, and nil,
// booleans or composite values are NoID.
func ParseInstanceID(v any) InstanceID {
	switch x := v.(type) {
	case nil, bool:
		return NoID
	case InstanceID:
		return x
	case string:
		return parseIDString(x)
	case json.Number:
		return parseIDString(x.String())
	case float32:
		return NumericID(truncFloat(float64(x)))
	case float64:
		return NumericID(truncFloat(x))
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NumericID(toInt(v))
	}
	return NoID
}

func parseIDString(s string) InstanceID {
	if !numericRegex.MatchString(s) {
		return SlugID(s)
	}
	trimmed := strings.TrimSpace(s)
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return NumericID(n)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(f, 0) {
		return NumericID(leadingInt(trimmed))
	}
	return NumericID(truncFloat(f))
}

// Kind reports which variant id holds.
func (id InstanceID) Kind() IDKind { return id.kind }

// IsZero reports whether id is NoID.
func (id InstanceID) IsZero() bool { return id.kind == KindNone }

// Number returns the numeric value of a NumericID, or 0.
func (id InstanceID) Number() int64 {
	if id.kind != KindNumeric {
		return 0
	}
	return id.num
}

// Slug returns the slug of a SlugID, or "".
func (id InstanceID) Slug() string {
	if id.kind != KindSlug {
		return ""
	}
	return id.slug
}

// FieldName is the value of the select's name attribute.
func (id InstanceID) FieldName() string {
	return FieldPrefix + id.String()
}

// DOMID is the value of the select's id attribute; "" means the attribute
// is omitted.
func (id InstanceID) DOMID() string {
	switch id.kind {
	case KindNumeric:
		return FieldPrefix + strconv.FormatInt(id.num, 10)
	case KindSlug:
		return id.slug
	}
	return ""
}

// String returns the bare id: the number, the slug, or "".
func (id InstanceID) String() string {
	switch id.kind {
	case KindNumeric:
		return strconv.FormatInt(id.num, 10)
	case KindSlug:
		return id.slug
	}
	return ""
}

// GoString keeps test failure output readable.
func (id InstanceID) GoString() string {
	switch id.kind {
	case KindNumeric:
		return fmt.Sprintf("NumericID(%d)", id.num)
	case KindSlug:
		return fmt.Sprintf("SlugID(%q)", id.slug)
	}
	return "NoID"
}
