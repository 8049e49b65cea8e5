package dropdown

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// toInt converts loosely typed input to an integer the way form input is
// usually read: strings contribute their leading integer ("12abc" is 12,
// " 7" is 7, "3.9" is 3), floats truncate, booleans are 0 or 1, and
// non-empty lists and maps count as 1. Anything else is 0.
func toInt(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return clampUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return clampUint(x)
	case float32:
		return truncFloat(float64(x))
	case float64:
		return truncFloat(x)
	case json.Number:
		return leadingInt(x.String())
	case string:
		return leadingInt(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		if rv.Len() > 0 {
			return 1
		}
	}
	return 0
}

// nonNegative coerces v to an int, mapping negative values to 0.
func nonNegative(v any) int {
	n := toInt(v)
	if n < 0 {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

func clampUint(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(u)
}

func truncFloat(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// leadingInt parses an optional sign and the run of digits that follows
// leading whitespace. Values that overflow saturate.
func leadingInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		n = math.MaxInt64
		if neg {
			return math.MinInt64
		}
	}
	if neg {
		return -n
	}
	return n
}

// truthy reports whether v counts as "on": nil, false, zero numbers, "",
// "0" and empty lists or maps are off, everything else is on.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != "" && x != "0"
	case json.Number:
		return x.String() != "0" && x.String() != ""
	case float32:
		return x != 0
	case float64:
		return x != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// toText converts scalar input to a string. Lists, maps and other
// composite values yield "".
func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "1"
		}
		return ""
	case json.Number:
		return x.String()
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	}
	return ""
}

// toIDList parses term ids from a comma-separated string or a list. Each
// element is converted independently; only positive values survive.
func toIDList(v any) []int64 {
	ids := []int64{}

	var elems []any
	switch x := v.(type) {
	case string:
		for _, part := range strings.Split(x, ",") {
			elems = append(elems, part)
		}
	default:
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return ids
		}
		for i := 0; i < rv.Len(); i++ {
			elems = append(elems, rv.Index(i).Interface())
		}
	}

	for _, e := range elems {
		if id := toInt(e); id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
