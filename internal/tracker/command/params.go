package command

import (
	"encoding/json"
	"math"
	"strconv"
)

// Params carries the loosely typed parameter map of a command envelope.
// Values arrive from JSON decoding, so numbers are float64 and everything
// else is string, bool, nil, nested maps or slices.
type Params map[string]any

// Int64 extracts a 64-bit integer parameter. Native integers are taken
// as-is, integral floats are narrowed, numeric strings are parsed. A missing
// key, a parse failure or an unsupported type all report absence; callers
// surface one uniform "required" message for every case.
func (p Params) Int64(key string) (int64, bool) {
	if p == nil {
		return 0, false
	}
	switch v := p[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Int extracts an integer parameter under the same coercion rules as Int64.
func (p Params) Int(key string) (int, bool) {
	n, ok := p.Int64(key)
	if !ok {
		return 0, false
	}
	return int(n), true
}

// String extracts a string parameter. Only native strings qualify; numbers
// are never stringified.
func (p Params) String(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	s, ok := p[key].(string)
	return s, ok
}
