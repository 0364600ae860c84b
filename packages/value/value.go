// Package value models the JSON values that steps produce and consume as a
// tagged union. The kind of a value is computed once, when it enters the
// system, so everything downstream (path resolution, previews, persistence)
// can switch exhaustively instead of re-deriving types from any.
package value

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which member of the union a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

// String returns the data-type tag stored alongside a variable.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []Value
	obj  map[string]Value
}

var Null = Value{}

func Str(s string) Value    { return Value{kind: KindString, str: s} }
func Num(f float64) Value   { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }
func Arr(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

func Obj(m map[string]Value) Value {
	return Value{kind: KindObject, obj: m}
}

func (v Value) Kind() Kind               { return v.kind }
func (v Value) StrVal() string           { return v.str }
func (v Value) NumVal() float64          { return v.num }
func (v Value) BoolVal() bool            { return v.b }
func (v Value) ArrVal() []Value          { return v.arr }
func (v Value) ObjVal() map[string]Value { return v.obj }

// Len returns the element count for arrays, the key count for objects and 0
// otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Keys returns the object's keys sorted, for deterministic previews and
// error suggestions. Nil for non-objects.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SerializationError reports a value that cannot be represented as JSON and
// therefore cannot be stored.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("value is not JSON-serializable: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// FromAny converts an arbitrary Go value into a Value. Plain JSON shapes
// (string, bool, numbers, nil, []any, map[string]any) convert directly;
// anything else goes through encoding/json and fails with a
// SerializationError if it cannot be marshaled.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return t, nil
	case string:
		return Str(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Num(t), nil
	case float32:
		return Num(float64(t)), nil
	case int:
		return Num(float64(t)), nil
	case int32:
		return Num(float64(t)), nil
	case int64:
		return Num(float64(t)), nil
	case uint:
		return Num(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Null, &SerializationError{Err: err}
		}
		return Num(f), nil
	case []any:
		arr := make([]Value, len(t))
		for i, el := range t {
			cv, err := FromAny(el)
			if err != nil {
				return Null, err
			}
			arr[i] = cv
		}
		return Value{kind: KindArray, arr: arr}, nil
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, el := range t {
			cv, err := FromAny(el)
			if err != nil {
				return Null, err
			}
			obj[k] = cv
		}
		return Value{kind: KindObject, obj: obj}, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return Null, &SerializationError{Err: err}
		}
		return Parse(data)
	}
}

// Parse decodes JSON text into a Value.
func Parse(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Null, &SerializationError{Err: err}
	}
	return FromAny(raw)
}

// ToAny converts back to the plain JSON shapes the rest of the system
// exchanges (map[string]any, []any, float64, ...).
func (v Value) ToAny() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindArray:
		out := make([]any, len(v.arr))
		for i, el := range v.arr {
			out[i] = el.ToAny()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, el := range v.obj {
			out[k] = el.ToAny()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToAny())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Display renders the value the way it is substituted into strings and
// logged in the reference audit trail: strings raw, numbers without
// trailing zeros, composites as compact JSON.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNull:
		return "null"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// FormatNumber renders a JSON number the shortest way that round-trips,
// so integers print without a decimal point.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Equal reports deep equality.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, el := range v.obj {
			oel, ok := other.obj[k]
			if !ok || !el.Equal(oel) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Truncate shortens a display string for previews.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// see suggest.Preview for the richer per-kind rendering; this one is the
// compact form used in error messages.
func (v Value) Describe() string {
	switch v.kind {
	case KindArray:
		return fmt.Sprintf("array with %d items", len(v.arr))
	case KindObject:
		return fmt.Sprintf("object with %d keys", len(v.obj))
	default:
		return v.kind.String() + " " + strings.TrimSpace(Truncate(v.Display(), 40))
	}
}
