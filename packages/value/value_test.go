package value

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFromAnyKinds(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind Kind
		tag  string
	}{
		{"nil", nil, KindNull, "null"},
		{"string", "hello", KindString, "string"},
		{"float", 3.14, KindNumber, "number"},
		{"int", 42, KindNumber, "number"},
		{"bool", true, KindBool, "boolean"},
		{"array", []any{1, 2, 3}, KindArray, "array"},
		{"object", map[string]any{"a": 1}, KindObject, "object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromAny(tt.in)
			if err != nil {
				t.Fatalf("FromAny(%v) error: %v", tt.in, err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", v.Kind(), tt.kind)
			}
			if v.Kind().String() != tt.tag {
				t.Errorf("tag = %q, want %q", v.Kind().String(), tt.tag)
			}
		})
	}
}

func TestFromAnyNotSerializable(t *testing.T) {
	_, err := FromAny(func() {})
	if err == nil {
		t.Fatal("expected error for func value")
	}
	var serr *SerializationError
	if !errors.As(err, &serr) {
		t.Errorf("expected SerializationError, got %T", err)
	}
}

func TestRoundTrip(t *testing.T) {
	in := map[string]any{
		"name":  "Zhang",
		"age":   float64(30),
		"tags":  []any{"a", "b"},
		"extra": map[string]any{"ok": true, "note": nil},
	}

	v, err := FromAny(in)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}

	back, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Equal(back) {
		t.Errorf("round trip mismatch: %s vs %s", v.Display(), back.Display())
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"string raw", Str("hello"), "hello"},
		{"integer number", Num(30), "30"},
		{"fractional number", Num(9.99), "9.99"},
		{"bool", Bool(true), "true"},
		{"null", Null, "null"},
		{"array", Arr(Num(1), Num(2)), "[1,2]"},
		{"object", Obj(map[string]Value{"a": Num(1)}), `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeysSorted(t *testing.T) {
	v := Obj(map[string]Value{"b": Null, "a": Null, "c": Null})
	keys := v.Keys()
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestEqual(t *testing.T) {
	a := Obj(map[string]Value{"x": Arr(Num(1), Str("two"))})
	b := Obj(map[string]Value{"x": Arr(Num(1), Str("two"))})
	c := Obj(map[string]Value{"x": Arr(Num(1), Str("three"))})

	if !a.Equal(b) {
		t.Error("identical values should be equal")
	}
	if a.Equal(c) {
		t.Error("different values should not be equal")
	}
	if a.Equal(Null) {
		t.Error("object should not equal null")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("a very long string indeed", 10); got != "a very lon..." {
		t.Errorf("Truncate long = %q", got)
	}
}
