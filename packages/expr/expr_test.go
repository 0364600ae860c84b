package expr

import (
	"testing"

	"github.com/stepvault/stepvault/packages/value"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string // verbatim texts
	}{
		{"no expressions", "plain text", nil},
		{"bare name", "${user}", []string{"${user}"}},
		{"dotted", "hi ${user.name}!", []string{"${user.name}"}},
		{"indexed", "${items[0]}", []string{"${items[0]}"}},
		{"negative index", "${items[-1].name}", []string{"${items[-1].name}"}},
		{"multiple", "${a} and ${b.c}", []string{"${a}", "${b.c}"}},
		{"unicode name", "${用户.名字}", []string{"${用户.名字}"}},
		{"unclosed", "${user", nil},
		{"empty", "${}", nil},
		{"bad index", "${a[b]}", nil},
		{"trailing dot", "${a.}", nil},
		{"adjacent", "${a}${b}", []string{"${a}", "${b}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Scan(%q) found %d expressions, want %d", tt.input, len(got), len(tt.want))
			}
			for i, e := range got {
				if e.Text != tt.want[i] {
					t.Errorf("expression %d = %q, want %q", i, e.Text, tt.want[i])
				}
			}
		})
	}
}

func TestScanPath(t *testing.T) {
	exprs := Scan("${items[-1].name}")
	if len(exprs) != 1 {
		t.Fatal("expected one expression")
	}
	e := exprs[0]
	if e.Name != "items" {
		t.Errorf("Name = %q", e.Name)
	}
	if len(e.Path) != 2 {
		t.Fatalf("Path = %v", e.Path)
	}
	if !e.Path[0].IsIndex || e.Path[0].Index != -1 {
		t.Errorf("first segment = %+v", e.Path[0])
	}
	if e.Path[1].IsIndex || e.Path[1].Key != "name" {
		t.Errorf("second segment = %+v", e.Path[1])
	}
	if got := e.PathString(); got != "[-1].name" {
		t.Errorf("PathString() = %q", got)
	}
}

func TestParseWholeOnly(t *testing.T) {
	if _, ok := Parse("${user.name}"); !ok {
		t.Error("exact expression should parse")
	}
	if _, ok := Parse("hello ${user}"); ok {
		t.Error("embedded expression should not parse as standalone")
	}
	if _, ok := Parse("${a} ${b}"); ok {
		t.Error("two expressions should not parse as standalone")
	}
}

func mustValue(t *testing.T, v any) value.Value {
	t.Helper()
	val, err := value.FromAny(v)
	if err != nil {
		t.Fatal(err)
	}
	return val
}

func TestApply(t *testing.T) {
	root := mustValue(t, map[string]any{
		"name": "Zhang",
		"addresses": []any{
			map[string]any{"city": "Beijing"},
			map[string]any{"city": "Shanghai"},
		},
	})

	tests := []struct {
		name string
		path string
		want string
	}{
		{"key", "${u.name}", "Zhang"},
		{"index then key", "${u.addresses[0].city}", "Beijing"},
		{"negative index", "${u.addresses[-1].city}", "Shanghai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := Parse(tt.path)
			if !ok {
				t.Fatalf("Parse(%q) failed", tt.path)
			}
			got, perr := Apply(root, e.Name, e.Path)
			if perr != nil {
				t.Fatalf("Apply: %v", perr)
			}
			if got.Display() != tt.want {
				t.Errorf("Apply = %q, want %q", got.Display(), tt.want)
			}
		})
	}
}

func TestApplyErrors(t *testing.T) {
	root := mustValue(t, map[string]any{
		"name": "x",
		"tags": []any{"a", "b"},
	})

	tests := []struct {
		name string
		path string
		kind ErrKind
	}{
		{"missing key", "${u.missing}", ErrUndefinedProperty},
		{"index on object", "${u[0]}", ErrTypeMismatch},
		{"key on array", "${u.tags.first}", ErrTypeMismatch},
		{"key on string", "${u.name.length}", ErrTypeMismatch},
		{"out of range", "${u.tags[5]}", ErrIndexOutOfRange},
		{"negative out of range", "${u.tags[-3]}", ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := Parse(tt.path)
			if !ok {
				t.Fatalf("Parse(%q) failed", tt.path)
			}
			_, perr := Apply(root, e.Name, e.Path)
			if perr == nil {
				t.Fatal("expected error")
			}
			if perr.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", perr.Kind, tt.kind)
			}
		})
	}
}

func TestPathErrorSuggestion(t *testing.T) {
	root := mustValue(t, map[string]any{"a": 1, "b": 2})
	e, _ := Parse("${u.c}")
	_, perr := Apply(root, e.Name, e.Path)
	if perr == nil {
		t.Fatal("expected error")
	}
	if got := perr.Suggestion(); got != "available properties: a, b" {
		t.Errorf("Suggestion() = %q", got)
	}

	arr := mustValue(t, []any{1, 2, 3})
	e2, _ := Parse("${u[9]}")
	_, perr = Apply(arr, e2.Name, e2.Path)
	if perr == nil {
		t.Fatal("expected error")
	}
	if got := perr.Suggestion(); got != "valid indices: 0..2 (or -1..-3)" {
		t.Errorf("Suggestion() = %q", got)
	}
}
