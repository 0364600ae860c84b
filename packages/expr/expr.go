// Package expr implements the ${...} expression syntax embedded in step
// parameters: scanning expressions out of strings, parsing the accessor
// path, and applying it to a stored value.
//
// The grammar is:
//
//	expr       := "${" path "}"
//	path       := identifier ( "." identifier | "[" index "]" )*
//	identifier := any run of characters excluding "}", "." and "["
//	index      := optional "-" followed by digits
//
// Text that merely looks like an expression but does not match the grammar
// (e.g. ${a[b]}) is not an expression and passes through untouched.
package expr

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/stepvault/stepvault/packages/value"
)

var pattern = regexp.MustCompile(`\$\{([^}.\[]+)((?:\.[^}.\[]+|\[-?[0-9]+\])*)\}`)

// Segment is one accessor applied after the variable name.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Expr is one parsed ${...} occurrence.
type Expr struct {
	Text  string // verbatim ${...} text
	Start int    // byte offset of the match within the scanned string
	End   int
	Name  string // leading identifier: the variable name
	Path  []Segment
}

// PathString renders the accessor chain after the variable name, e.g.
// "profile.name" or "[0].name". Empty when the expression is a bare name.
func (e *Expr) PathString() string {
	var b strings.Builder
	for _, seg := range e.Path {
		if !seg.IsIndex && b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Scan returns all non-overlapping expressions in s, left to right.
func Scan(s string) []*Expr {
	if !strings.Contains(s, "${") {
		return nil
	}
	idx := pattern.FindAllStringSubmatchIndex(s, -1)
	if idx == nil {
		return nil
	}
	out := make([]*Expr, 0, len(idx))
	for _, m := range idx {
		text := s[m[0]:m[1]]
		name := s[m[2]:m[3]]
		var accessors string
		if m[4] >= 0 {
			accessors = s[m[4]:m[5]]
		}
		out = append(out, &Expr{
			Text:  text,
			Start: m[0],
			End:   m[1],
			Name:  name,
			Path:  parseAccessors(accessors),
		})
	}
	return out
}

// Parse parses a standalone expression string such as "${items[0].name}".
// The whole input must be exactly one expression.
func Parse(s string) (*Expr, bool) {
	exprs := Scan(s)
	if len(exprs) != 1 || exprs[0].Start != 0 || exprs[0].End != len(s) {
		return nil, false
	}
	return exprs[0], true
}

// IsWhole reports whether e spans all of s, i.e. the parameter's entire
// value is this single expression.
func (e *Expr) IsWhole(s string) bool {
	return e.Start == 0 && e.End == len(s)
}

func parseAccessors(s string) []Segment {
	if s == "" {
		return nil
	}
	var segs []Segment
	for len(s) > 0 {
		switch s[0] {
		case '.':
			s = s[1:]
			end := strings.IndexAny(s, ".[")
			if end == -1 {
				end = len(s)
			}
			segs = append(segs, Segment{Key: s[:end]})
			s = s[end:]
		case '[':
			end := strings.IndexByte(s, ']')
			n, _ := strconv.Atoi(s[1:end])
			segs = append(segs, Segment{Index: n, IsIndex: true})
			s = s[end+1:]
		default:
			// unreachable: accessors come from the scan regex
			return segs
		}
	}
	return segs
}

// Apply walks the accessor chain against root, left to right. The returned
// PathError pinpoints the failing segment and the value it was applied to.
func Apply(root value.Value, variable string, path []Segment) (value.Value, *PathError) {
	cur := root
	for _, seg := range path {
		if seg.IsIndex {
			if cur.Kind() != value.KindArray {
				return value.Null, &PathError{
					Kind:     ErrTypeMismatch,
					Variable: variable,
					Segment:  seg.String(),
					Have:     cur.Kind(),
				}
			}
			arr := cur.ArrVal()
			i := seg.Index
			if i < 0 {
				i += len(arr)
			}
			if i < 0 || i >= len(arr) {
				return value.Null, &PathError{
					Kind:     ErrIndexOutOfRange,
					Variable: variable,
					Segment:  seg.String(),
					Length:   len(arr),
				}
			}
			cur = arr[i]
			continue
		}

		if cur.Kind() != value.KindObject {
			return value.Null, &PathError{
				Kind:     ErrTypeMismatch,
				Variable: variable,
				Segment:  seg.Key,
				Have:     cur.Kind(),
			}
		}
		next, ok := cur.ObjVal()[seg.Key]
		if !ok {
			return value.Null, &PathError{
				Kind:     ErrUndefinedProperty,
				Variable: variable,
				Segment:  seg.Key,
				Keys:     cur.Keys(),
			}
		}
		cur = next
	}
	return cur, nil
}
