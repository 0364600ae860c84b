package expr

import (
	"fmt"
	"strings"

	"github.com/stepvault/stepvault/packages/value"
)

// ErrKind classifies why a path failed to resolve.
type ErrKind int

const (
	// ErrUndefinedVariable means the leading identifier names no stored variable.
	ErrUndefinedVariable ErrKind = iota
	// ErrUndefinedProperty means a dotted key is absent from the current object.
	ErrUndefinedProperty
	// ErrIndexOutOfRange means a bracket index falls outside the array.
	ErrIndexOutOfRange
	// ErrTypeMismatch means a key was applied to a non-object or an index to a
	// non-array.
	ErrTypeMismatch
)

func (k ErrKind) String() string {
	switch k {
	case ErrUndefinedVariable:
		return "undefined_variable"
	case ErrUndefinedProperty:
		return "undefined_property"
	case ErrIndexOutOfRange:
		return "index_out_of_range"
	default:
		return "type_mismatch"
	}
}

// PathError describes a failed resolution. It carries enough context about
// the value at the point of failure for validation tooling to suggest a fix:
// sibling keys when dotting into an object, the valid range when indexing an
// array.
type PathError struct {
	Kind     ErrKind
	Variable string
	Segment  string // the accessor that failed, e.g. "name" or "[3]"
	Keys     []string
	Length   int
	Have     value.Kind // kind of the value the accessor was applied to
}

func (e *PathError) Error() string {
	switch e.Kind {
	case ErrUndefinedVariable:
		return fmt.Sprintf("undefined variable %q", e.Variable)
	case ErrUndefinedProperty:
		return fmt.Sprintf("property %q not found on %q", e.Segment, e.Variable)
	case ErrIndexOutOfRange:
		return fmt.Sprintf("index %s out of range on %q (length %d)", e.Segment, e.Variable, e.Length)
	default:
		return fmt.Sprintf("cannot apply %q to %s value of %q", e.Segment, e.Have, e.Variable)
	}
}

// Suggestion renders a short human hint for editor tooling.
func (e *PathError) Suggestion() string {
	switch {
	case e.Kind == ErrUndefinedProperty && len(e.Keys) > 0:
		return "available properties: " + strings.Join(e.Keys, ", ")
	case e.Kind == ErrIndexOutOfRange && e.Length > 0:
		return fmt.Sprintf("valid indices: 0..%d (or -1..-%d)", e.Length-1, e.Length)
	case e.Kind == ErrIndexOutOfRange:
		return "array is empty"
	case e.Kind == ErrTypeMismatch:
		return fmt.Sprintf("value is of type %s", e.Have)
	default:
		return ""
	}
}
