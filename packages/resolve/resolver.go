// Package resolve substitutes ${...} expressions inside step parameter
// trees with values from the variable store, recording every occurrence in
// the reference audit trail.
package resolve

import (
	"strings"
	"sync"

	"github.com/stepvault/stepvault/packages/expr"
	"github.com/stepvault/stepvault/packages/refs"
	"github.com/stepvault/stepvault/packages/store"
	"github.com/stepvault/stepvault/packages/value"
)

// WarnFunc receives soft failures (unresolved expressions). Resolution
// never aborts on them; the literal text stays in place.
type WarnFunc func(format string, args ...any)

// Resolver resolves parameters for one execution's steps.
type Resolver struct {
	store   *store.VarStore
	tracker *refs.Tracker // nil disables recording

	mu       sync.RWMutex
	warnFunc WarnFunc
}

func New(s *store.VarStore, tracker *refs.Tracker) *Resolver {
	return &Resolver{store: s, tracker: tracker}
}

// SetWarnFunc sets a callback invoked for each failed expression.
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	r.warnFunc = fn
	r.mu.Unlock()
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

// ResolveParameters walks the parameter tree and substitutes every
// expression it can resolve. Unresolvable expressions are left verbatim and
// logged as failed references; the rest of the tree still resolves. The
// tree's shape (keys, indices, non-string leaves) is never altered.
func (r *Resolver) ResolveParameters(params any, stepIndex int) (any, error) {
	tree, err := value.FromAny(params)
	if err != nil {
		return nil, err
	}
	resolved := r.resolveValue(tree, stepIndex)
	return resolved.ToAny(), nil
}

func (r *Resolver) resolveValue(v value.Value, stepIndex int) value.Value {
	switch v.Kind() {
	case value.KindString:
		return r.resolveString(v.StrVal(), stepIndex)
	case value.KindArray:
		arr := v.ArrVal()
		out := make([]value.Value, len(arr))
		for i, el := range arr {
			out[i] = r.resolveValue(el, stepIndex)
		}
		return value.Arr(out...)
	case value.KindObject:
		obj := v.ObjVal()
		out := make(map[string]value.Value, len(obj))
		for k, el := range obj {
			out[k] = r.resolveValue(el, stepIndex)
		}
		return value.Obj(out)
	default:
		// number, boolean, null: nothing to scan
		return v
	}
}

func (r *Resolver) resolveString(s string, stepIndex int) value.Value {
	exprs := expr.Scan(s)
	if len(exprs) == 0 {
		return value.Str(s)
	}

	// A parameter that is exactly one expression keeps the resolved value's
	// type instead of collapsing to its string form, so numeric and object
	// outputs survive substitution intact.
	if len(exprs) == 1 && exprs[0].IsWhole(s) {
		resolved, perr := r.resolveExpr(exprs[0], stepIndex)
		if perr != nil {
			return value.Str(s)
		}
		return resolved
	}

	var b strings.Builder
	last := 0
	for _, e := range exprs {
		b.WriteString(s[last:e.Start])
		resolved, perr := r.resolveExpr(e, stepIndex)
		if perr != nil {
			b.WriteString(e.Text)
		} else {
			b.WriteString(resolved.Display())
		}
		last = e.End
	}
	b.WriteString(s[last:])
	return value.Str(b.String())
}

// resolveExpr resolves one expression and records the attempt.
func (r *Resolver) resolveExpr(e *expr.Expr, stepIndex int) (value.Value, *expr.PathError) {
	resolved, perr := r.ResolvePath(e)

	ref := &refs.Reference{
		StepIndex:          stepIndex,
		VariableName:       e.Name,
		Path:               e.PathString(),
		OriginalExpression: e.Text,
	}
	if perr != nil {
		ref.Status = refs.StatusFailed
		ref.ErrorMessage = perr.Error()
		r.warn("unresolved expression %s: %v", e.Text, perr)
	} else {
		ref.Status = refs.StatusSuccess
		display := resolved.Display()
		ref.ResolvedValue = &display
	}
	if r.tracker != nil {
		if err := r.tracker.Record(ref); err != nil {
			r.warn("recording reference %s: %v", e.Text, err)
		}
	}
	return resolved, perr
}

// ResolvePath looks up the expression's variable and applies its accessor
// chain. Read-only: no reference is recorded. Used by both resolution and
// ad-hoc validation.
func (r *Resolver) ResolvePath(e *expr.Expr) (value.Value, *expr.PathError) {
	root, ok, err := r.store.Get(e.Name)
	if err != nil || !ok {
		return value.Null, &expr.PathError{
			Kind:     expr.ErrUndefinedVariable,
			Variable: e.Name,
		}
	}
	return expr.Apply(root, e.Name, e.Path)
}
