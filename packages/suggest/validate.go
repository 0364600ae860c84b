package suggest

import (
	"github.com/stepvault/stepvault/packages/expr"
)

// ValidationResult is the outcome of checking one expression. Exactly one
// result is produced per input, valid or not.
type ValidationResult struct {
	Expression    string `json:"expression"`
	IsValid       bool   `json:"isValid"`
	ResolvedValue any    `json:"resolvedValue,omitempty"`
	DataType      string `json:"dataType,omitempty"`
	Error         string `json:"error,omitempty"`
	Suggestion    string `json:"suggestion,omitempty"`
}

// Validate checks a batch of expressions against the store without touching
// the reference audit log: editing-time validation must not pollute the
// execution-time trail. Individual bad expressions never fail the batch.
func (s *Service) Validate(expressions []string, stepIndex int) []*ValidationResult {
	_ = stepIndex // reserved for the caller's context; validation resolves against current contents
	results := make([]*ValidationResult, 0, len(expressions))
	for _, text := range expressions {
		results = append(results, s.validateOne(text))
	}
	return results
}

func (s *Service) validateOne(text string) *ValidationResult {
	res := &ValidationResult{Expression: text}

	e, ok := expr.Parse(text)
	if !ok {
		res.Error = "not a valid ${...} expression"
		return res
	}

	resolved, perr := s.resolver.ResolvePath(e)
	if perr != nil {
		res.Error = perr.Error()
		res.Suggestion = perr.Suggestion()
		return res
	}

	res.IsValid = true
	res.ResolvedValue = resolved.ToAny()
	res.DataType = resolved.Kind().String()
	return res
}
