// Package suggest serves editor tooling over the variable store:
// autocomplete listings, deep property exploration, fuzzy name search and
// batch reference validation. Results are cached briefly per query shape;
// the cache is dropped whenever the store changes, so tooling never sees
// pre-write results from this process.
package suggest

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/stepvault/stepvault/packages/resolve"
	"github.com/stepvault/stepvault/packages/store"
	"github.com/stepvault/stepvault/packages/value"
)

// AllSteps disables the temporal visibility filter.
const AllSteps = -1

const (
	defaultTTL       = 30 * time.Second
	defaultCacheSize = 128
)

// Property is a shallow (one-level) child of an object or array value.
type Property struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Preview string `json:"preview"`
}

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	Name            string      `json:"name"`
	DataType        string      `json:"dataType"`
	SourceStepIndex int         `json:"sourceStepIndex"`
	SourceMethod    string      `json:"sourceMethod"`
	Preview         string      `json:"preview"`
	Properties      []*Property `json:"properties,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// Service answers suggestion, exploration, search and validation queries
// for one execution.
type Service struct {
	store    *store.VarStore
	resolver *resolve.Resolver
	cache    *expirable.LRU[string, any]
}

// Option configures a Service.
type Option func(*settings)

type settings struct {
	ttl       time.Duration
	cacheSize int
}

// WithTTL overrides the cache lifetime.
func WithTTL(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.ttl = d
		}
	}
}

func New(s *store.VarStore, resolver *resolve.Resolver, opts ...Option) *Service {
	cfg := settings{ttl: defaultTTL, cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	svc := &Service{
		store:    s,
		resolver: resolver,
		cache:    expirable.NewLRU[string, any](cfg.cacheSize, nil, cfg.ttl),
	}
	// Event-driven invalidation: any write or clear drops everything cached.
	s.OnChange(func() { svc.cache.Purge() })
	return svc
}

// ListSuggestions returns the variables a step at stepIndex may reference:
// only those produced by strictly earlier steps. Pass AllSteps to list
// everything. limit <= 0 means no cap.
func (s *Service) ListSuggestions(stepIndex int, includeProperties bool, limit int) ([]*Suggestion, error) {
	key := fmt.Sprintf("list:%d:%t:%d", stepIndex, includeProperties, limit)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*Suggestion), nil
	}

	vars, err := s.visibleVariables(stepIndex)
	if err != nil {
		return nil, err
	}

	out := make([]*Suggestion, 0, len(vars))
	for _, v := range vars {
		if limit > 0 && len(out) >= limit {
			break
		}
		sg := &Suggestion{
			Name:            v.Name,
			DataType:        v.DataType,
			SourceStepIndex: v.SourceStepIndex,
			SourceMethod:    v.SourceMethod,
			Preview:         Preview(v.Value),
			CreatedAt:       v.CreatedAt,
		}
		if includeProperties {
			sg.Properties = shallowProperties(v.Value)
		}
		out = append(out, sg)
	}

	s.cache.Add(key, out)
	return out, nil
}

// visibleVariables applies the temporal visibility rule.
func (s *Service) visibleVariables(stepIndex int) ([]*store.Variable, error) {
	vars, err := s.store.List()
	if err != nil {
		return nil, err
	}
	if stepIndex == AllSteps {
		return vars, nil
	}
	visible := make([]*store.Variable, 0, len(vars))
	for _, v := range vars {
		if v.SourceStepIndex < stepIndex {
			visible = append(visible, v)
		}
	}
	return visible, nil
}

func shallowProperties(v value.Value) []*Property {
	switch v.Kind() {
	case value.KindObject:
		keys := v.Keys()
		props := make([]*Property, 0, len(keys))
		for _, k := range keys {
			child := v.ObjVal()[k]
			props = append(props, &Property{
				Name:    k,
				Type:    child.Kind().String(),
				Preview: Preview(child),
			})
		}
		return props
	case value.KindArray:
		arr := v.ArrVal()
		if len(arr) == 0 {
			return nil
		}
		// one exemplar element stands in for the whole array
		return []*Property{{
			Name:    "[0]",
			Type:    arr[0].Kind().String(),
			Preview: Preview(arr[0]),
		}}
	default:
		return nil
	}
}

// Preview renders a short human-readable rendering of a value for
// autocomplete entries.
func Preview(v value.Value) string {
	switch v.Kind() {
	case value.KindArray:
		n := v.Len()
		if n == 1 {
			return "[1 item]"
		}
		return fmt.Sprintf("[%d items]", n)
	case value.KindObject:
		keys := v.Keys()
		if len(keys) > 3 {
			return "{" + strings.Join(keys[:3], ", ") + ", ...}"
		}
		return "{" + strings.Join(keys, ", ") + "}"
	default:
		return value.Truncate(v.Display(), 50)
	}
}
