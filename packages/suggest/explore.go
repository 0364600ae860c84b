package suggest

import (
	"fmt"

	"github.com/stepvault/stepvault/packages/value"
)

// PropertyNode is one node of the recursive property tree produced by
// Explore. Path is the full accessor expression body (variable name
// included), ready to be wrapped in ${...} by the editor.
type PropertyNode struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Preview    string          `json:"preview"`
	Path       string          `json:"path"`
	Properties []*PropertyNode `json:"properties,omitempty"`
}

// Explore walks the named variable's value down to maxDepth levels. Arrays
// are represented by an exemplar element at index 0 rather than enumerating
// every index.
func (s *Service) Explore(name string, maxDepth int) ([]*PropertyNode, error) {
	key := fmt.Sprintf("explore:%s:%d", name, maxDepth)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*PropertyNode), nil
	}

	v, ok, err := s.store.Get(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("unknown variable %q", name)
	}

	nodes := exploreValue(v, name, maxDepth)
	s.cache.Add(key, nodes)
	return nodes, nil
}

func exploreValue(v value.Value, path string, depth int) []*PropertyNode {
	if depth <= 0 {
		return nil
	}
	switch v.Kind() {
	case value.KindObject:
		keys := v.Keys()
		nodes := make([]*PropertyNode, 0, len(keys))
		for _, k := range keys {
			child := v.ObjVal()[k]
			childPath := path + "." + k
			nodes = append(nodes, &PropertyNode{
				Name:       k,
				Type:       child.Kind().String(),
				Preview:    Preview(child),
				Path:       childPath,
				Properties: exploreValue(child, childPath, depth-1),
			})
		}
		return nodes
	case value.KindArray:
		arr := v.ArrVal()
		if len(arr) == 0 {
			return nil
		}
		childPath := path + "[0]"
		return []*PropertyNode{{
			Name:       "[0]",
			Type:       arr[0].Kind().String(),
			Preview:    Preview(arr[0]),
			Path:       childPath,
			Properties: exploreValue(arr[0], childPath, depth-1),
		}}
	default:
		return nil
	}
}
