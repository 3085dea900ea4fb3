package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/loog-project/treediff/pkg/treediff"
)

// FromNode converts a decoded YAML node into a tree: mappings become
// *treediff.Map (source order), sequences []any, scalars their natural Go
// value (string, int, float64, bool, nil). Aliases are expanded.
func FromNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return FromNode(node.Content[0])

	case yaml.MappingNode:
		m := treediff.NewMap(len(node.Content) / 2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]
			if keyNode.ShortTag() == "!!merge" {
				if err := mergeInto(m, valueNode); err != nil {
					return nil, err
				}
				continue
			}
			value, err := FromNode(valueNode)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, value)
		}
		return m, nil

	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := FromNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil

	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("line %d: dangling alias %q", node.Line, node.Value)
		}
		return FromNode(node.Alias)

	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return value, nil
	}
	return nil, fmt.Errorf("line %d: unexpected yaml node kind %d", node.Line, node.Kind)
}

// mergeInto applies a `<<` merge key. Explicit keys already present win.
func mergeInto(m *treediff.Map, source *yaml.Node) error {
	merged, err := FromNode(source)
	if err != nil {
		return err
	}
	var sources []any
	switch v := merged.(type) {
	case *treediff.Map:
		sources = []any{v}
	case []any:
		sources = v
	default:
		return fmt.Errorf("line %d: merge value must be a mapping", source.Line)
	}
	for _, s := range sources {
		sm, ok := s.(*treediff.Map)
		if !ok {
			return fmt.Errorf("line %d: merge value must be a mapping", source.Line)
		}
		for _, k := range sm.Keys() {
			if _, exists := m.Get(k); exists {
				continue
			}
			v, _ := sm.Get(k)
			m.Set(k, v)
		}
	}
	return nil
}
