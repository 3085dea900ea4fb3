package changefmt

import (
	"fmt"
	"io"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/loog-project/treediff/pkg/treediff"
)

func writeYAML(w io.Writer, changes treediff.Changes) error {
	root := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if len(changes) == 0 {
		root.Style = yaml.FlowStyle
	}
	for _, c := range changes {
		node, err := changeNode(c)
		if err != nil {
			return err
		}
		root.Content = append(root.Content, node)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

func changeNode(c treediff.Change) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	pathNode := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	for _, key := range c.Path {
		keyNode, err := valueNode(key)
		if err != nil {
			return nil, err
		}
		pathNode.Content = append(pathNode.Content, keyNode)
	}
	node.Content = append(node.Content, scalarNode("type"), scalarNode(string(c.Type)))
	node.Content = append(node.Content, scalarNode("path"), pathNode)
	if c.Type != treediff.ChangeAdd {
		old, err := valueNode(c.OldValue)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, scalarNode("oldValue"), old)
	}
	if c.Type != treediff.ChangeDelete {
		v, err := valueNode(c.NewValue)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, scalarNode("newValue"), v)
	}
	return node, nil
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// valueNode converts a tree into YAML nodes so ordered maps keep their
// order; plain Go maps are written with sorted keys.
func valueNode(v any) (*yaml.Node, error) {
	switch tv := v.(type) {
	case *treediff.Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range tv.Keys() {
			child, _ := tv.Get(k)
			cn, err := valueNode(child)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalarNode(k), cn)
		}
		return node, nil
	case map[string]any:
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			cn, err := valueNode(tv[k])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalarNode(k), cn)
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range tv {
			cn, err := valueNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, cn)
		}
		return node, nil
	}

	node := new(yaml.Node)
	if err := node.Encode(v); err != nil {
		return nil, fmt.Errorf("cannot encode %s value: %w", reflect.TypeOf(v), err)
	}
	return node, nil
}
