// Package diffpreview renders a YAML-like view of two trees with every
// change of [treediff.Diff] highlighted in place.
package diffpreview

import (
	"github.com/loog-project/treediff/pkg/treediff"
)

// ChangeType indicates the kind of change at a node
type ChangeType int

const (
	Unchanged ChangeType = iota
	Added
	Removed
	Modified
)

// Marker is the one-character gutter symbol of a change type.
func (c ChangeType) Marker() string {
	switch c {
	case Added:
		return "+"
	case Removed:
		return "-"
	case Modified:
		return "~"
	}
	return " "
}

// AnnotatedNode represents a node in the annotated tree. Container nodes
// that exist on both sides carry Children; added, removed and leaf nodes
// carry their Value (and OldValue for modified leaves).
type AnnotatedNode struct {
	Key      any // string, int, or nil for the root
	Sequence bool
	Value    any
	OldValue any
	Change   ChangeType
	Children []*AnnotatedNode

	changed bool
}

// HasChanges reports whether the node or any descendant changed.
func (n *AnnotatedNode) HasChanges() bool {
	return n.changed
}

// changeIndex is keyed by the dotted path, which tells mapping key "0" apart
// from sequence index 0.
type changeIndex map[string]map[treediff.ChangeType]treediff.Change

func indexChanges(changes treediff.Changes) changeIndex {
	idx := make(changeIndex, len(changes))
	for _, c := range changes {
		key := c.Path.String()
		if idx[key] == nil {
			idx[key] = make(map[treediff.ChangeType]treediff.Change, 1)
		}
		idx[key][c.Type] = c
	}
	return idx
}

// Annotate diffs [left] and [right] and merges both trees into one
// annotated tree: keys of [right] in their order, followed by keys that only
// exist in [left].
func Annotate(left, right any) *AnnotatedNode {
	return AnnotateChanges(left, right, treediff.Diff(left, right))
}

// AnnotateChanges is [Annotate] for an already computed change list.
func AnnotateChanges(left, right any, changes treediff.Changes) *AnnotatedNode {
	root := &AnnotatedNode{}
	annotateChildren(root, left, right, nil, indexChanges(changes))
	return root
}

// annotateChildren recursively fills the children of [node], which exists
// as a container of the same kind on both sides.
func annotateChildren(node *AnnotatedNode, left, right any, path treediff.Path, idx changeIndex) {
	node.Sequence = treediff.IsSequence(right)

	for _, key := range mergedKeys(left, right) {
		childPath := path.Append(key)
		recorded := idx[childPath.String()]
		leftValue, _ := treediff.Resolve(left, treediff.Path{key})
		rightValue, inRight := treediff.Resolve(right, treediff.Path{key})

		if c, ok := recorded[treediff.ChangeDelete]; ok {
			node.append(&AnnotatedNode{Key: key, Value: c.OldValue, Change: Removed})
		}
		if c, ok := recorded[treediff.ChangeAdd]; ok {
			node.append(&AnnotatedNode{Key: key, Value: c.NewValue, Change: Added})
		}
		if c, ok := recorded[treediff.ChangeUpdate]; ok {
			node.append(&AnnotatedNode{Key: key, Value: c.NewValue, OldValue: c.OldValue, Change: Modified})
		}
		if len(recorded) > 0 {
			continue
		}
		if !inRight {
			// a deletion that was filtered out of [changes]
			continue
		}

		if treediff.IsContainer(rightValue) {
			child := &AnnotatedNode{Key: key, Value: rightValue}
			annotateChildren(child, leftValue, rightValue, childPath, idx)
			node.append(child)
			continue
		}
		node.append(&AnnotatedNode{Key: key, Value: rightValue})
	}
}

func (n *AnnotatedNode) append(child *AnnotatedNode) {
	if child.Change != Unchanged {
		child.changed = true
	}
	if child.changed {
		n.changed = true
	}
	n.Children = append(n.Children, child)
}

// mergedKeys returns the child keys of [right] followed by the keys only
// [left] has.
func mergedKeys(left, right any) []any {
	keys := treediff.ChildKeys(right)
	seen := make(map[any]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	for _, k := range treediff.ChildKeys(left) {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}
