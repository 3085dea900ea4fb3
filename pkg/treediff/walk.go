package treediff

import "errors"

// ErrTooDeep is returned when a walk exceeds the configured maximum depth,
// which is how cyclic or pathologically deep inputs surface.
var ErrTooDeep = errors.New("tree is cyclic or too deep")

// Action is returned by a [VisitFunc] to steer the walk.
type Action uint8

const (
	// Continue descends into the children of the visited value.
	Continue Action = iota
	// SkipChildren prunes the subtree below the visited value. Siblings are
	// still visited.
	SkipChildren
)

// VisitFunc is called once per reachable value. Every call receives its own
// path slice, so it may be retained (e.g. in a [Change]).
type VisitFunc func(value any, path Path) Action

// Walk visits [tree] depth-first, parent before children, starting with the
// root at the empty path. Mapping children are visited in mapping order,
// sequence children in index order. Leaves are terminal.
func Walk(tree any, visit VisitFunc) {
	_ = walkRecursive(tree, nil, 0, visit)
}

// WalkDepth is [Walk] with a depth guard: it stops and returns [ErrTooDeep]
// before visiting a value whose path is longer than [maxDepth]. A maxDepth
// of zero or less disables the guard.
func WalkDepth(tree any, maxDepth int, visit VisitFunc) error {
	return walkRecursive(tree, nil, maxDepth, visit)
}

// walkRecursive recursively visits the value and its children.
func walkRecursive(value any, path Path, maxDepth int, visit VisitFunc) error {
	if maxDepth > 0 && len(path) > maxDepth {
		return ErrTooDeep
	}
	if visit(value, path) == SkipChildren {
		return nil
	}
	for _, key := range childKeys(value) {
		next, ok := child(value, key)
		if !ok {
			continue
		}
		if err := walkRecursive(next, path.Append(key), maxDepth, visit); err != nil {
			return err
		}
	}
	return nil
}
