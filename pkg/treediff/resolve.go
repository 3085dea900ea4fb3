package treediff

// Resolve follows [path] from [tree] one step at a time and returns the
// addressed value. The second result is false as soon as a step cannot be
// taken: the current value is a leaf, the key kind does not fit the
// container, or the key is missing. Absence is not an error.
//
// A stored nil is a present leaf, so Resolve distinguishes `{"a": null}`
// from `{}` at path ["a"].
func Resolve(tree any, path Path) (any, bool) {
	current := tree
	for _, key := range path {
		next, ok := child(current, key)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}
