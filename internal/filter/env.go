package filter

import (
	"strings"

	"github.com/loog-project/treediff/pkg/treediff"
)

// ChangeEnv is the environment a filter expression is evaluated against,
// once per change record.
type ChangeEnv struct {
	Type     string
	Path     string
	Pointer  string
	Depth    int
	OldValue any
	NewValue any

	change treediff.Change
}

func newChangeEnv(c treediff.Change) ChangeEnv {
	return ChangeEnv{
		Type:     string(c.Type),
		Path:     c.Path.String(),
		Pointer:  c.Path.Pointer(),
		Depth:    c.Path.Len(),
		OldValue: c.OldValue,
		NewValue: c.NewValue,
		change:   c,
	}
}

func (e ChangeEnv) All() bool {
	return true
}

func (e ChangeEnv) None() bool {
	return false
}

func (e ChangeEnv) Added() bool {
	return e.change.Type == treediff.ChangeAdd
}

func (e ChangeEnv) Deleted() bool {
	return e.change.Type == treediff.ChangeDelete
}

func (e ChangeEnv) Updated() bool {
	return e.change.Type == treediff.ChangeUpdate
}

// Under reports whether the change is at or below any of the given paths,
// written in dotted notation (`spec.containers[0]`) or as JSON pointers.
func (e ChangeEnv) Under(prefixes ...string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, prefix := range prefixes {
		if prefix == "" || prefix == "/" {
			return true
		}
		target := e.Path
		if strings.HasPrefix(prefix, "/") {
			target = e.Pointer
		}
		if target == prefix ||
			strings.HasPrefix(target, prefix+".") ||
			strings.HasPrefix(target, prefix+"[") ||
			strings.HasPrefix(target, prefix+"/") {
			return true
		}
	}
	return false
}

// Key reports whether the last path element is one of the given mapping keys.
func (e ChangeEnv) Key(names ...string) bool {
	last, ok := e.change.Path.Last().(string)
	if !ok {
		return false
	}
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		if name == last {
			return true
		}
	}
	return false
}

// Index reports whether the last path element is a sequence index.
func (e ChangeEnv) Index() bool {
	_, ok := e.change.Path.Last().(int)
	return ok
}
