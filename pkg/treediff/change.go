package treediff

import (
	"encoding/json"
	"fmt"
)

// ChangeType tags a [Change] record.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeDelete ChangeType = "delete"
	ChangeUpdate ChangeType = "update"
)

// Change describes one difference between two trees.
//
//   - ChangeAdd: NewValue is set, OldValue is nil
//   - ChangeDelete: OldValue is set, NewValue is nil
//   - ChangeUpdate: both are set and both are leaves
type Change struct {
	Type     ChangeType `json:"type" yaml:"type" msgpack:"t"`
	Path     Path       `json:"path" yaml:"path" msgpack:"p"`
	OldValue any        `json:"oldValue,omitempty" yaml:"oldValue,omitempty" msgpack:"o,omitempty"`
	NewValue any        `json:"newValue,omitempty" yaml:"newValue,omitempty" msgpack:"n,omitempty"`
}

// MarshalJSON writes oldValue for deletes and updates and newValue for adds
// and updates, including explicit nulls.
func (c Change) MarshalJSON() ([]byte, error) {
	out := struct {
		Type     ChangeType `json:"type"`
		Path     Path       `json:"path"`
		OldValue *any       `json:"oldValue,omitempty"`
		NewValue *any       `json:"newValue,omitempty"`
	}{Type: c.Type, Path: c.Path}
	if c.Type != ChangeAdd {
		out.OldValue = &c.OldValue
	}
	if c.Type != ChangeDelete {
		out.NewValue = &c.NewValue
	}
	return json.Marshal(out)
}

func (c Change) String() string {
	switch c.Type {
	case ChangeAdd:
		return fmt.Sprintf("+ %s: %v", c.Path, formatValue(c.NewValue))
	case ChangeDelete:
		return fmt.Sprintf("- %s: %v", c.Path, formatValue(c.OldValue))
	case ChangeUpdate:
		return fmt.Sprintf("~ %s: %v -> %v", c.Path, formatValue(c.OldValue), formatValue(c.NewValue))
	}
	return fmt.Sprintf("? %s", c.Path)
}

// Changes is the ordered result of a diff.
type Changes []Change

// Filter returns the records of the given type, keeping their order.
func (cs Changes) Filter(t ChangeType) Changes {
	var out Changes
	for _, c := range cs {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// Paths returns the path of every record.
func (cs Changes) Paths() []Path {
	out := make([]Path, len(cs))
	for i, c := range cs {
		out[i] = c.Path
	}
	return out
}

// Count returns the number of additions, deletions and updates.
func (cs Changes) Count() (added, deleted, updated int) {
	for _, c := range cs {
		switch c.Type {
		case ChangeAdd:
			added++
		case ChangeDelete:
			deleted++
		case ChangeUpdate:
			updated++
		}
	}
	return
}

func formatValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", tv)
	case *Map:
		return fmt.Sprintf("{%d keys}", tv.Len())
	}
	switch kindOf(v) {
	case kindMapping:
		return fmt.Sprintf("{%d keys}", len(childKeys(v)))
	case kindSequence:
		return fmt.Sprintf("[%d items]", len(childKeys(v)))
	}
	return fmt.Sprintf("%v", v)
}
