// Package changefmt writes change records in the formats the CLI offers:
// plain text, JSON, YAML and RFC 6902 JSON Patch.
package changefmt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wI2L/jsondiff"

	"github.com/loog-project/treediff/pkg/treediff"
)

type Format string

const (
	FormatText      Format = "text"
	FormatJSON      Format = "json"
	FormatYAML      Format = "yaml"
	FormatJSONPatch Format = "jsonpatch"
)

// Formats lists every supported format, e.g. for flag help and completion.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatJSONPatch}

var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Write encodes [changes] to [w] in [format].
func Write(w io.Writer, changes treediff.Changes, format Format) error {
	switch format {
	case FormatText:
		return writeText(w, changes)
	case FormatJSON:
		if changes == nil {
			changes = treediff.Changes{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(changes)
	case FormatYAML:
		return writeYAML(w, changes)
	case FormatJSONPatch:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ToJSONPatch(changes))
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func writeText(w io.Writer, changes treediff.Changes) error {
	for _, c := range changes {
		if _, err := fmt.Fprintln(w, c.String()); err != nil {
			return err
		}
	}
	return nil
}

// ToJSONPatch expresses [changes] as RFC 6902 operations: delete becomes
// remove, add stays add, update becomes replace. Removals are emitted in
// reverse order so that removing several sequence items never shifts an
// index a later removal still refers to.
func ToJSONPatch(changes treediff.Changes) jsondiff.Patch {
	patch := make(jsondiff.Patch, 0, len(changes))
	deletes := changes.Filter(treediff.ChangeDelete)
	for i := len(deletes) - 1; i >= 0; i-- {
		patch = append(patch, jsondiff.Operation{
			Type:     jsondiff.OperationRemove,
			Path:     deletes[i].Path.Pointer(),
			OldValue: deletes[i].OldValue,
		})
	}
	for _, c := range changes {
		switch c.Type {
		case treediff.ChangeAdd:
			patch = append(patch, jsondiff.Operation{
				Type:  jsondiff.OperationAdd,
				Path:  c.Path.Pointer(),
				Value: c.NewValue,
			})
		case treediff.ChangeUpdate:
			patch = append(patch, jsondiff.Operation{
				Type:     jsondiff.OperationReplace,
				Path:     c.Path.Pointer(),
				Value:    c.NewValue,
				OldValue: c.OldValue,
			})
		}
	}
	return patch
}
