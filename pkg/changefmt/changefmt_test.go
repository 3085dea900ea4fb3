package changefmt_test

import (
	"bytes"
	"encoding/json"
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/treediff/pkg/changefmt"
	"github.com/loog-project/treediff/pkg/treediff"
)

var sample = treediff.Changes{
	{Type: treediff.ChangeDelete, Path: treediff.Path{"first", "second"}, OldValue: 123},
	{Type: treediff.ChangeAdd, Path: treediff.Path{"first", "third"}, NewValue: treediff.MapOf("z", 1, "a", "x")},
	{Type: treediff.ChangeUpdate, Path: treediff.Path{"list", 0}, OldValue: true, NewValue: nil},
}

func TestParseFormat(t *testing.T) {
	f, err := changefmt.ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, changefmt.FormatJSON, f)

	_, err = changefmt.ParseFormat("xml")
	assert.ErrorIs(t, err, changefmt.ErrUnknownFormat)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, changefmt.Write(&buf, sample, changefmt.FormatText))
	assert.Equal(t, "- first.second: 123\n+ first.third: {2 keys}\n~ list[0]: true -> null\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, changefmt.Write(&buf, sample[:2], changefmt.FormatJSON))
	assert.JSONEq(t, `[
		{"type": "delete", "path": ["first", "second"], "oldValue": 123},
		{"type": "add", "path": ["first", "third"], "newValue": {"z": 1, "a": "x"}}
	]`, buf.String())

	// ordered maps keep their key order in the output
	assert.Contains(t, buf.String(), `"z": 1`)
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"z"`)), bytes.Index(buf.Bytes(), []byte(`"a"`)))

	buf.Reset()
	require.NoError(t, changefmt.Write(&buf, nil, changefmt.FormatJSON))
	assert.JSONEq(t, `[]`, buf.String())

	var decoded treediff.Changes
	buf.Reset()
	require.NoError(t, changefmt.Write(&buf, sample[:1], changefmt.FormatJSON))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, treediff.Path{"first", "second"}, decoded[0].Path)
}

func TestWriteJSONKeepsNulls(t *testing.T) {
	var buf bytes.Buffer
	changes := treediff.Diff(map[string]any{"a": nil, "b": 1}, map[string]any{"a": 1})
	require.NoError(t, changefmt.Write(&buf, changes, changefmt.FormatJSON))
	assert.JSONEq(t, `[
		{"type": "delete", "path": ["b"], "oldValue": 1},
		{"type": "update", "path": ["a"], "oldValue": null, "newValue": 1}
	]`, buf.String())

	buf.Reset()
	changes = treediff.Diff(map[string]any{"gone": nil}, map[string]any{"new": nil})
	require.NoError(t, changefmt.Write(&buf, changes, changefmt.FormatJSON))
	assert.JSONEq(t, `[
		{"type": "delete", "path": ["gone"], "oldValue": null},
		{"type": "add", "path": ["new"], "newValue": null}
	]`, buf.String())

	var decoded treediff.Changes
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, treediff.ChangeDelete, decoded[0].Type)
	assert.Nil(t, decoded[0].OldValue)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, changefmt.Write(&buf, sample, changefmt.FormatYAML))
	want := `- type: delete
  path: [first, second]
  oldValue: 123
- type: add
  path: [first, third]
  newValue:
    z: 1
    a: x
- type: update
  path: [list, 0]
  oldValue: true
  newValue: null
`
	assert.Equal(t, want, buf.String())
}

func TestJSONPatchAppliesToLeft(t *testing.T) {
	cases := []struct {
		name        string
		left, right string
	}{
		{"objects", `{"a": 1, "b": {"c": 2}}`, `{"a": 2, "d": [1]}`},
		{"shrinking array", `{"list": [1, 2, 3, 4]}`, `{"list": [9]}`},
		{"growing array", `{"list": [1]}`, `{"list": [1, 2, {"x": true}]}`},
		{"kind switch", `{"a": 1, "b": [1]}`, `{"a": {"x": 1}, "b": {"y": 2}}`},
		{"null values", `{"a": null}`, `{"a": 1, "b": null}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var left, right any
			require.NoError(t, json.Unmarshal([]byte(tc.left), &left))
			require.NoError(t, json.Unmarshal([]byte(tc.right), &right))

			raw, err := json.Marshal(changefmt.ToJSONPatch(treediff.Diff(left, right)))
			require.NoError(t, err)

			patch, err := jsonpatch.DecodePatch(raw)
			require.NoError(t, err)
			patched, err := patch.Apply([]byte(tc.left))
			require.NoError(t, err)
			assert.JSONEq(t, tc.right, string(patched))
		})
	}
}
