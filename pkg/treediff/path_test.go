package treediff_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/loog-project/treediff/pkg/treediff"
)

func TestPathString(t *testing.T) {
	cases := []struct {
		path        treediff.Path
		str, pointer string
	}{
		{nil, "", ""},
		{treediff.Path{"first", "second"}, "first.second", "/first/second"},
		{treediff.Path{0}, "[0]", "/0"},
		{treediff.Path{"spec", "containers", 0, "name"}, "spec.containers[0].name", "/spec/containers/0/name"},
		{treediff.Path{"a.b", "c"}, `["a.b"].c`, "/a.b/c"},
		{treediff.Path{"x/y", "~z"}, "x/y.~z", "/x~1y/~0z"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.str, tc.path.String())
		assert.Equal(t, tc.pointer, tc.path.Pointer())
	}
}

func TestPathAppendDoesNotAlias(t *testing.T) {
	base := make(treediff.Path, 1, 8)
	base[0] = "root"

	a := base.Append("a")
	b := base.Append("b")

	assert.Equal(t, treediff.Path{"root", "a"}, a)
	assert.Equal(t, treediff.Path{"root", "b"}, b)
	assert.Equal(t, treediff.Path{"root"}, base)
}

func TestPathHasPrefix(t *testing.T) {
	p := treediff.Path{"a", 0, "b"}
	assert.True(t, p.HasPrefix(nil))
	assert.True(t, p.HasPrefix(treediff.Path{"a", 0}))
	assert.True(t, p.HasPrefix(p))
	assert.False(t, p.HasPrefix(treediff.Path{"a", "0"}))
	assert.False(t, p.HasPrefix(treediff.Path{"a", 0, "b", "c"}))
}

func TestPathDecodeNormalizesIndices(t *testing.T) {
	var fromJSON treediff.Path
	require.NoError(t, json.Unmarshal([]byte(`["a", 1, "b"]`), &fromJSON))
	assert.Equal(t, treediff.Path{"a", 1, "b"}, fromJSON)

	raw, err := msgpack.Marshal(treediff.Path{"a", 1, "b"})
	require.NoError(t, err)
	var fromMsgpack treediff.Path
	require.NoError(t, msgpack.Unmarshal(raw, &fromMsgpack))
	assert.Equal(t, treediff.Path{"a", 1, "b"}, fromMsgpack)

	var bad treediff.Path
	assert.Error(t, json.Unmarshal([]byte(`["a", 1.5]`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`[true]`), &bad))
}

func TestChangeString(t *testing.T) {
	assert.Equal(t, `+ a.b: 1`, treediff.Change{Type: treediff.ChangeAdd, Path: treediff.Path{"a", "b"}, NewValue: 1}.String())
	assert.Equal(t, `- a[0]: "x"`, treediff.Change{Type: treediff.ChangeDelete, Path: treediff.Path{"a", 0}, OldValue: "x"}.String())
	assert.Equal(t, `~ a: null -> true`, treediff.Change{Type: treediff.ChangeUpdate, Path: treediff.Path{"a"}, NewValue: true}.String())
	assert.Equal(t, `+ a: {2 keys}`, treediff.Change{Type: treediff.ChangeAdd, Path: treediff.Path{"a"}, NewValue: obj{"x": 1, "y": 2}}.String())
	assert.Equal(t, `- a: [3 items]`, treediff.Change{Type: treediff.ChangeDelete, Path: treediff.Path{"a"}, OldValue: arr{1, 2, 3}}.String())
}

func TestChangesCount(t *testing.T) {
	cs := treediff.Diff(obj{"a": 1, "b": 2}, obj{"a": 3, "c": 4})
	added, deleted, updated := cs.Count()
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, updated)
}
