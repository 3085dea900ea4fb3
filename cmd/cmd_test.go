package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with fresh flags, as cobra keeps parsed
// values between runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const (
	deployV1 = `name: web
replicas: 1
ports: [80]
`
	deployV2 = `name: web
replicas: 3
ports: [80, 443]
`
)

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	left := writeFile(t, dir, "left.yaml", deployV1)
	right := writeFile(t, dir, "right.json", `{"name": "web", "replicas": 3, "ports": [80, 443]}`)

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "diff", left, right)
		require.NoError(t, err)
		assert.Equal(t, "+ ports[1]: 443\n~ replicas: 1 -> 3\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "diff", "-o", "json", left, right)
		require.NoError(t, err)
		var changes []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &changes))
		require.Len(t, changes, 2)
		assert.Equal(t, "add", changes[0]["type"])
	})

	t.Run("filter", func(t *testing.T) {
		out, err := execute(t, "diff", "--filter", "Updated()", left, right)
		require.NoError(t, err)
		assert.Equal(t, "~ replicas: 1 -> 3\n", out)
	})

	t.Run("preview", func(t *testing.T) {
		out, err := execute(t, "diff", "-o", "preview", "--only-changes", left, right)
		require.NoError(t, err)
		assert.Contains(t, out, "replicas: 1 -> 3")
		assert.NotContains(t, out, "name")
	})

	t.Run("exit code", func(t *testing.T) {
		_, err := execute(t, "diff", "--exit-code", left, right)
		var exitErr exitCodeError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.code)

		_, err = execute(t, "diff", "--exit-code", left, left)
		assert.NoError(t, err)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := execute(t, "diff", "-o", "xml", left, right)
		assert.Error(t, err)
		_, err = execute(t, "diff", "--filter", "Type +", left, right)
		assert.Error(t, err)
		_, err = execute(t, "diff", "-", "-")
		assert.Error(t, err)
		_, err = execute(t, "diff", left, filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestTrackAndHistoryCommands(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "history.db")
	v1 := writeFile(t, dir, "v1.yaml", deployV1)
	v2 := writeFile(t, dir, "v2.yaml", deployV2)

	out, err := execute(t, "track", "--db", db, "deploy", v1)
	require.NoError(t, err)
	assert.Equal(t, "deploy: recorded initial revision 00000000\n", out)

	out, err = execute(t, "track", "--db", db, "deploy", v2)
	require.NoError(t, err)
	assert.Equal(t, "deploy: recorded revision 00000001 (+1 -0 ~1)\n"+
		"+ ports[1]: 443\n~ replicas: 1 -> 3\n", out)

	out, err = execute(t, "track", "--db", db, "deploy", v2)
	require.NoError(t, err)
	assert.Equal(t, "deploy: no changes since revision 00000001\n", out)

	out, err = execute(t, "history", "--db", db, "deploy")
	require.NoError(t, err)
	assert.Contains(t, out, "00000001")
	assert.Contains(t, out, "initial")
	assert.Contains(t, out, "+1 -0 ~1")
	assert.Contains(t, out, "v2.yaml")

	out, err = execute(t, "history", "--db", db, "deploy", "--show", "1")
	require.NoError(t, err)
	assert.Equal(t, "+ ports[1]: 443\n~ replicas: 1 -> 3\n", out)

	out, err = execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "deploy")

	_, err = execute(t, "history", "--db", db, "unknown")
	assert.Error(t, err)
	_, err = execute(t, "history", "--db", db, "deploy", "--show", "zz")
	assert.Error(t, err)
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "treediff")
}
