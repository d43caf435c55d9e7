package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/chazu/facet/pkg/document"
)

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "facet", cmd.Use)

	for _, name := range []string{"render", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	cfgFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfgFlag)
	assert.Equal(t, "c", cfgFlag.Shorthand)
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "facet "+version+"\n", out.String())
}

// writeTestConfig writes a config with a coarse mesh and silent logging.
func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "facet.toml")
	cfg := `
document_name = "cli-test"
message_box_on_error = false

[mesh]
cells = 32

[log]
level = "disabled"
`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "out.yaml")
	pngPath := filepath.Join(dir, "out.png")

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{
		"render", "examples/box.facet",
		"--config", writeTestConfig(t, dir),
		"--snapshot", snapPath,
		"--preview", pngPath,
		"--children",
	})

	require.NoError(t, cmd.Execute(), errOut.String())
	assert.Contains(t, out.String(), "tray\t")
	assert.Contains(t, out.String(), "cover\t")

	data, err := os.ReadFile(snapPath)
	require.NoError(t, err)
	var snap document.Snapshot
	require.NoError(t, yaml.Unmarshal(data, &snap))
	assert.Equal(t, "cli-test", snap.Name)
	assert.Equal(t, "parametric", snap.Design)
	require.Len(t, snap.Root.Children, 2)

	tray := snap.Root.Children[0]
	assert.Equal(t, "tray", tray.Name)
	require.Len(t, tray.Children, 2)
	for _, c := range tray.Children {
		assert.False(t, c.Visible, "child %s should be hidden", c.Name)
	}

	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
}

func TestRenderCommandDirect(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "one.facet")
	require.NoError(t, os.WriteFile(script, []byte(`(show (sphere 2 :name "ball"))`), 0o644))
	snapPath := filepath.Join(dir, "out.yaml")

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"render", script, "-c", writeTestConfig(t, dir), "--direct", "--document", "other", "--snapshot", snapPath})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(snapPath)
	require.NoError(t, err)
	var snap document.Snapshot
	require.NoError(t, yaml.Unmarshal(data, &snap))
	assert.Equal(t, "other", snap.Name)
	assert.Equal(t, "direct", snap.Design)
	require.Len(t, snap.Root.Children, 1)
	assert.Equal(t, 0, snap.Root.Children[0].Features)
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "bad.facet")
	require.NoError(t, os.WriteFile(script, []byte("(show (box 1 1))"), 0o644))

	t.Run("script error", func(t *testing.T) {
		cmd := newRootCommand()
		var errOut bytes.Buffer
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&errOut)
		cmd.SetArgs([]string{"render", script, "-c", writeTestConfig(t, dir)})

		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "evaluation failed")
		assert.Contains(t, errOut.String(), "box")
	})

	t.Run("missing script", func(t *testing.T) {
		cmd := newRootCommand()
		cmd.SetArgs([]string{"render", filepath.Join(dir, "nope.facet"), "-c", writeTestConfig(t, dir)})
		require.Error(t, cmd.Execute())
	})

	t.Run("missing config", func(t *testing.T) {
		cmd := newRootCommand()
		cmd.SetArgs([]string{"render", script, "-c", filepath.Join(dir, "nope.toml")})
		require.Error(t, cmd.Execute())
	})
}
