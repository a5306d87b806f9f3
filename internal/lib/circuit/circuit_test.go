package circuit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBlueConfig = `# circuit used by the tests
Run Default
{
    CircuitPath %s
    TargetFile user.target
    nrnPath /does/not/matter
}

Report soma
{
    Target Mosaic
    Type compartment
}
`

const startTargets = `Target Cell Mosaic
{
  Layer1 Layer2
}

Target Cell Layer1
{
  a3 a1 a2
}

Target Cell Layer2 {
  a2 a10 # trailing comment
}
`

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func newCircuitDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "circuit", StartTargetFile), startTargets)
	writeFile(t, filepath.Join(dir, "user.target"), "Target Cell Picked { a10 Layer1 }\n")
	writeFile(t, filepath.Join(dir, "CircuitConfig"),
		strings.Replace(sampleBlueConfig, "%s", filepath.Join(dir, "circuit"), 1))
	return dir
}

func TestParseBlueConfig(t *testing.T) {
	cfg, err := ParseBlueConfig(strings.NewReader(sampleBlueConfig))
	require.NoError(t, err)
	require.Len(t, cfg.Sections, 2)

	run := cfg.Run()
	require.NotNil(t, run)
	assert.Equal(t, "Default", run.Name)
	assert.Equal(t, "%s", run.Get("CircuitPath"))
	assert.Equal(t, "user.target", run.Get("TargetFile"))

	report := cfg.Section("Report")
	require.NotNil(t, report)
	assert.Equal(t, "soma", report.Name)
	assert.Equal(t, "compartment", report.Get("Type"))

	assert.Nil(t, cfg.Section("Stimulus"))
	assert.Equal(t, "", cfg.Section("Stimulus").Get("anything"))
}

func TestParseBlueConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "nested open", input: "Run A\n{\n{\n}\n", wantErr: "line 3"},
		{name: "stray close", input: "Run A\n}\n", wantErr: "line 2"},
		{name: "open without header", input: "{\n}\n", wantErr: "line 1"},
		{name: "not closed", input: "Run A\n{\nKey value\n", wantErr: "not closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBlueConfig(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseTargets(t *testing.T) {
	ts, err := ParseTargets(strings.NewReader(startTargets))
	require.NoError(t, err)

	assert.Equal(t, []string{"Layer1", "Layer2", "Mosaic"}, ts.Names())
	assert.Equal(t, []uint32{3, 1, 2}, ts.Targets["Layer1"].GIDs)
	assert.Equal(t, []string{"Layer1", "Layer2"}, ts.Targets["Mosaic"].Refs)
	assert.Equal(t, "Cell", ts.Targets["Layer2"].Type)
}

func TestParseTargetsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing keyword", input: "Cell Layer1 { a1 }"},
		{name: "missing brace", input: "Target Cell Layer1 a1 }"},
		{name: "not closed", input: "Target Cell Layer1 { a1"},
		{name: "nested", input: "Target Cell Layer1 { { a1 } }"},
		{name: "truncated header", input: "Target Cell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTargets(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestResolve(t *testing.T) {
	ts, err := ParseTargets(strings.NewReader(startTargets))
	require.NoError(t, err)

	gids, err := ts.Resolve("Mosaic")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 10}, gids)

	gids, err = ts.Resolve("Layer1")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3}, gids)

	_, err = ts.Resolve("Layer6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown target "Layer6"`)
}

func TestResolveCycle(t *testing.T) {
	ts, err := ParseTargets(strings.NewReader("Target Cell A { a1 B }\nTarget Cell B { A }\n"))
	require.NoError(t, err)

	_, err = ts.Resolve("A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references itself")
}

func TestResolveSharedReferenceIsNotACycle(t *testing.T) {
	ts, err := ParseTargets(strings.NewReader(
		"Target Cell Base { a5 }\nTarget Cell L { Base }\nTarget Cell R { Base }\nTarget Cell All { L R }\n"))
	require.NoError(t, err)

	gids, err := ts.Resolve("All")
	require.NoError(t, err)
	assert.Equal(t, []uint32{5}, gids)
}

func TestOpen(t *testing.T) {
	dir := newCircuitDir(t)

	fromDir, err := Open(dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "CircuitConfig"), fromDir.ConfigPath)
	assert.False(t, fromDir.ModTime.IsZero())

	fromFile, err := Open(filepath.Join(dir, "CircuitConfig"), "")
	require.NoError(t, err)
	assert.Equal(t, fromDir.ConfigPath, fromFile.ConfigPath)

	assert.Equal(t, []string{
		filepath.Join(dir, "circuit", StartTargetFile),
		filepath.Join(dir, "user.target"),
	}, fromDir.TargetFiles())

	targets, err := fromDir.Targets()
	require.NoError(t, err)
	assert.Equal(t, []string{"Layer1", "Layer2", "Mosaic", "Picked"}, targets.Names())

	gids, err := targets.Resolve("Picked")
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 10}, gids)
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, filepath.Join(dir, "NoRun"), "Report soma\n{\n}\n")
	_, err = Open(filepath.Join(dir, "NoRun"), "")
	assert.ErrorIs(t, err, ErrNoRunSection)

	writeFile(t, filepath.Join(dir, "Broken"), "Run Default\n{\n")
	_, err = Open(filepath.Join(dir, "Broken"), "")
	assert.Error(t, err)

	c, err := Open(newCircuitDir(t), "")
	require.NoError(t, err)
	require.NoError(t, os.Remove(c.TargetFiles()[0]))
	_, err = c.Targets()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
