package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrules/gitrules/internal/config"
)

const testConfig = `
server:
  port: 8000
catalog:
  dir: ./actions
llm:
  provider: openai
log:
  level: error
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	c, err := config.LoadFromBytes([]byte(testConfig))
	require.NoError(t, err)

	root := SetupRootCmd(&c)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err = root.Execute()
	return stdout.String(), stderr.String(), err
}

func initCatalog(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "actions")
	_, _, err := run(t, "--dir", dir, "catalog", "init")
	require.NoError(t, err)
	return dir
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestCatalogInitWritesStarterFiles(t *testing.T) {
	dir := initCatalog(t)
	for _, name := range []string{"agents.yaml", "rules.yaml", "mcps.yaml", "packs.yaml"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestCatalogShow(t *testing.T) {
	dir := initCatalog(t)

	out, _, err := run(t, "--dir", dir, "--json", "catalog", "show", "go-errors")
	require.NoError(t, err)
	assert.Contains(t, out, `"go-errors"`)

	_, _, err = run(t, "--dir", dir, "catalog", "show", "nope")
	assert.Error(t, err)
}

func TestCatalogListRejectsUnknownType(t *testing.T) {
	dir := initCatalog(t)
	_, _, err := run(t, "--dir", dir, "catalog", "list", "--type", "widget")
	assert.Error(t, err)
}

func TestGenerateWritesFiles(t *testing.T) {
	dir := initCatalog(t)
	outDir := t.TempDir()

	out, _, err := run(t, "--dir", dir, "generate", "go-errors", "--format", "claude,cursor", "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Created CLAUDE.md")
	assert.Contains(t, out, "Created .cursorrules")

	data, err := os.ReadFile(filepath.Join(outDir, "CLAUDE.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Wrap errors with context")
}

func TestGeneratePrintPatch(t *testing.T) {
	dir := initCatalog(t)

	out, _, err := run(t, "--dir", dir, "generate", "go-tests", "--print", "patch",
		"--source", "repo", "--repo-url", "https://github.com/acme/app")
	require.NoError(t, err)
	assert.Contains(t, out, "# Gitrules configuration patch generated from repository: https://github.com/acme/app")
	assert.Contains(t, out, "+++ CLAUDE.md")
}

func TestGeneratePrintScript(t *testing.T) {
	dir := initCatalog(t)

	out, _, err := run(t, "--dir", dir, "generate", "go-tests", "--print", "script")
	require.NoError(t, err)
	assert.Contains(t, out, "#!/")
	assert.Contains(t, out, "CLAUDE.md")
}

func TestGenerateErrors(t *testing.T) {
	dir := initCatalog(t)

	_, _, err := run(t, "--dir", dir, "generate", "go-tests", "--format", "vim")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = run(t, "--dir", dir, "generate", "ghost")
	assert.ErrorContains(t, err, "none of the ids")

	_, _, err = run(t, "--dir", dir, "generate")
	assert.Error(t, err)
}
