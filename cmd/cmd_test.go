package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every command flag back to its default, since the
// commands keep flag values in package variables between runs.
func resetFlags() {
	validateFile, validateType, validateMappings, validateSheet, validateErrorLog = "", "RECIPE", nil, "", false
	importFile, importType, importMappings, importSheet, importDryRun, importAllowInvalid = "", "RECIPE", nil, "", false, false
	recipesSearch, recipesTargetCMV, recipesSaveFile = "", 0, ""
	dashboardMonth, dashboardFrom, dashboardTo, dashboardLast12, dashboardCompare = "", "", "", false, false
	serveAddr = ""
	verbose = false
}

// run executes the CLI against the mock backend and returns its output.
// Reports are written into outDir.
func run(t *testing.T, outDir string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	body := "use_mocks: true\nlog_level: error\noutput_dir: " + outDir + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "BRO.AI")
	assert.Contains(t, out, "Version:    "+Version)
}

func TestValidate_SingleValidFile(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "fichas.csv",
		"Prato,Insumo,Qtd,Unidade\nPizza,Queijo,\"0,2\",kg\n")

	out, err := run(t, t.TempDir(), "validate", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "=== fichas.csv (RECIPE template, ")
	assert.Contains(t, out, "No validation errors.")
	assert.Contains(t, out, "Valid:           1")
}

func TestValidate_DirectoryWithInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "ok.csv", "Prato,Insumo,Qtd,Unidade\nPizza,Queijo,1,kg\n")
	writeCSV(t, dir, "bad.csv", "Prato,Insumo,Qtd,Unidade\nPizza,,abc,xx\n")
	writeCSV(t, dir, "notes.txt", "ignored")
	outDir := t.TempDir()

	out, err := run(t, outDir, "validate", dir, "--error-log")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 file(s) failed validation")
	assert.Contains(t, out, "✓ ok.csv")
	assert.Contains(t, out, "✗ bad.csv")
	assert.NotContains(t, out, "notes.txt")

	logs, err := filepath.Glob(filepath.Join(outDir, "error_log_bad_*.txt"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestValidate_IncompleteMapping(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "fichas.csv", "Prato,Coluna X\nPizza,1\n")

	out, err := run(t, t.TempDir(), "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 file(s) failed validation")
	assert.Contains(t, out, "incomplete mapping")
	assert.Contains(t, out, "ignore")
}

func TestValidate_MissingPath(t *testing.T) {
	_, err := run(t, t.TempDir(), "validate", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidate_MappingOverride(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "fichas.csv",
		"Prato,Componente X,Qtd,Unidade\nPizza,Queijo,1,kg\n")

	_, err := run(t, t.TempDir(), "validate", path, "--map", "Componente X=ingrediente")
	assert.NoError(t, err)
}

func TestImport_WithMocks(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "fichas.csv",
		"Prato,Insumo,Qtd,Unidade\nPizza,Queijo,1,kg\nPizza,Molho,150,g\n")
	outDir := t.TempDir()

	out, err := run(t, outDir, "import", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 preview row(s)")
	assert.Contains(t, out, "Queijo")
	assert.Contains(t, out, "confirmed.")

	summaries, err := filepath.Glob(filepath.Join(outDir, "import_summary_fichas_*.txt"))
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	raw, err := os.ReadFile(summaries[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Status:         confirmed")
}

func TestImport_InvalidRowsStopBeforeConfirm(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "fichas.csv", "Prato,Insumo,Qtd,Unidade\nPizza,,abc,xx\n")

	out, err := run(t, t.TempDir(), "import", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--allow-invalid")
	assert.NotContains(t, out, "confirmed.")

	out, err = run(t, t.TempDir(), "import", "--file", path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run")
}

func TestRecipes(t *testing.T) {
	out, err := run(t, t.TempDir(), "recipes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Pizza Margherita")
	assert.Contains(t, out, "3 recipe(s)")

	out, err = run(t, t.TempDir(), "recipes", "list", "--search", "pizza")
	require.NoError(t, err)
	assert.Contains(t, out, "1 recipe(s)")

	out, err = run(t, t.TempDir(), "recipes", "cost", "2", "--target-cmv", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Cost per portion:")
	assert.Contains(t, out, "for a 30,0% CMV")

	_, err = run(t, t.TempDir(), "recipes", "show", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error loading recipe: ")

	_, err = run(t, t.TempDir(), "recipes", "delete", "1")
	assert.NoError(t, err)
}

func TestRecipes_Save(t *testing.T) {
	dir := t.TempDir()
	good := writeCSV(t, dir, "recipe.json",
		`{"name":"Suco","yieldQty":1,"yieldUnit":"copo","salePrice":10,"items":[{"name":"Laranja","qty":3,"unit":"un","costUnit":1}]}`)
	bad := writeCSV(t, dir, "bad.json", `{"name":"","yieldQty":0}`)

	out, err := run(t, t.TempDir(), "recipes", "save", "--file", good)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved recipe mock-")
	assert.Contains(t, out, "CMV:               30,0%")

	_, err = run(t, t.TempDir(), "recipes", "save", "--file", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipe")
}

func TestDashboard(t *testing.T) {
	out, err := run(t, t.TempDir(), "dashboard", "--month", "2025-12", "--compare")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Dashboard 2025-12-01..2025-12-31 (31 days) ===")
	assert.Contains(t, out, "Compared with 2025-10-31..2025-11-30")
	assert.Contains(t, out, "+8%")
	assert.Contains(t, out, "Suggestions:")
}
