package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/material-list/internal/common"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HISTORY_DSN", "OUTPUT_NAME", "EXPORT_XLSX", "MATERIALS_RULES_FILE", "SCRATCH_DIR", "LOG_FORMAT", "LOG_LEVEL", "OUTPUT_THICKNESS", "STOCK_DIR"} {
		t.Setenv(k, "")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateAndHistory(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "obra")
	require.NoError(t, os.Mkdir(in, 0o755))
	for name, content := range map[string]string{
		"M001.ini": "CAMPO1=CarvalhoMDF\n",
		"M010.ini": "CAMPO1=Pinho\n",
		"M002.ini": "CAMPO1=CarvalhoMDF\n",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte(content), 0o600))
	}
	dsn := filepath.Join(dir, "history.db")

	out, err := execute(t, "generate", in, "--name", "materiais", "--history", dsn, "--xlsx")
	require.NoError(t, err)
	assert.Contains(t, out, "[100%]")
	assert.Contains(t, out, "PDF saved successfully!")
	assert.Contains(t, out, "PDF generated successfully! "+filepath.Join(in, "materiais.pdf"))
	assert.FileExists(t, filepath.Join(in, "materiais.pdf"))
	assert.FileExists(t, filepath.Join(in, "materiais.xlsx"))

	out, err = execute(t, "history", "--history", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "DONE")
	assert.Contains(t, out, in)
}

func TestGenerateQuiet(t *testing.T) {
	clearEnv(t)
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "M5.ini"), []byte("CAMPO1=Cedro\n"), 0o600))

	out, err := execute(t, "generate", "-q", in)
	require.NoError(t, err)
	assert.NotContains(t, out, "%]")
	assert.FileExists(t, filepath.Join(in, "lista_materiais.pdf"))
}

func TestGenerateFailures(t *testing.T) {
	clearEnv(t)

	_, err := execute(t, "generate", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidInput, common.KindOf(err))
	assert.Equal(t, 2, exitCode(err))

	_, err = execute(t, "generate", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoData)
	assert.Equal(t, 1, exitCode(err))

	_, err = execute(t, "generate")
	assert.Error(t, err)
}

func TestHistoryRequiresDSN(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "history")
	assert.ErrorIs(t, err, common.ErrConfig)
}

func TestHistoryEmpty(t *testing.T) {
	clearEnv(t)
	out, err := execute(t, "history", "--history", filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	assert.Equal(t, "no jobs recorded\n", out)
}

func writeMaterials(t *testing.T, dir string) {
	t.Helper()
	for name, content := range map[string]string{
		"M001.ini": "[DESC]\nCAMPO1=Branco Liso\nFAMILIA=MDF\n[PROP_FISIC]\nESPESSURA=18\n",
		"M002.ini": "[DESC]\nCAMPO1=Branco Liso\n[PROP_FISIC]\nESPESSURA=15\n",
		"M003.ini": "[DESC]\nCAMPO1=Freijó\n[PROP_FISIC]\nESPESSURA=18\n",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

func TestGenerateThickness(t *testing.T) {
	clearEnv(t)
	in := t.TempDir()
	writeMaterials(t, in)

	out, err := execute(t, "generate", in, "-q", "--thickness", "18")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(in, "lista_materiais-18mm.pdf"))
	assert.FileExists(t, filepath.Join(in, "lista_materiais-18mm.pdf"))

	_, err = execute(t, "generate", in, "-q", "-t", "25")
	assert.ErrorIs(t, err, common.ErrNoData)
	assert.NoFileExists(t, filepath.Join(in, "lista_materiais-25mm.pdf"))

	_, err = execute(t, "generate", in, "--thickness=-1")
	assert.ErrorIs(t, err, common.ErrConfig)
}

func TestSearch(t *testing.T) {
	clearEnv(t)
	in := t.TempDir()
	writeMaterials(t, in)

	out, err := execute(t, "search", in, "BRANCO", "liso", "--thickness", "18")
	require.NoError(t, err)
	assert.Contains(t, out, "CODE")
	assert.Contains(t, out, "001")
	assert.Contains(t, out, "18mm")
	assert.NotContains(t, out, "002")

	out, err = execute(t, "search", in, "freijo", "gold")
	require.NoError(t, err)
	assert.Contains(t, out, "Similar materials")
	assert.Contains(t, out, "Freijó")

	_, err = execute(t, "search", in, "nogueira")
	assert.ErrorIs(t, err, common.ErrNoData)

	_, err = execute(t, "search", in)
	assert.Error(t, err)
}

func TestStock(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CHP00001.TAB"), []byte("1 7 1 2750 1850 Branco Liso\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "RET00001.TAB"), []byte("3,+,2,1000,500,Sobra\n"), 0o600))

	out, err := execute(t, "stock", "1", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Sheets for material 1: 1")
	assert.Contains(t, out, "2750")
	assert.Contains(t, out, "Offcuts for material 1: 1 (1.00 m²)")
	assert.Contains(t, out, "Sobra")

	out, err = execute(t, "stock", "1", "--dir", dir, "--kind", "offcuts")
	require.NoError(t, err)
	assert.NotContains(t, out, "Sheets")

	_, err = execute(t, "stock", "1", "--dir", dir, "--kind", "chapas")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = execute(t, "stock", "1")
	assert.ErrorIs(t, err, common.ErrConfig)
}
