package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/entity"
	"github.com/joseph-ayodele/material-list/internal/fieldextract"
	"github.com/joseph-ayodele/material-list/internal/progress"
	"github.com/joseph-ayodele/material-list/internal/rules"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

func newCollector(r rules.Rules) *Collector {
	return NewCollector(r, fieldextract.New(r, nil), nil)
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"M001.ini":     "CAMPO1=CarvalhoMDF\n",
		"M002.ini":     "CAMPO1=CarvalhoMDF\n",
		"M003.ini":     "CAMPO2=sem campo\n",
		"M.ini":        "CAMPO1=Pinho\n",
		"notes.txt":    "CAMPO1=Ignorado\n",
		"sub/M010.INI": "CAMPO1=Pinho\n",
	})

	var rec progress.Recorder
	entries, stats, err := newCollector(rules.Default()).Collect(context.Background(), root, &rec)
	require.NoError(t, err)

	assert.Equal(t, []entity.MaterialEntry{
		{Label: "Carvalho", Code: "001"},
		{Label: "Carvalho", Code: "002"},
		{Label: "Pinho", Code: "010"},
	}, entries)
	assert.Equal(t, DirStats{Scanned: 8, Matched: 5, Extracted: 3, Skipped: 2}, stats)
	assert.Equal(t, []int{58, 66, 74, 82, 90}, rec.Ticks)
	assert.Equal(t, []string{
		"Found 5 INI files to process",
		"Processing finished. Entries extracted: 3/5",
	}, rec.Lines)
}

func TestCollectEmptyDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"readme.md": "x"})

	var rec progress.Recorder
	entries, stats, err := newCollector(rules.Default()).Collect(context.Background(), root, &rec)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, stats.Matched)
	assert.Empty(t, rec.Ticks)
}

func TestCollectMissingRoot(t *testing.T) {
	_, _, err := newCollector(rules.Default()).Collect(context.Background(), filepath.Join(t.TempDir(), "gone"), nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = newCollector(rules.Default()).Collect(context.Background(), " ", nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCollectCanceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"M1.ini": "CAMPO1=a\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newCollector(rules.Default()).Collect(ctx, root, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectCustomRules(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"X-12.cfg": "NOME=Freijó BP\n",
		"X-13.ini": "NOME=Ignorado\n",
	})
	r := rules.Default()
	r.FieldKey = "NOME"
	r.BrandToken = "BP"
	r.Marker = "X"
	r.ConfigExt = ".CFG"

	entries, _, err := newCollector(r).Collect(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, []entity.MaterialEntry{{Label: "Freijó", Code: "-12"}}, entries)
}

type fixedFields map[string]string

func (f fixedFields) ExtractMaterial(path string, _ progress.Sink) (entity.MaterialEntry, bool) {
	v, ok := f[filepath.Base(path)]
	return entity.MaterialEntry{Label: v, Thickness: 15}, ok
}

func TestCollectUsesInjectedExtractor(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"M5.ini": "", "M6.ini": ""})

	c := NewCollector(rules.Default(), fixedFields{"M6.ini": "Cedro"}, nil)
	entries, stats, err := c.Collect(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, []entity.MaterialEntry{{Label: "Cedro", Code: "6", Thickness: 15}}, entries)
	assert.EqualValues(t, 1, stats.Skipped)
}

func TestCollectReadsSections(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"M7.ini": "[DESC]\nCAMPO1=Freijó MDF\nFAMILIA=Madeirado\n[PROP_FISIC]\nESPESSURA=15\n",
		"M8.ini": "[DESC]\nCAMPO1=Branco\n",
	})

	entries, _, err := newCollector(rules.Default()).Collect(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, []entity.MaterialEntry{
		{Label: "Freijó", Code: "7", Family: "Madeirado", Thickness: 15},
		{Label: "Branco", Code: "8"},
	}, entries)
}
