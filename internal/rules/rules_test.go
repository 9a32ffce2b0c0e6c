package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/material-list/internal/common"
)

func TestDefault(t *testing.T) {
	r := Default()
	assert.Equal(t, "CAMPO1", r.FieldKey)
	assert.Equal(t, "ini", r.Ext())
	assert.Equal(t, []string{"utf-8", "latin-1", "cp1252"}, r.Encodings)
	assert.Equal(t, "Carvalho", r.CleanLabel("  CarvalhoMDF "))
	assert.Equal(t, "Branco Tx", r.CleanLabel("Branco MDF Tx"))
	assert.Equal(t, "001", r.CodeFromStem("M001"))
	assert.Equal(t, "12", r.CodeFromStem("M1M2"))
}

func TestParseOverlaysDefaults(t *testing.T) {
	r, err := Parse([]byte(`{"brand_token": "MDP", "config_ext": ".INI", "encodings": ["cp1252"]}`))
	require.NoError(t, err)

	assert.Equal(t, "MDP", r.BrandToken)
	assert.Equal(t, "ini", r.Ext())
	assert.Equal(t, []string{"cp1252"}, r.Encodings)
	assert.Equal(t, "CAMPO1", r.FieldKey, "unset fields keep defaults")
	assert.Equal(t, "M", r.Marker)
}

func TestParseDisablesStripping(t *testing.T) {
	r, err := Parse([]byte(`{"brand_token": "", "marker": ""}`))
	require.NoError(t, err)
	assert.Equal(t, "CarvalhoMDF", r.CleanLabel("CarvalhoMDF"))
	assert.Equal(t, "M001", r.CodeFromStem("M001"))
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"unknown property", `{"colour": "red"}`},
		{"unknown encoding", `{"encodings": ["ebcdic"]}`},
		{"empty encodings", `{"encodings": []}`},
		{"multi-char marker", `{"marker": "MM"}`},
		{"key with equals", `{"field_key": "CAMPO=1"}`},
		{"empty key", `{"field_key": ""}`},
		{"bad extension", `{"config_ext": "in i"}`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "Materiais"}`), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Materiais", r.Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, common.ErrConfig)
}
