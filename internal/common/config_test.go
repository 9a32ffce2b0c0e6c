package common

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/material-list/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"OUTPUT_NAME", "EXPORT_XLSX", "UNRAR_PATHS", "HISTORY_DSN", "WATCH_DIR", "GRPC_ADDR", "LOG_FORMAT", "OUTPUT_THICKNESS", "STOCK_DIR"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()

	assert.Equal(t, constants.DefaultDocumentName, cfg.Output.DocumentName)
	assert.False(t, cfg.Output.ExportXLSX)
	assert.Zero(t, cfg.Output.Thickness)
	assert.Empty(t, cfg.Stock.Dir)
	assert.Nil(t, cfg.Archive.UnrarPaths)
	assert.Equal(t, 2*time.Minute, cfg.Archive.ToolTimeout)
	assert.Equal(t, "", cfg.History.DSN)
	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
	assert.Equal(t, 64, cfg.Watch.QueueSize)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("OUTPUT_NAME", "materiais.pdf")
	t.Setenv("EXPORT_XLSX", "true")
	t.Setenv("UNRAR_PATHS", strings.Join([]string{"/opt/unrar", " ", "/usr/local/bin/unrar"}, string(filepath.ListSeparator)))
	t.Setenv("WATCH_DEBOUNCE", "500ms")
	t.Setenv("QUEUE_SIZE", "not-a-number")
	t.Setenv("OUTPUT_THICKNESS", "18")
	t.Setenv("STOCK_DIR", "/srv/cortecerto/CHAPAS")

	cfg := LoadConfig()
	assert.Equal(t, "materiais.pdf", cfg.Output.DocumentName)
	assert.True(t, cfg.Output.ExportXLSX)
	assert.Equal(t, []string{"/opt/unrar", "/usr/local/bin/unrar"}, cfg.Archive.UnrarPaths)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 64, cfg.Watch.QueueSize, "unparsable values fall back to the default")
	assert.Equal(t, 18, cfg.Output.Thickness)
	assert.Equal(t, "/srv/cortecerto/CHAPAS", cfg.Stock.Dir)
}

func TestConfigValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Output.DocumentName = "out/lista.pdf"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)

	cfg = LoadConfig()
	cfg.Log.Format = "yaml"
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.Output.Thickness = -6
	assert.ErrorIs(t, cfg.Validate(), ErrConfig)

	cfg = LoadConfig()
	cfg.Watch.Dir = ""
	assert.ErrorIs(t, cfg.ValidateWatch(), ErrInvalidInput)

	cfg.Watch.Dir = t.TempDir()
	assert.NoError(t, cfg.ValidateWatch())
}
