package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/material-list/constants"
)

// IsArchive reports whether path names a .zip or .rar file.
func IsArchive(path string) bool {
	return constants.IsArchiveExt(filepath.Ext(path))
}

// IsHidden checks if a file or directory is hidden (starts with '.').
// Browsers and copy tools write partial files this way.
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
