// Package ingest finds material INI files on disk and watches an inbox for
// new archives.
package ingest

import (
	"github.com/joseph-ayodele/material-list/internal/entity"
	"github.com/joseph-ayodele/material-list/internal/progress"
)

// DirStats summarizes a collection run.
type DirStats struct {
	Scanned   uint32 // every walked entry, directories included
	Matched   uint32 // files with the config extension
	Extracted uint32 // files that produced an entry
	Skipped   uint32 // matched files without a usable label or code
	Failed    uint32 // walk errors
}

// FieldExtractor is the behavior the collector depends on. ExtractMaterial
// returns the entry without its code; ok is false for files without a
// usable label.
type FieldExtractor interface {
	ExtractMaterial(path string, sink progress.Sink) (entity.MaterialEntry, bool)
}
