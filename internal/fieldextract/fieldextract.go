// Package fieldextract reads material INI files whose encoding is not known
// in advance.
package fieldextract

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/material-list/internal/entity"
	"github.com/joseph-ayodele/material-list/internal/progress"
	"github.com/joseph-ayodele/material-list/internal/rules"
)

type Extractor struct {
	rules    rules.Rules
	decoders []namedDecoder
	logger   *slog.Logger
}

type namedDecoder struct {
	name   string
	decode decoder
}

// New builds an Extractor for r. Unknown encoding names are skipped with a
// warning; rules loaded through rules.Load never contain them.
func New(r rules.Rules, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{rules: r, logger: logger}
	for _, name := range r.Encodings {
		d, err := decoderFor(name)
		if err != nil {
			logger.Warn("fieldextract.encoding.skipped", "encoding", name, "error", err)
			continue
		}
		e.decoders = append(e.decoders, namedDecoder{name: name, decode: d})
	}
	return e
}

// ExtractField returns the cleaned value of key in the file at path.
//
// Each encoding is tried on the whole content in order. The first one that
// decodes settles the answer: the first line starting with "key=" gives the
// value, otherwise the key is absent. Unreadable files are reported to sink
// and yield ok=false.
func (e *Extractor) ExtractField(path, key string, sink progress.Sink) (string, bool) {
	text, ok := e.decodeFile(path, sink)
	if !ok {
		return "", false
	}
	v, found := lineValue(text, key+"=")
	if !found {
		return "", false
	}
	return e.clean(v)
}

// ExtractMaterial reads the label like ExtractField and fills the physical
// and commercial properties from the file's sections. The code is left for
// the caller, which derives it from the file name. ok is false when the file
// is unreadable or has no usable label.
func (e *Extractor) ExtractMaterial(path string, sink progress.Sink) (entity.MaterialEntry, bool) {
	text, ok := e.decodeFile(path, sink)
	if !ok {
		return entity.MaterialEntry{}, false
	}
	v, found := lineValue(text, e.rules.FieldKey+"=")
	if !found {
		return entity.MaterialEntry{}, false
	}
	label, ok := e.clean(v)
	if !ok {
		return entity.MaterialEntry{}, false
	}
	m := entity.MaterialEntry{Label: label}
	if err := readProperties(text, &m); err != nil {
		// The label line alone is still a listable material.
		e.logger.Debug("fieldextract.sections.failed", "path", path, "error", err)
	}
	return m, true
}

// decodeFile returns the file's text in the first encoding that decodes it.
// Content no configured encoding accepts is reported unreadable.
func (e *Extractor) decodeFile(path string, sink progress.Sink) (string, bool) {
	if sink == nil {
		sink = progress.Nop{}
	}
	name := filepath.Base(path)

	content, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn("fieldextract.read.failed", "path", path, "error", err)
		progress.Logf(sink, "Could not read file: %s | Error: %v", name, err)
		progress.Logf(sink, "File content not read: %s", name)
		return "", false
	}

	for _, d := range e.decoders {
		text, err := d.decode(content)
		if err != nil {
			e.logger.Debug("fieldextract.decode.failed", "path", path, "encoding", d.name, "error", err)
			progress.Logf(sink, "Error with '%s' in file: %s, trying next encoding.", d.name, name)
			continue
		}
		return text, true
	}

	e.logger.Warn("fieldextract.unreadable", "path", path, "encodings", e.rules.Encodings)
	progress.Logf(sink, "File content not read: %s", name)
	return "", false
}

func (e *Extractor) clean(v string) (string, bool) {
	label := e.rules.CleanLabel(v)
	return label, label != ""
}

// lineValue returns everything after the first '=' of the first line that
// starts with prefix.
func lineValue(text, prefix string) (string, bool) {
	for line := range strings.Lines(text) {
		if strings.HasPrefix(line, prefix) {
			return line[len(prefix):], true
		}
	}
	return "", false
}
