package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
	"golang.org/x/text/encoding/charmap"

	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/progress"
)

func (e *Extractor) extractZip(ctx context.Context, path, dest string, sink progress.Sink) (int, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return 0, common.ExtractionError("open zip archive", err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			e.logger.Warn("close zip archive", "path", path, "error", err)
		}
	}()

	total := len(r.File)
	for i, f := range r.File {
		if err := ctx.Err(); err != nil {
			return i, common.ExtractionError("extraction interrupted", err)
		}
		name := memberName(f)
		if err := writeZipMember(f, name, dest); err != nil {
			return i, common.ExtractionError(fmt.Sprintf("extract %s", name), err)
		}
		sink.Progress(progress.Scale(progress.ExtractStart, progress.ExtractEnd, i+1, total))
	}
	return total, nil
}

// memberName decodes legacy names written without the UTF-8 flag as CP437,
// the way Windows zip tools store them.
func memberName(f *zip.File) string {
	if !f.NonUTF8 || utf8.ValidString(f.Name) {
		return f.Name
	}
	if s, err := charmap.CodePage437.NewDecoder().String(f.Name); err == nil {
		return s
	}
	return f.Name
}

func writeZipMember(f *zip.File, name, dest string) error {
	target, err := memberPath(dest, name)
	if err != nil {
		return err
	}
	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
