package constants

import (
	"strconv"
	"strings"
)

// Archive formats accepted as pipeline input.
const (
	ExtZIP = "zip"
	ExtRAR = "rar"
	ExtPDF = "pdf"
	ExtINI = "ini"
)

// ArchiveExtensions holds the archive extensions the extractor understands.
var ArchiveExtensions = map[string]struct{}{
	ExtZIP: {},
	ExtRAR: {},
}

// DefaultDocumentName is used when the caller does not name the output PDF.
const DefaultDocumentName = "lista_materiais.pdf"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsArchiveExt reports whether ext (with or without the dot) names a supported archive.
func IsArchiveExt(ext string) bool {
	_, ok := ArchiveExtensions[NormalizeExt(ext)]
	return ok
}

// EnsurePDFName appends ".pdf" unless name already ends with it (any case).
func EnsurePDFName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultDocumentName
	}
	if strings.HasSuffix(strings.ToLower(name), "."+ExtPDF) {
		return name
	}
	return name + "." + ExtPDF
}

// ThicknessPDFName tags a document name with a thickness filter:
// "lista.pdf" with 18 becomes "lista-18mm.pdf". mm <= 0 leaves it as is.
func ThicknessPDFName(name string, mm int) string {
	name = EnsurePDFName(name)
	if mm <= 0 {
		return name
	}
	stem := name[:len(name)-len("."+ExtPDF)]
	return stem + "-" + strconv.Itoa(mm) + "mm." + ExtPDF
}
