package entity

import "strconv"

// MaterialEntry is one line of the material list: the cleaned CAMPO1 value
// and the code taken from the INI filename. The remaining fields come from
// the physical and commercial sections of the same file and are zero when
// the file does not carry them.
type MaterialEntry struct {
	Label           string  `json:"label"`
	Code            string  `json:"code"`
	Family          string  `json:"family,omitempty"`
	Thickness       int     `json:"thickness_mm,omitempty"`
	GrainHorizontal bool    `json:"grain_horizontal,omitempty"`
	GrainVertical   bool    `json:"grain_vertical,omitempty"`
	Rotation        int     `json:"rotation,omitempty"`
	SheetPrice      float64 `json:"sheet_price,omitempty"`
}

// NewMaterialEntry returns false when either part is empty; such inputs are
// skipped rather than listed as blanks.
func NewMaterialEntry(label, code string) (MaterialEntry, bool) {
	e := MaterialEntry{Label: label, Code: code}
	if !e.Valid() {
		return MaterialEntry{}, false
	}
	return e, true
}

// Valid reports whether the entry has both a label and a code.
func (e MaterialEntry) Valid() bool {
	return e.Label != "" && e.Code != ""
}

// String renders the entry as it appears in the document: "<code> = <label>".
func (e MaterialEntry) String() string {
	if e.Code == "" && e.Label == "" {
		return ""
	}
	return e.Code + " = " + e.Label
}

// WithThickness renders the entry with its thickness appended, as used by
// thickness-filtered lists: "<code> = <label> <n>mm".
func (e MaterialEntry) WithThickness() string {
	s := e.String()
	if s == "" || e.Thickness <= 0 {
		return s
	}
	return s + " " + strconv.Itoa(e.Thickness) + "mm"
}
