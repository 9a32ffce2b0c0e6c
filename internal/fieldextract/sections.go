package fieldextract

import (
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/joseph-ayodele/material-list/internal/entity"
)

// Section and key names in a material INI file.
const (
	SectionDesc       = "DESC"
	SectionPhysical   = "PROP_FISIC"
	SectionCommercial = "PROP_COMERC"

	KeyFamily          = "FAMILIA"
	KeyThickness       = "ESPESSURA"
	KeyGrainHorizontal = "VEIO_HORIZONTAL"
	KeyGrainVertical   = "VEIO_VERTICAL"
	KeyRotation        = "GIRO"
	KeySheetPrice      = "PRECO_CHAPA"
)

var loadOptions = ini.LoadOptions{
	SkipUnrecognizableLines: true,
	IgnoreInlineComment:     true,
	PreserveSurroundedQuote: true,
}

// readProperties fills the section-backed fields of m from text. Missing
// sections and keys leave the zero value.
func readProperties(text string, m *entity.MaterialEntry) error {
	f, err := ini.LoadSources(loadOptions, []byte(text))
	if err != nil {
		return err
	}
	m.Family = sectionValue(f, SectionDesc, KeyFamily)
	m.Thickness = leadingInt(sectionValue(f, SectionPhysical, KeyThickness))
	m.GrainHorizontal = sectionValue(f, SectionPhysical, KeyGrainHorizontal) == "1"
	m.GrainVertical = sectionValue(f, SectionPhysical, KeyGrainVertical) == "1"
	m.Rotation = leadingInt(sectionValue(f, SectionPhysical, KeyRotation))
	m.SheetPrice = leadingFloat(sectionValue(f, SectionCommercial, KeySheetPrice))
	return nil
}

func sectionValue(f *ini.File, section, key string) string {
	sec, err := f.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return ""
	}
	return strings.TrimSpace(sec.Key(key).String())
}

// leadingInt parses the integer at the start of s ("18", "18.5", "18mm")
// and returns 0 when there is none.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// leadingFloat parses the decimal number at the start of s ("152.90",
// "152.90 R$") and returns 0 when there is none.
func leadingFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits, dot := 0, false
	for ; end < len(s); end++ {
		c := s[end]
		if c >= '0' && c <= '9' {
			digits++
			continue
		}
		if c == '.' && !dot {
			dot = true
			continue
		}
		break
	}
	if digits == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return v
}
