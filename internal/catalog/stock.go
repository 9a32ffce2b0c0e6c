package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/joseph-ayodele/material-list/internal/common"
)

// Kind selects which stock tables to read.
type Kind string

const (
	KindSheets  Kind = "sheets"
	KindOffcuts Kind = "offcuts"
	KindAll     Kind = "all"
)

// ParseKind accepts the Kind names case-insensitively; "" means KindAll.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAll, nil
	case KindSheets, KindOffcuts, KindAll:
		return k, nil
	}
	return "", common.InvalidInputError(fmt.Sprintf("unknown stock kind %q: want sheets, offcuts or all", s), nil)
}

// Sheet is one active full sheet from a CHP table.
type Sheet struct {
	Number       int
	MaterialCode int
	Height       float64
	Width        float64
	Description  string
}

// Offcut is one active leftover from a RET table.
type Offcut struct {
	Number      int
	Quantity    int
	Height      float64
	Width       float64
	Description string
}

// Area is the surface of one piece in square metres (dimensions are mm).
func (o Offcut) Area() float64 {
	return o.Height * o.Width / 1e6
}

// Stock is what a material has on hand.
type Stock struct {
	Code    string
	Sheets  []Sheet
	Offcuts []Offcut
}

// OffcutArea sums the surface of every offcut piece in square metres.
func (s Stock) OffcutArea() float64 {
	var total float64
	for _, o := range s.Offcuts {
		total += o.Area() * float64(o.Quantity)
	}
	return total
}

// ParseSheets reads a whitespace-separated CHP table:
// active number material height width description...
// Inactive rows and rows too short to carry dimensions are dropped.
func ParseSheets(r io.Reader) ([]Sheet, error) {
	var out []Sheet
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		parts := strings.Fields(sc.Text())
		if len(parts) < 5 || parts[0] != "1" {
			continue
		}
		number, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		h, errH := strconv.ParseFloat(parts[3], 64)
		w, errW := strconv.ParseFloat(parts[4], 64)
		if errH != nil || errW != nil {
			continue
		}
		material, _ := strconv.Atoi(parts[2])
		out = append(out, Sheet{
			Number:       number,
			MaterialCode: material,
			Height:       h,
			Width:        w,
			Description:  strings.Join(parts[5:], " "),
		})
	}
	return out, sc.Err()
}

// ParseOffcuts reads a comma-separated RET table:
// number,flag,quantity,height,width,description
// Only rows flagged "+" with a positive quantity are kept.
func ParseOffcuts(r io.Reader) ([]Offcut, error) {
	var out []Offcut
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		parts := strings.Split(sc.Text(), ",")
		if len(parts) < 5 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if parts[1] != "+" {
			continue
		}
		qty, err := strconv.Atoi(parts[2])
		if err != nil || qty <= 0 {
			continue
		}
		number, errN := strconv.Atoi(parts[0])
		h, errH := strconv.ParseFloat(parts[3], 64)
		w, errW := strconv.ParseFloat(parts[4], 64)
		if errN != nil || errH != nil || errW != nil {
			continue
		}
		o := Offcut{Number: number, Quantity: qty, Height: h, Width: w}
		if len(parts) > 5 {
			o.Description = parts[5]
		}
		out = append(out, o)
	}
	return out, sc.Err()
}

// SheetFile and OffcutFile name the tables of a material code,
// zero-padded to five digits: 259 -> CHP00259.TAB.
func SheetFile(code string) string  { return "CHP" + pad(code) + ".TAB" }
func OffcutFile(code string) string { return "RET" + pad(code) + ".TAB" }

func pad(code string) string {
	if len(code) >= 5 {
		return code
	}
	return strings.Repeat("0", 5-len(code)) + code
}

// StockReader reads CHP/RET tables from one directory.
type StockReader struct {
	dir    string
	logger *slog.Logger
}

func NewStockReader(dir string, logger *slog.Logger) *StockReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &StockReader{dir: dir, logger: logger}
}

// Stock reads the tables kind selects for code. A material without a table
// has no stock of that kind.
func (s *StockReader) Stock(code string, kind Kind) (Stock, error) {
	code = strings.TrimSpace(code)
	if err := validCode(code); err != nil {
		return Stock{}, err
	}
	st := Stock{Code: code}
	var err error
	if kind != KindOffcuts {
		if st.Sheets, err = s.Sheets(code); err != nil {
			return Stock{}, err
		}
	}
	if kind != KindSheets {
		if st.Offcuts, err = s.Offcuts(code); err != nil {
			return Stock{}, err
		}
	}
	s.logger.Debug("catalog.stock.read", "code", code, "kind", string(kind),
		"sheets", len(st.Sheets), "offcuts", len(st.Offcuts))
	return st, nil
}

func (s *StockReader) Sheets(code string) ([]Sheet, error) {
	if err := validCode(code); err != nil {
		return nil, err
	}
	r, err := s.open(SheetFile(code))
	if r == nil || err != nil {
		return nil, err
	}
	sheets, err := ParseSheets(r)
	if err != nil {
		return nil, common.WrapError(err, "read "+SheetFile(code))
	}
	return sheets, nil
}

func (s *StockReader) Offcuts(code string) ([]Offcut, error) {
	if err := validCode(code); err != nil {
		return nil, err
	}
	r, err := s.open(OffcutFile(code))
	if r == nil || err != nil {
		return nil, err
	}
	offcuts, err := ParseOffcuts(r)
	if err != nil {
		return nil, common.WrapError(err, "read "+OffcutFile(code))
	}
	return offcuts, nil
}

// open returns the table's text, or nil when the file does not exist under
// its upper- or lower-case name. Tables that are not UTF-8 are read as
// Windows-1252.
func (s *StockReader) open(name string) (io.Reader, error) {
	for _, n := range []string{name, strings.ToLower(name)} {
		b, err := os.ReadFile(filepath.Join(s.dir, n))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, common.WrapError(err, "open "+n)
		}
		if !utf8.Valid(b) {
			if b, err = charmap.Windows1252.NewDecoder().Bytes(b); err != nil {
				return nil, common.WrapError(err, "decode "+n)
			}
		}
		return strings.NewReader(string(b)), nil
	}
	s.logger.Debug("catalog.stock.missing", "dir", s.dir, "file", name)
	return nil, nil
}

func validCode(code string) error {
	if code == "" {
		return common.InvalidInputError("material code is required", nil)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return common.InvalidInputError(fmt.Sprintf("material code must be numeric: %q", code), nil)
		}
	}
	return nil
}
