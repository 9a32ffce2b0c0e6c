package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/material-list/internal/common"
)

const sheetTable = `1  1  259  2750  1850  Branco Liso 18mm
0  2  259  2750  1850  baixada
1  3  9999 2750.5 1830 

1  4
`

const offcutTable = "1,+,2,800,600,Sobra bancada\r\n" +
	"2,-,1,500,500,usada\r\n" +
	"3,+,0,400,300,zerada\r\n" +
	"4,+,1,1200,450\r\n" +
	"x,+,1,100,100,ruim\r\n"

func TestParseSheets(t *testing.T) {
	sheets, err := ParseSheets(strings.NewReader(sheetTable))
	require.NoError(t, err)
	assert.Equal(t, []Sheet{
		{Number: 1, MaterialCode: 259, Height: 2750, Width: 1850, Description: "Branco Liso 18mm"},
		{Number: 3, MaterialCode: 9999, Height: 2750.5, Width: 1830},
	}, sheets)
}

func TestParseOffcuts(t *testing.T) {
	offcuts, err := ParseOffcuts(strings.NewReader(offcutTable))
	require.NoError(t, err)
	assert.Equal(t, []Offcut{
		{Number: 1, Quantity: 2, Height: 800, Width: 600, Description: "Sobra bancada"},
		{Number: 4, Quantity: 1, Height: 1200, Width: 450},
	}, offcuts)
	assert.InDelta(t, 0.48, offcuts[0].Area(), 1e-9)

	st := Stock{Offcuts: offcuts}
	assert.InDelta(t, 2*0.48+0.54, st.OffcutArea(), 1e-9)
}

func TestTableFileNames(t *testing.T) {
	assert.Equal(t, "CHP00259.TAB", SheetFile("259"))
	assert.Equal(t, "RET00001.TAB", OffcutFile("1"))
	assert.Equal(t, "CHP123456.TAB", SheetFile("123456"))
}

func TestStockReader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CHP00259.TAB"), []byte(sheetTable), 0o600))
	// Lower-case name and Windows-1252 description.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ret00259.tab"), []byte("7,+,1,900,300,Pe\xe7a\r\n"), 0o600))

	r := NewStockReader(dir, nil)

	st, err := r.Stock("259", KindAll)
	require.NoError(t, err)
	assert.Equal(t, "259", st.Code)
	assert.Len(t, st.Sheets, 2)
	require.Len(t, st.Offcuts, 1)
	assert.Equal(t, "Peça", st.Offcuts[0].Description)

	st, err = r.Stock("259", KindSheets)
	require.NoError(t, err)
	assert.Len(t, st.Sheets, 2)
	assert.Nil(t, st.Offcuts)

	st, err = r.Stock("259", KindOffcuts)
	require.NoError(t, err)
	assert.Nil(t, st.Sheets)
	assert.Len(t, st.Offcuts, 1)
}

func TestStockReaderMissingTables(t *testing.T) {
	st, err := NewStockReader(t.TempDir(), nil).Stock("12", KindAll)
	require.NoError(t, err)
	assert.Empty(t, st.Sheets)
	assert.Empty(t, st.Offcuts)
}

func TestStockReaderRejectsBadCode(t *testing.T) {
	r := NewStockReader(t.TempDir(), nil)
	for _, code := range []string{"", "../1", "12a"} {
		_, err := r.Stock(code, KindAll)
		assert.ErrorIs(t, err, common.ErrInvalidInput, "code %q", code)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"": KindAll, "Sheets": KindSheets, " offcuts ": KindOffcuts, "ALL": KindAll} {
		k, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, k)
	}
	_, err := ParseKind("chapas")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
