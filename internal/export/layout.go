// Package export writes the sorted material list as a PDF document and,
// optionally, as an XLSX workbook.
package export

// Layout holds the page geometry in points, measured from the bottom-left
// corner of the page.
type Layout struct {
	PageWidth  float64
	PageHeight float64

	Margin       float64 // left and right margin
	TopOffset    float64 // title baseline, and the first row of later pages, below the top edge
	LineHeight   float64 // advance per row of two entries
	BottomLimit  float64 // a row is not started below this baseline
	ColumnOffset float64 // right column starts this far past the midpoint

	TitleSize  float64
	BodySize   float64
	FooterSize float64
}

// A4 is the layout of the generated material list.
func A4() Layout {
	return Layout{
		PageWidth:    595.28,
		PageHeight:   841.89,
		Margin:       30,
		TopOffset:    40,
		LineHeight:   20,
		BottomLimit:  50,
		ColumnOffset: 10,
		TitleSize:    14,
		BodySize:     12,
		FooterSize:   8,
	}
}

// Rows is the number of text rows needed for n entries, two per row.
func Rows(n int) int {
	return (n + 1) / 2
}

// Plan returns how many rows each page holds for n entries. The first page
// loses two line heights to the title; a new page starts whenever the cursor
// has dropped below BottomLimit. There is always at least one page.
func (l Layout) Plan(n int) []int {
	plan := []int{0}
	y := l.firstRowY()
	for r := 0; r < Rows(n); r++ {
		if y < l.BottomLimit {
			plan = append(plan, 0)
			y = l.topY()
		}
		plan[len(plan)-1]++
		y -= l.LineHeight
	}
	return plan
}

// PlanPages is Plan on the default A4 layout.
func PlanPages(n int) []int {
	return A4().Plan(n)
}

func (l Layout) topY() float64 { return l.PageHeight - l.TopOffset }

func (l Layout) firstRowY() float64 { return l.topY() - 2*l.LineHeight }

func (l Layout) rightColumnX() float64 { return l.PageWidth/2 + l.ColumnOffset }
