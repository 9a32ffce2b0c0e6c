package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		entries int
		want    []int
	}{
		{0, []int{0}},
		{1, []int{1}},
		{2, []int{1}},
		{3, []int{2}},
		{72, []int{36}},
		{73, []int{36, 1}},
		{74, []int{36, 1}},
		{148, []int{36, 38}},
		{149, []int{36, 38, 1}},
		{300, []int{36, 38, 38, 38}},
	}
	for _, tt := range tests {
		got := PlanPages(tt.entries)
		assert.Equal(t, tt.want, got, "entries=%d", tt.entries)

		sum := 0
		for _, rows := range got {
			sum += rows
		}
		assert.Equal(t, Rows(tt.entries), sum)
	}
}

func TestRows(t *testing.T) {
	assert.Equal(t, 0, Rows(0))
	assert.Equal(t, 1, Rows(1))
	assert.Equal(t, 2, Rows(3))
	assert.Equal(t, 2, Rows(4))
}

func TestPlanCustomLayout(t *testing.T) {
	l := A4()
	l.LineHeight = 40
	// First page rows from 721.89 down to 50 in steps of 40, later pages from 801.89.
	assert.Equal(t, []int{17, 19, 4}, l.Plan(80))
}
