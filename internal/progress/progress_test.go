package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScale(t *testing.T) {
	tests := []struct {
		lo, hi, done, total int
		want                int
	}{
		{0, 50, 1, 3, 16},
		{0, 50, 3, 3, 50},
		{50, 90, 1, 3, 63},
		{50, 90, 3, 3, 90},
		{50, 90, 0, 0, 50},
		{0, 50, 7, 5, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Scale(tt.lo, tt.hi, tt.done, tt.total), "%+v", tt)
	}
}

func TestRecorderAndLogf(t *testing.T) {
	var r Recorder
	r.Progress(10)
	Logf(&r, "found %d files", 3)
	assert.Equal(t, []int{10}, r.Ticks)
	assert.Equal(t, []string{"found 3 files"}, r.Lines)

	var n Nop
	n.Progress(1)
	Logf(n, "ignored")
}
