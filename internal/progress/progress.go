// Package progress carries percentage ticks and log lines from pipeline
// stages to whoever is watching the job.
package progress

import "fmt"

// Stage ranges of the 0-100 job progress.
const (
	ExtractStart = 0
	ExtractEnd   = 50
	ParseStart   = 50
	ParseEnd     = 90
	RenderEnd    = 100
)

// Sink receives progress and log lines from a running job.
type Sink interface {
	Progress(percent int)
	Log(line string)
}

// Logf formats a line and sends it to s.
func Logf(s Sink, format string, args ...any) {
	s.Log(fmt.Sprintf(format, args...))
}

// Scale maps item done (1-based) of total onto [lo, hi], truncating like
// int(done/total*(hi-lo)). A zero total maps to lo.
func Scale(lo, hi, done, total int) int {
	if total <= 0 {
		return lo
	}
	if done > total {
		done = total
	}
	return lo + done*(hi-lo)/total
}

// Nop discards everything.
type Nop struct{}

func (Nop) Progress(int) {}
func (Nop) Log(string)   {}

// Recorder keeps every tick and line; handy in tests and for job summaries.
type Recorder struct {
	Ticks []int
	Lines []string
}

func (r *Recorder) Progress(p int)  { r.Ticks = append(r.Ticks, p) }
func (r *Recorder) Log(line string) { r.Lines = append(r.Lines, line) }
