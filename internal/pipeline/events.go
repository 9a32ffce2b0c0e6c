package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/material-list/internal/entity"
	"github.com/joseph-ayodele/material-list/internal/progress"
)

type EventKind int

const (
	EventProgress EventKind = iota
	EventLog
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventLog:
		return "log"
	case EventDone:
		return "done"
	}
	return "unknown"
}

// Event is one message from a running job. Done is always the last event
// on a channel returned by Start.
type Event struct {
	Kind    EventKind
	Percent int            // EventProgress
	Line    string         // EventLog
	Outcome entity.Outcome // EventDone
}

// chanSink forwards sink calls onto an event channel.
type chanSink chan<- Event

func (c chanSink) Progress(p int)  { c <- Event{Kind: EventProgress, Percent: p} }
func (c chanSink) Log(line string) { c <- Event{Kind: EventLog, Line: line} }

// reporter keeps job progress non-decreasing within [0, 100] and mirrors
// log lines to the structured logger.
type reporter struct {
	sink   progress.Sink
	logger *slog.Logger
	last   int
}

func newReporter(sink progress.Sink, logger *slog.Logger) *reporter {
	if sink == nil {
		sink = progress.Nop{}
	}
	return &reporter{sink: sink, logger: logger, last: -1}
}

func (r *reporter) Progress(p int) {
	p = min(max(p, 0), progress.RenderEnd)
	if p <= r.last {
		return
	}
	r.last = p
	r.sink.Progress(p)
}

func (r *reporter) Log(line string) {
	r.logger.Debug("pipeline.log", "line", line)
	r.sink.Log(line)
}
