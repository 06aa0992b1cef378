package lflist

import (
	"github.com/puzpuzpuz/xsync/v2"
)

// Stats is a snapshot of the contention counters of a List.
type Stats struct {
	InsertCASSuccesses int64
	InsertCASRetries   int64
	FlagCASRetries     int64
	MarkCASRetries     int64
	// Helps counts helpFlagged invocations, including the deleter's own.
	Helps int64
	// Unlinks counts successful physical removals.
	Unlinks int64
	// BacklinkSteps counts backlinks followed during recovery.
	BacklinkSteps int64
}

// Metrics holds striped counters so that concurrent goroutines do not
// contend on a single cache line. A nil *Metrics discards everything.
type Metrics struct {
	insertCASSuccesses *xsync.Counter
	insertCASRetries   *xsync.Counter
	flagCASRetries     *xsync.Counter
	markCASRetries     *xsync.Counter
	helps              *xsync.Counter
	unlinks            *xsync.Counter
	backlinkSteps      *xsync.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		insertCASSuccesses: xsync.NewCounter(),
		insertCASRetries:   xsync.NewCounter(),
		flagCASRetries:     xsync.NewCounter(),
		markCASRetries:     xsync.NewCounter(),
		helps:              xsync.NewCounter(),
		unlinks:            xsync.NewCounter(),
		backlinkSteps:      xsync.NewCounter(),
	}
}

func (m *Metrics) IncInsertCASSuccess() {
	if m != nil {
		m.insertCASSuccesses.Inc()
	}
}

func (m *Metrics) IncInsertCASRetry() {
	if m != nil {
		m.insertCASRetries.Inc()
	}
}

func (m *Metrics) IncFlagCASRetry() {
	if m != nil {
		m.flagCASRetries.Inc()
	}
}

func (m *Metrics) IncMarkCASRetry() {
	if m != nil {
		m.markCASRetries.Inc()
	}
}

func (m *Metrics) IncHelp() {
	if m != nil {
		m.helps.Inc()
	}
}

func (m *Metrics) IncUnlink() {
	if m != nil {
		m.unlinks.Inc()
	}
}

func (m *Metrics) IncBacklinkStep() {
	if m != nil {
		m.backlinkSteps.Inc()
	}
}

// Snapshot sums the stripes of every counter. Counters are read one after
// another, so the result is not an atomic view under concurrent updates.
func (m *Metrics) Snapshot() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		InsertCASSuccesses: m.insertCASSuccesses.Value(),
		InsertCASRetries:   m.insertCASRetries.Value(),
		FlagCASRetries:     m.flagCASRetries.Value(),
		MarkCASRetries:     m.markCASRetries.Value(),
		Helps:              m.helps.Value(),
		Unlinks:            m.unlinks.Value(),
		BacklinkSteps:      m.backlinkSteps.Value(),
	}
}

// InsertCASStats reports the insert CAS retries and successes.
func (m *Metrics) InsertCASStats() (int64, int64) {
	if m == nil {
		return 0, 0
	}
	return m.insertCASRetries.Value(), m.insertCASSuccesses.Value()
}
