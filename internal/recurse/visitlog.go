package recurse

import "time"

// DefaultLogIncrement is the number of records a VisitLog grows by when full.
const DefaultLogIncrement = 10

// VisitLog is an append-only list of visit records backed by storage that
// grows by a fixed increment. Only the most recently appended record may be
// modified, which is how excursions are merged into an open visit.
type VisitLog struct {
	records   []visit
	n         int
	increment int
}

// visit is a log entry with durations in seconds.
type visit struct {
	trackID      string
	location     int
	visitIndex   int
	entrance     time.Time
	exit         time.Time
	timeInside   float64
	sinceLast    float64
	hasSinceLast bool
}

func newVisitLog(increment int) *VisitLog {
	if increment <= 0 {
		increment = DefaultLogIncrement
	}
	return &VisitLog{
		records:   make([]visit, increment),
		increment: increment,
	}
}

// Len returns the number of records appended so far.
func (l *VisitLog) Len() int {
	return l.n
}

// Cap returns the size of the backing storage.
func (l *VisitLog) Cap() int {
	return len(l.records)
}

func (l *VisitLog) append(v visit) {
	if l.n == len(l.records) {
		l.records = append(l.records, make([]visit, l.increment)...)
	}
	l.records[l.n] = v
	l.n++
}

// last returns the most recent record, or nil if the log is empty.
func (l *VisitLog) last() *visit {
	if l.n == 0 {
		return nil
	}
	return &l.records[l.n-1]
}

// trimmed returns the used part of the log, dropping spare capacity.
func (l *VisitLog) trimmed() []visit {
	out := make([]visit, l.n)
	copy(out, l.records[:l.n])
	return out
}
