package prefilter

// Tracker wraps a Prefilter for the duration of one search and retires it
// when it stops paying off. A prefilter pays off when its candidates either
// skip input or turn into matches; on text dense with false candidates,
// such as `a` searched in a run of a's, the per-candidate restart costs
// more than it saves.
//
// Once retired, Find returns its start position unchanged, so the caller's
// loop degrades to trying every position. Reset re-arms it.
//
// A Tracker is not safe for concurrent use; meta keeps one per pooled
// search state.
type Tracker struct {
	pf Prefilter

	candidates, confirms, skipped uint64
	nextCheck                     uint64
	retired                       bool
}

// Thresholds for retiring a prefilter: after warmup candidates, and again
// every checkEvery candidates, the prefilter is retired when fewer than
// minConfirmRatio of its candidates matched and the average skip is below
// minAvgSkip bytes.
const (
	warmup          = 128
	checkEvery      = 64
	minConfirmRatio = 0.1
	minAvgSkip      = 4
)

// NewTracker returns nil for a nil prefilter.
func NewTracker(pf Prefilter) *Tracker {
	if pf == nil {
		return nil
	}
	return &Tracker{pf: pf, nextCheck: warmup}
}

// Find returns the next candidate at or after start, or -1.
func (t *Tracker) Find(haystack []byte, start int) int {
	if t.retired {
		if start < 0 || start > len(haystack) {
			return -1
		}
		return start
	}
	pos := t.pf.Find(haystack, start)
	if pos < 0 {
		return -1
	}
	t.candidates++
	t.skipped += uint64(pos - max(start, 0))
	if t.candidates >= t.nextCheck {
		t.nextCheck = t.candidates + checkEvery
		n := float64(t.candidates)
		if float64(t.confirms)/n < minConfirmRatio && float64(t.skipped)/n < minAvgSkip {
			t.retired = true
		}
	}
	return pos
}

// ConfirmMatch records that the last candidate matched.
func (t *Tracker) ConfirmMatch() { t.confirms++ }

// IsActive reports whether the prefilter is still in use.
func (t *Tracker) IsActive() bool { return !t.retired }

// Stats returns the candidates and confirmed matches seen since the last
// Reset and whether the prefilter is still in use.
func (t *Tracker) Stats() (candidates, confirms uint64, active bool) {
	return t.candidates, t.confirms, !t.retired
}

// Reset clears the counters and re-arms the prefilter.
func (t *Tracker) Reset() {
	*t = Tracker{pf: t.pf, nextCheck: warmup}
}
