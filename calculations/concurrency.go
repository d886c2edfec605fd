package calculations

import (
	"sort"
	"strings"
	"time"

	"github.com/penwyp/UsagePivot/logging"
	"github.com/penwyp/UsagePivot/models"
)

// TimestampLayouts are the boundary formats accepted by the sweep, tried in order
var TimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"01/02/2006 15:04:05",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"15:04:05",
	"15:04",
}

// event is one interval boundary in the sweep
type event struct {
	raw   string
	at    time.Time
	delta int
}

// Estimator computes peak concurrency over session intervals
type Estimator struct {
	loc     *time.Location
	layouts []string
}

// NewEstimator creates an estimator that parses boundaries in loc
func NewEstimator(loc *time.Location) *Estimator {
	if loc == nil {
		loc = time.UTC
	}
	return &Estimator{loc: loc, layouts: TimestampLayouts}
}

// NewEstimatorForTimezone resolves an IANA timezone name
func NewEstimatorForTimezone(tz string) (*Estimator, error) {
	if tz == "" {
		return NewEstimator(time.UTC), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	return NewEstimator(loc), nil
}

var defaultEstimator = NewEstimator(time.UTC)

// EstimateConcurrency returns the maximum number of simultaneously open
// intervals, floored at 1. Intervals with start == end are ignored, and an
// interval ending at the instant another starts does not overlap it.
func EstimateConcurrency(intervals []models.Interval) int {
	return defaultEstimator.Estimate(intervals)
}

// ParseTimestamp parses s with the accepted layouts in loc
func (e *Estimator) ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range e.layouts {
		if t, err := time.ParseInLocation(layout, s, e.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Estimate runs the sweep. Boundaries are ordered as instants when any of
// them parse, and intervals with an unparsable boundary are then left out.
// Only when nothing parses are the raw strings compared.
func (e *Estimator) Estimate(intervals []models.Interval) int {
	events := make([]event, 0, len(intervals)*2)
	parsed := make([]bool, len(intervals))
	byInstant := false
	for i, iv := range intervals {
		start := event{raw: iv.Start, delta: 1}
		end := event{raw: iv.End, delta: -1}
		var okStart, okEnd bool
		start.at, okStart = e.ParseTimestamp(iv.Start)
		end.at, okEnd = e.ParseTimestamp(iv.End)
		parsed[i] = okStart && okEnd
		byInstant = byInstant || okStart || okEnd
		events = append(events, start, end)
	}

	if byInstant {
		kept := events[:0]
		dropped := 0
		for i := range intervals {
			if !parsed[i] {
				dropped++
				continue
			}
			kept = append(kept, events[2*i], events[2*i+1])
		}
		events = kept
		if dropped > 0 {
			logging.LogDebugf("concurrency sweep skipped %d of %d intervals with unparsable boundaries", dropped, len(intervals))
		}
	} else if len(intervals) > 0 {
		logging.LogDebugf("concurrency sweep falling back to string order for %d intervals", len(intervals))
	}

	same := func(a, b event) bool {
		if byInstant {
			return a.at.Equal(b.at)
		}
		return a.raw == b.raw
	}

	kept := events[:0]
	for i := 0; i < len(events); i += 2 {
		if same(events[i], events[i+1]) {
			continue
		}
		kept = append(kept, events[i], events[i+1])
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if !same(a, b) {
			if byInstant {
				return a.at.Before(b.at)
			}
			return a.raw < b.raw
		}
		return a.delta < b.delta
	})

	peak, current := 0, 0
	for _, ev := range kept {
		current += ev.delta
		if current > peak {
			peak = current
		}
	}

	if peak < 1 {
		peak = 1
	}
	return peak
}
