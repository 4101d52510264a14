package recurse

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// scanner holds the read-only inputs shared by all location scans.
type scanner struct {
	samples   []Sample
	starts    []bool
	dists     *mat.Dense
	locations []Location
	radius    float64
	threshold float64 // seconds
	verbose   bool
	increment int
}

// locationScan is the outcome of scanning the trajectory for one location.
type locationScan struct {
	revisits  int
	residence float64 // seconds
	log       *VisitLog
}

// visitState tracks one location while walking the trajectory.
type visitState struct {
	inside       bool
	appendToPrev bool
	entrance     time.Time
	exit         time.Time
	hasExit      bool
	sinceLast    float64
	hasSinceLast bool
	out          *locationScan
	location     int
	verbose      bool
}

// scan walks the trajectory in order for location i.
func (s *scanner) scan(i int) (*locationScan, error) {
	out := &locationScan{}
	if s.verbose {
		out.log = newVisitLog(s.increment)
	}

	center := s.locations[i].Point()
	st := &visitState{out: out, location: i, verbose: s.verbose}
	st.reset(s.samples[0], s.within(0, i))

	for j := 1; j < len(s.samples); j++ {
		prev, curr := s.samples[j-1], s.samples[j]
		inside := s.within(j, i)

		if s.starts[j] {
			// No interpolation across a track gap: the visit ends at the last
			// sample of the previous track.
			if st.inside {
				st.close(prev.T, prev.TrackID)
			}
			st.reset(curr, inside)
			continue
		}

		switch {
		case st.inside && !inside:
			frac, err := CrossingFraction(center, prev.Point(), curr.Point(), s.radius)
			if err != nil {
				return nil, fmt.Errorf("location %d, exit at sample %d: %w", i+1, j, err)
			}
			st.inside = false
			st.exit = prev.T.Add(scaleDuration(curr.T.Sub(prev.T), frac))
			st.hasExit = true
			st.close(st.exit, curr.TrackID)

		case !st.inside && inside:
			// Reversed direction: the segment starts at the inside sample.
			frac, err := CrossingFraction(center, curr.Point(), prev.Point(), s.radius)
			if err != nil {
				return nil, fmt.Errorf("location %d, entrance at sample %d: %w", i+1, j, err)
			}
			st.inside = true
			st.entrance = curr.T.Add(-scaleDuration(curr.T.Sub(prev.T), frac))
			st.enter(s.threshold)
		}
	}

	if st.inside {
		last := s.samples[len(s.samples)-1]
		st.close(last.T, last.TrackID)
	}

	return out, nil
}

func (s *scanner) within(sample, location int) bool {
	return s.dists.At(sample, location) <= s.radius
}

// reset starts a fresh track at sample.
func (st *visitState) reset(first Sample, inside bool) {
	st.inside = inside
	st.appendToPrev = false
	st.entrance = time.Time{}
	if inside {
		st.entrance = first.T
	}
	st.exit = time.Time{}
	st.hasExit = false
	st.sinceLast = 0
	st.hasSinceLast = false
}

// enter records the time spent outside since the last exit and decides whether
// the new visit continues the previous one.
func (st *visitState) enter(threshold float64) {
	st.hasSinceLast = st.hasExit
	st.sinceLast = 0
	if st.hasExit {
		st.sinceLast = st.entrance.Sub(st.exit).Seconds()
	}

	st.appendToPrev = st.hasSinceLast && st.sinceLast < threshold
	if !st.appendToPrev {
		return
	}

	// A brief excursion counts as time inside.
	st.out.residence += st.sinceLast
	if rec := st.lastRecord(); rec != nil {
		rec.timeInside += st.sinceLast
	}
}

// close ends the current visit at exit, either extending the previous visit or
// counting a new one.
func (st *visitState) close(exit time.Time, trackID string) {
	timeInside := exit.Sub(st.entrance).Seconds()
	st.out.residence += timeInside

	if st.appendToPrev {
		if rec := st.lastRecord(); rec != nil {
			rec.timeInside += timeInside
			rec.exit = exit
		}
		return
	}

	st.out.revisits++
	if !st.verbose {
		return
	}
	st.out.log.append(visit{
		trackID:      trackID,
		location:     st.location,
		visitIndex:   st.out.revisits,
		entrance:     st.entrance,
		exit:         exit,
		timeInside:   timeInside,
		sinceLast:    st.sinceLast,
		hasSinceLast: st.hasSinceLast,
	})
}

func (st *visitState) lastRecord() *visit {
	if st.out.log == nil {
		return nil
	}
	return st.out.log.last()
}

func scaleDuration(d time.Duration, frac float64) time.Duration {
	return time.Duration(frac * float64(d))
}
