// Package recurse detects repeated visits of a moving entity to fixed
// locations: how often a trajectory enters the disk around each location,
// how long it stays, and optionally a log of every visit.
package recurse

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoCrossing is returned when a segment expected to cross a location's
	// boundary does not. It indicates an internal inconsistency.
	ErrNoCrossing = errors.New("segment does not cross circle")
	// ErrEmptyTrajectory is returned when no samples are given.
	ErrEmptyTrajectory = errors.New("trajectory has no samples")
	// ErrInvalidRadius is returned when the radius is not positive.
	ErrInvalidRadius = errors.New("radius must be positive")
	// ErrInvalidThreshold is returned when the threshold is negative.
	ErrInvalidThreshold = errors.New("threshold must not be negative")
	// ErrLengthMismatch is returned when input columns differ in length.
	ErrLengthMismatch = errors.New("column lengths differ")
)

// Sample is one trajectory position. Samples of a track are ordered by time.
type Sample struct {
	X       float64
	Y       float64
	T       time.Time
	TrackID string
}

// Location is a fixed point of interest.
type Location struct {
	X float64
	Y float64
}

// Params configures a recursion computation.
type Params struct {
	Radius float64
	// Threshold is the longest excursion, in TimeUnits, that is merged into
	// the surrounding visit.
	Threshold float64
	TimeUnits TimeUnit
	// Verbose enables the per-visit log.
	Verbose bool
	// Workers bounds how many locations are scanned concurrently. Values
	// below 2 scan sequentially.
	Workers int
	// LogIncrement is the growth step of each location's visit log.
	LogIncrement int
	// OnProgress, if set, is called after each location with the number of
	// locations finished. It must be safe for concurrent use when Workers > 1.
	OnProgress func(done, total int)
}

// VisitRecord describes one visit to a location, with durations in the
// requested time unit.
type VisitRecord struct {
	TrackID       string
	X             float64
	Y             float64
	LocationIndex int // 1-based
	VisitIndex    int // 1-based within the location
	EntranceTime  time.Time
	ExitTime      time.Time
	TimeInside    float64
	// TimeSinceLastVisit is nil for the first visit of a track.
	TimeSinceLastVisit *float64
}

// Result is the outcome of Compute.
type Result struct {
	Revisits      []int
	ResidenceTime []float64
	Radius        float64
	TimeUnits     TimeUnit
	// Distances is the sample × location distance matrix, nil if there are no
	// locations.
	Distances *mat.Dense
	// Visits is populated only in verbose mode, ordered by location and then
	// by visit.
	Visits []VisitRecord
}

// Compute scans the trajectory once per location and reports revisits,
// residence times and, in verbose mode, every visit. Tracks are delimited by
// changes of Sample.TrackID. The context is checked before each location; a
// cancelled computation returns no result.
func Compute(ctx context.Context, samples []Sample, locations []Location, p Params) (*Result, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyTrajectory
	}
	if !(p.Radius > 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidRadius, p.Radius)
	}
	if p.Threshold < 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidThreshold, p.Threshold)
	}
	unit := ParseTimeUnit(string(p.TimeUnits))

	s := &scanner{
		samples:   samples,
		starts:    TrackStarts(sampleTrackIDs(samples)),
		dists:     DistanceMatrix(samples, locations),
		locations: locations,
		radius:    p.Radius,
		threshold: unit.ToSeconds(p.Threshold),
		verbose:   p.Verbose,
		increment: p.LogIncrement,
	}

	scans := make([]*locationScan, len(locations))
	if err := s.scanAll(ctx, scans, p.Workers, p.OnProgress); err != nil {
		return nil, err
	}

	return aggregate(scans, locations, s.dists, p.Radius, unit, p.Verbose), nil
}

// scanAll fills scans[i] for every location. Each scan writes only its own
// slot, so locations can be processed in parallel.
func (s *scanner) scanAll(ctx context.Context, scans []*locationScan, workers int, progress func(done, total int)) error {
	total := len(scans)
	var done atomic.Int64

	run := func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		scan, err := s.scan(i)
		if err != nil {
			return err
		}
		scans[i] = scan
		if progress != nil {
			progress(int(done.Add(1)), total)
		}
		return nil
	}

	if workers < 2 {
		for i := range scans {
			if err := run(i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range scans {
		if gctx.Err() != nil {
			break
		}
		i := i // per-iteration copy; go directive is below 1.22
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return run(i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// The loop may have stopped early on a cancelled parent context.
	return ctx.Err()
}

// aggregate converts durations from seconds to unit and assembles the result.
func aggregate(scans []*locationScan, locations []Location, dists *mat.Dense, radius float64, unit TimeUnit, verbose bool) *Result {
	res := &Result{
		Revisits:      make([]int, len(scans)),
		ResidenceTime: make([]float64, len(scans)),
		Radius:        radius,
		TimeUnits:     unit,
		Distances:     dists,
	}

	for i, scan := range scans {
		res.Revisits[i] = scan.revisits
		res.ResidenceTime[i] = unit.FromSeconds(scan.residence)
	}

	if !verbose {
		return res
	}

	res.Visits = []VisitRecord{}
	for _, scan := range scans {
		for _, v := range scan.log.trimmed() {
			rec := VisitRecord{
				TrackID:       v.trackID,
				X:             locations[v.location].X,
				Y:             locations[v.location].Y,
				LocationIndex: v.location + 1,
				VisitIndex:    v.visitIndex,
				EntranceTime:  v.entrance,
				ExitTime:      v.exit,
				TimeInside:    unit.FromSeconds(v.timeInside),
			}
			if v.hasSinceLast {
				since := unit.FromSeconds(v.sinceLast)
				rec.TimeSinceLastVisit = &since
			}
			res.Visits = append(res.Visits, rec)
		}
	}
	return res
}

// SelfLocations returns every sample position as a location, for measuring
// how often a trajectory returns to its own points.
func SelfLocations(samples []Sample) []Location {
	locs := make([]Location, len(samples))
	for i, s := range samples {
		locs[i] = Location{X: s.X, Y: s.Y}
	}
	return locs
}

// TotalDuration returns the time covered by the trajectory, summed within
// tracks and excluding the gaps between them.
func TotalDuration(samples []Sample) time.Duration {
	starts := TrackStarts(sampleTrackIDs(samples))
	var total time.Duration
	for j := 1; j < len(samples); j++ {
		if !starts[j] {
			total += samples[j].T.Sub(samples[j-1].T)
		}
	}
	return total
}
