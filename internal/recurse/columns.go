package recurse

import (
	"fmt"
	"time"
)

// DefaultTrackID names the single track of a trajectory given without track
// identifiers.
const DefaultTrackID = "1"

// SamplesFromColumns builds samples from column-wise input. ids may be nil,
// in which case every sample belongs to DefaultTrackID.
func SamplesFromColumns(x, y []float64, t []time.Time, ids []string) ([]Sample, error) {
	n := len(x)
	if len(y) != n || len(t) != n {
		return nil, fmt.Errorf("%w: x=%d y=%d t=%d", ErrLengthMismatch, len(x), len(y), len(t))
	}
	if ids != nil && len(ids) != n {
		return nil, fmt.Errorf("%w: x=%d id=%d", ErrLengthMismatch, n, len(ids))
	}

	samples := make([]Sample, n)
	for i := range samples {
		id := DefaultTrackID
		if ids != nil {
			id = ids[i]
		}
		samples[i] = Sample{X: x[i], Y: y[i], T: t[i], TrackID: id}
	}
	return samples, nil
}

// LocationsFromColumns builds locations from column-wise input.
func LocationsFromColumns(x, y []float64) ([]Location, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: x=%d y=%d", ErrLengthMismatch, len(x), len(y))
	}
	locs := make([]Location, len(x))
	for i := range locs {
		locs[i] = Location{X: x[i], Y: y[i]}
	}
	return locs, nil
}
