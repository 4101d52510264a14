package recurse

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// DistanceMatrix computes the Euclidean distance from every sample (rows) to
// every location (columns). It returns nil when either input is empty.
func DistanceMatrix(samples []Sample, locations []Location) *mat.Dense {
	if len(samples) == 0 || len(locations) == 0 {
		return nil
	}

	m := mat.NewDense(len(samples), len(locations), nil)
	for i, s := range samples {
		p := s.Point()
		for j, loc := range locations {
			m.Set(i, j, p.Sub(loc.Point()).Norm())
		}
	}
	return m
}

// Point returns the sample position.
func (s Sample) Point() r2.Point {
	return r2.Point{X: s.X, Y: s.Y}
}

// Point returns the location position.
func (l Location) Point() r2.Point {
	return r2.Point{X: l.X, Y: l.Y}
}
