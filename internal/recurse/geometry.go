package recurse

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// CrossingFraction returns the position along the segment a→b, normalised to
// [0, 1], where the segment crosses the boundary of the circle (center, radius).
//
// The crossing reported is the intersection of the supporting line that lies
// farthest along the a→b direction. Callers that scan a trajectory pass the
// inside endpoint as a, so the far root is the boundary point between a and b.
// It must only be called for segments whose endpoints lie on opposite sides of
// the boundary; otherwise ErrNoCrossing is returned.
func CrossingFraction(center, a, b r2.Point, radius float64) (float64, error) {
	ab := b.Sub(a)
	lab := ab.Norm()
	if lab == 0 {
		return 0, fmt.Errorf("%w: zero length segment at %v", ErrNoCrossing, a)
	}

	// direction vector; the line is a + t*d for 0 <= t <= lab
	d := r2.Point{X: ab.X / lab, Y: ab.Y / lab}

	// projection of the center onto the line and the closest point e
	t := d.Dot(center.Sub(a))
	e := a.Add(d.Mul(t))
	lec := e.Sub(center).Norm()

	switch {
	case lec < radius:
		dt := math.Sqrt(radius*radius - lec*lec)
		return (t + dt) / lab, nil
	case lec == radius:
		// Tangent. Exact equality is practically unreachable for real data.
		if e == a {
			return 0, nil
		}
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: segment %v-%v misses circle at %v (r=%g, closest=%g)",
			ErrNoCrossing, a, b, center, radius, lec)
	}
}
