package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jengzang/recurse-backend-go/internal/models"
	"github.com/jengzang/recurse-backend-go/internal/recurse"
)

// RevisitPatterns derives, for every location with at least one visit, how
// regularly the trajectory returned to it. Intervals are measured between
// consecutive entrances and expressed in unit, like the durations of the
// visit log. Without a visit log only counts and residence are reported.
// Patterns are ordered by visit count, most visited first.
func RevisitPatterns(summaries []models.RevisitSummary, visits []models.VisitRecord, unit recurse.TimeUnit) []models.RevisitPattern {
	byLocation := make(map[int][]models.VisitRecord)
	for _, v := range visits {
		byLocation[v.CoordIdx] = append(byLocation[v.CoordIdx], v)
	}

	patterns := []models.RevisitPattern{}
	for _, s := range summaries {
		if s.Revisits == 0 {
			continue
		}

		p := models.RevisitPattern{
			LocationIndex: s.LocationIndex,
			X:             s.X,
			Y:             s.Y,
			VisitCount:    s.Revisits,
			TotalDuration: s.ResidenceTime,
		}

		if locVisits := byLocation[s.LocationIndex]; len(locVisits) > 0 {
			applyIntervals(&p, locVisits, unit)
		}

		// Revisit strength: log(1 + visits) × log(1 + duration)
		p.RevisitStrength = math.Log(1+float64(p.VisitCount)) * math.Log(1+p.TotalDuration)

		patterns = append(patterns, p)
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].VisitCount > patterns[j].VisitCount
	})
	return patterns
}

func applyIntervals(p *models.RevisitPattern, visits []models.VisitRecord, unit recurse.TimeUnit) {
	entrances := make([]float64, len(visits))
	p.LastVisit = visits[0].ExitTime
	for i, v := range visits {
		entrances[i] = v.EntranceTime
		p.LastVisit = math.Max(p.LastVisit, v.ExitTime)
	}
	sort.Float64s(entrances)
	p.FirstVisit = entrances[0]

	if len(entrances) < 2 {
		return
	}

	intervals := make([]float64, len(entrances)-1)
	for i := 1; i < len(entrances); i++ {
		intervals[i-1] = unit.FromSeconds(entrances[i] - entrances[i-1])
	}

	p.AvgInterval = stat.Mean(intervals, nil)
	if len(intervals) > 1 {
		p.StdInterval = stat.StdDev(intervals, nil)
	}
	p.MinInterval = floats.Min(intervals)
	p.MaxInterval = floats.Max(intervals)

	// Regularity score (0-1, higher = more regular)
	if p.AvgInterval > 0 {
		cv := p.StdInterval / p.AvgInterval
		p.RegularityScore = 1.0 / (1.0 + cv)
	}

	p.IsPeriodic = p.RegularityScore > 0.8 && p.VisitCount >= 3
	p.IsHabitual = p.VisitCount >= 5 && p.RegularityScore > 0.7
}
