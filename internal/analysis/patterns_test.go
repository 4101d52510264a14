package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/recurse-backend-go/internal/models"
	"github.com/jengzang/recurse-backend-go/internal/recurse"
)

func visitAt(loc int, entrance float64) models.VisitRecord {
	return models.VisitRecord{CoordIdx: loc, EntranceTime: entrance, ExitTime: entrance + 600, TimeInside: 600}
}

func TestRevisitPatternsPeriodic(t *testing.T) {
	const day = 86400.0
	summaries := []models.RevisitSummary{
		{LocationIndex: 1, X: 1, Y: 2, Revisits: 5, ResidenceTime: 50},
		{LocationIndex: 2, Revisits: 0},
		{LocationIndex: 3, Revisits: 2, ResidenceTime: 20},
	}
	var visits []models.VisitRecord
	for i := 0; i < 5; i++ {
		visits = append(visits, visitAt(1, t0+float64(i)*day))
	}
	visits = append(visits, visitAt(3, t0), visitAt(3, t0+3*day))

	patterns := RevisitPatterns(summaries, visits, recurse.Days)
	require.Len(t, patterns, 2)

	p := patterns[0]
	assert.Equal(t, 1, p.LocationIndex)
	assert.Equal(t, 5, p.VisitCount)
	assert.Equal(t, t0, p.FirstVisit)
	assert.Equal(t, t0+4*day+600, p.LastVisit)
	assert.InDelta(t, 1.0, p.AvgInterval, 1e-9)
	assert.InDelta(t, 0.0, p.StdInterval, 1e-9)
	assert.InDelta(t, 1.0, p.RegularityScore, 1e-9)
	assert.True(t, p.IsPeriodic)
	assert.True(t, p.IsHabitual)
	assert.InDelta(t, math.Log(6)*math.Log(51), p.RevisitStrength, 1e-9)

	q := patterns[1]
	assert.Equal(t, 3, q.LocationIndex)
	assert.InDelta(t, 3.0, q.AvgInterval, 1e-9)
	assert.Zero(t, q.StdInterval)
	assert.Equal(t, 3.0, q.MinInterval)
	assert.Equal(t, 3.0, q.MaxInterval)
	assert.False(t, q.IsPeriodic)
}

func TestRevisitPatternsIrregular(t *testing.T) {
	summaries := []models.RevisitSummary{{LocationIndex: 1, Revisits: 4, ResidenceTime: 4}}
	visits := []models.VisitRecord{visitAt(1, 0), visitAt(1, 60), visitAt(1, 120), visitAt(1, 600)}

	p := RevisitPatterns(summaries, visits, recurse.Mins)[0]
	assert.InDelta(t, 10.0/3.0, p.AvgInterval, 1e-9)
	assert.Equal(t, 1.0, p.MinInterval)
	assert.Equal(t, 8.0, p.MaxInterval)
	assert.Less(t, p.RegularityScore, 0.8)
	assert.False(t, p.IsPeriodic)
}

func TestRevisitPatternsWithoutLog(t *testing.T) {
	summaries := []models.RevisitSummary{{LocationIndex: 1, Revisits: 3, ResidenceTime: 2}}

	patterns := RevisitPatterns(summaries, nil, recurse.Hours)
	require.Len(t, patterns, 1)
	assert.Equal(t, 3, patterns[0].VisitCount)
	assert.Zero(t, patterns[0].AvgInterval)
	assert.Zero(t, patterns[0].RegularityScore)
}
