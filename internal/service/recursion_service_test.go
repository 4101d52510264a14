package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/recurse-backend-go/internal/models"
)

// commute spends two hours a day at home (x=0) and the rest at work (x=100),
// for three days.
func commute() *models.TrajectoryInput {
	const day = 86400.0
	tr := &models.TrajectoryInput{}
	for i := 0; i < 3; i++ {
		base := float64(i) * day
		tr.X = append(tr.X, 100, 0, 0, 100)
		tr.Y = append(tr.Y, 0, 0, 0, 0)
		tr.T = append(tr.T, base, base+3600, base+7200, base+10800)
	}
	return tr
}

func TestComputeAndReadBack(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	result, err := s.recursions.Compute(ctx, models.RecursionRequest{
		Trajectory: commute(),
		Locations:  &models.LocationsInput{X: []float64{0, 100}, Y: []float64{0, 0}},
		Radius:     10,
		TimeUnits:  "hours",
		Verbose:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, result.Revisits)

	detail, err := s.recursions.GetRun(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, "hours", detail.Run.TimeUnits)
	require.Len(t, detail.Summaries, 2)
	assert.Equal(t, 3, detail.Summaries[0].Revisits)
	assert.Len(t, detail.Visits, 7)

	patterns, err := s.recursions.GetPatterns(result.RunID)
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.Equal(t, 2, patterns[0].LocationIndex)

	home := patterns[1]
	assert.Equal(t, 1, home.LocationIndex)
	assert.InDelta(t, 24.0, home.AvgInterval, 1e-6)
	assert.InDelta(t, 3.6, home.TotalDuration, 1e-6)
	assert.True(t, home.IsPeriodic)

	runs, err := s.recursions.ListRuns("", 0, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	require.NoError(t, s.recursions.DeleteRun(result.RunID))
	_, err = s.recursions.GetRun(result.RunID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComputeErrorKinds(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	_, err := s.recursions.Compute(ctx, models.RecursionRequest{Radius: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.recursions.Compute(ctx, models.RecursionRequest{Dataset: "missing", Radius: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.recursions.GetPatterns("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
