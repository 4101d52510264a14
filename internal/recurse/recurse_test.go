package recurse

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

func at(secs float64) time.Time {
	return epoch.Add(time.Duration(secs * float64(time.Second)))
}

func sample(x, y, secs float64, track string) Sample {
	return Sample{X: x, Y: y, T: at(secs), TrackID: track}
}

func seconds(from, to time.Time) float64 {
	return to.Sub(from).Seconds()
}

func TestComputePassThrough(t *testing.T) {
	samples := []Sample{
		sample(-20, 0, 0, "a"),
		sample(-5, 0, 1, "a"),
		sample(0, 0, 2, "a"),
		sample(5, 0, 3, "a"),
		sample(20, 0, 4, "a"),
	}

	res, err := Compute(context.Background(), samples, []Location{{}}, Params{
		Radius:    10,
		TimeUnits: Secs,
		Verbose:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, res.Revisits)
	assert.InDelta(t, 8.0/3.0, res.ResidenceTime[0], 1e-6)
	assert.Equal(t, 10.0, res.Radius)

	require.Len(t, res.Visits, 1)
	v := res.Visits[0]
	assert.Equal(t, "a", v.TrackID)
	assert.Equal(t, 1, v.LocationIndex)
	assert.Equal(t, 1, v.VisitIndex)
	assert.InDelta(t, 2.0/3.0, seconds(epoch, v.EntranceTime), 1e-6)
	assert.InDelta(t, 10.0/3.0, seconds(epoch, v.ExitTime), 1e-6)
	assert.InDelta(t, 8.0/3.0, v.TimeInside, 1e-6)
	assert.Nil(t, v.TimeSinceLastVisit)

	rows, cols := res.Distances.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 20.0, res.Distances.At(0, 0))
}

// excursion leaves the disk around the origin between t=10.5 and t=11.5.
func excursion() []Sample {
	return []Sample{
		sample(0, 0, 0, "a"),
		sample(5, 0, 10, "a"),
		sample(15, 0, 11, "a"),
		sample(5, 0, 12, "a"),
		sample(0, 0, 20, "a"),
	}
}

func TestComputeMergesShortExcursion(t *testing.T) {
	res, err := Compute(context.Background(), excursion(), []Location{{}}, Params{
		Radius:    10,
		Threshold: 5,
		TimeUnits: Secs,
		Verbose:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, res.Revisits)
	assert.InDelta(t, 20, res.ResidenceTime[0], 1e-6)

	require.Len(t, res.Visits, 1)
	v := res.Visits[0]
	assert.InDelta(t, 20, v.TimeInside, 1e-6)
	assert.True(t, v.EntranceTime.Equal(at(0)))
	assert.True(t, v.ExitTime.Equal(at(20)))
	assert.Nil(t, v.TimeSinceLastVisit)
}

func TestComputeSplitsLongExcursion(t *testing.T) {
	res, err := Compute(context.Background(), excursion(), []Location{{}}, Params{
		Radius:    10,
		Threshold: 0.5,
		TimeUnits: Secs,
		Verbose:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2}, res.Revisits)
	assert.InDelta(t, 19, res.ResidenceTime[0], 1e-6)

	require.Len(t, res.Visits, 2)
	first, second := res.Visits[0], res.Visits[1]

	assert.Equal(t, 1, first.VisitIndex)
	assert.InDelta(t, 10.5, first.TimeInside, 1e-6)
	assert.InDelta(t, 10.5, seconds(epoch, first.ExitTime), 1e-6)
	assert.Nil(t, first.TimeSinceLastVisit)

	assert.Equal(t, 2, second.VisitIndex)
	assert.InDelta(t, 11.5, seconds(epoch, second.EntranceTime), 1e-6)
	assert.InDelta(t, 8.5, second.TimeInside, 1e-6)
	require.NotNil(t, second.TimeSinceLastVisit)
	assert.InDelta(t, 1, *second.TimeSinceLastVisit, 1e-6)
}

func TestComputeMergeWithoutVerbose(t *testing.T) {
	res, err := Compute(context.Background(), excursion(), []Location{{}}, Params{
		Radius:    10,
		Threshold: 5,
		TimeUnits: Secs,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, res.Revisits)
	assert.InDelta(t, 20, res.ResidenceTime[0], 1e-6)
	assert.Nil(t, res.Visits)
}

func TestComputeConvertsTimeUnits(t *testing.T) {
	// threshold of one minute merges the one second excursion
	res, err := Compute(context.Background(), excursion(), []Location{{}}, Params{
		Radius:    10,
		Threshold: 1,
		TimeUnits: Mins,
		Verbose:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, Mins, res.TimeUnits)
	assert.Equal(t, []int{1}, res.Revisits)
	assert.InDelta(t, 20.0/60.0, res.ResidenceTime[0], 1e-9)
	require.Len(t, res.Visits, 1)
	assert.InDelta(t, 20.0/60.0, res.Visits[0].TimeInside, 1e-9)
	assert.InDelta(t, 20, Mins.ToSeconds(res.ResidenceTime[0]), 1e-6)
}

func TestComputeUnknownUnitFallsBackToSeconds(t *testing.T) {
	res, err := Compute(context.Background(), excursion(), []Location{{}}, Params{
		Radius:    10,
		Threshold: 5,
		TimeUnits: "weeks",
	})
	require.NoError(t, err)

	assert.Equal(t, Secs, res.TimeUnits)
	assert.InDelta(t, 20, res.ResidenceTime[0], 1e-6)
}

func TestComputeTrackBoundary(t *testing.T) {
	samples := []Sample{
		sample(0, 0, 0, "a"),
		sample(1, 0, 1, "a"),
		sample(0, 1, 5, "b"),
		sample(1, 1, 6, "b"),
	}

	// The gap between tracks is shorter than the threshold but must not merge.
	res, err := Compute(context.Background(), samples, []Location{{}}, Params{
		Radius:    10,
		Threshold: 100,
		TimeUnits: Secs,
		Verbose:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2}, res.Revisits)
	assert.InDelta(t, 2, res.ResidenceTime[0], 1e-9)

	require.Len(t, res.Visits, 2)
	assert.Equal(t, "a", res.Visits[0].TrackID)
	assert.True(t, res.Visits[0].EntranceTime.Equal(at(0)))
	assert.True(t, res.Visits[0].ExitTime.Equal(at(1)))
	assert.Equal(t, "b", res.Visits[1].TrackID)
	assert.True(t, res.Visits[1].EntranceTime.Equal(at(5)))
	assert.True(t, res.Visits[1].ExitTime.Equal(at(6)))
	assert.Nil(t, res.Visits[1].TimeSinceLastVisit)
}

func TestComputeTrackBoundaryResetsExitTime(t *testing.T) {
	samples := []Sample{
		sample(0, 0, 0, "a"),
		sample(20, 0, 1, "a"),
		sample(20, 0, 2, "b"),
		sample(0, 0, 3, "b"),
	}

	res, err := Compute(context.Background(), samples, []Location{{}}, Params{
		Radius:    10,
		Threshold: 100,
		TimeUnits: Secs,
		Verbose:   true,
	})
	require.NoError(t, err)

	// The exit in track a must not make the entry in track b a continuation.
	assert.Equal(t, []int{2}, res.Revisits)
	require.Len(t, res.Visits, 2)
	assert.Nil(t, res.Visits[1].TimeSinceLastVisit)
	assert.InDelta(t, 0.5, res.Visits[0].TimeInside, 1e-6)
	assert.InDelta(t, 0.5, res.Visits[1].TimeInside, 1e-6)
}

func TestComputeMultipleLocations(t *testing.T) {
	res, err := Compute(context.Background(), excursion(), []Location{{}, {X: 100}, {X: 15}}, Params{
		Radius:    2,
		TimeUnits: Secs,
		Verbose:   true,
	})
	require.NoError(t, err)

	// the origin is left at t=4 and re-entered at t=16.8
	assert.Equal(t, []int{2, 0, 1}, res.Revisits)
	assert.Equal(t, 0.0, res.ResidenceTime[1])
	assert.InDelta(t, 0.4, res.ResidenceTime[2], 1e-6)

	require.Len(t, res.Visits, 3)
	assert.Equal(t, 1, res.Visits[0].LocationIndex)
	assert.Equal(t, 2, res.Visits[1].VisitIndex)
	require.NotNil(t, res.Visits[1].TimeSinceLastVisit)
	assert.InDelta(t, 12.8, *res.Visits[1].TimeSinceLastVisit, 1e-6)
	assert.Equal(t, 3, res.Visits[2].LocationIndex)
	assert.Equal(t, 15.0, res.Visits[2].X)
	assert.InDelta(t, 10.8, seconds(epoch, res.Visits[2].EntranceTime), 1e-6)
}

func TestComputeLogGrowth(t *testing.T) {
	// in and out of the disk around the origin five times
	var samples []Sample
	for i := 0; i < 10; i++ {
		x := 0.0
		if i%2 == 1 {
			x = 20
		}
		samples = append(samples, sample(x, 0, float64(i*10), "a"))
	}

	res, err := Compute(context.Background(), samples, []Location{{}}, Params{
		Radius:       10,
		TimeUnits:    Secs,
		Verbose:      true,
		LogIncrement: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{5}, res.Revisits)
	require.Len(t, res.Visits, 5)
	for i, v := range res.Visits {
		assert.Equal(t, i+1, v.VisitIndex)
	}
}

func TestComputeSelfLocations(t *testing.T) {
	samples := excursion()
	res, err := Compute(context.Background(), samples, SelfLocations(samples), Params{
		Radius:    1,
		TimeUnits: Secs,
	})
	require.NoError(t, err)

	require.Len(t, res.Revisits, len(samples))
	// (5,0) is visited twice, once at t=10 and again at t=12.
	assert.Equal(t, 2, res.Revisits[1])
	assert.Equal(t, 2, res.Revisits[3])
	assert.Equal(t, 1, res.Revisits[2])
}

func TestComputeValidation(t *testing.T) {
	ctx := context.Background()
	samples := excursion()

	_, err := Compute(ctx, nil, []Location{{}}, Params{Radius: 1})
	assert.ErrorIs(t, err, ErrEmptyTrajectory)

	_, err = Compute(ctx, samples, []Location{{}}, Params{Radius: 0})
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = Compute(ctx, samples, []Location{{}}, Params{Radius: 1, Threshold: -1})
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	res, err := Compute(ctx, samples, nil, Params{Radius: 1, Verbose: true})
	require.NoError(t, err)
	assert.Empty(t, res.Revisits)
	assert.Nil(t, res.Distances)
	assert.Empty(t, res.Visits)
}

func TestComputeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Compute(ctx, excursion(), []Location{{}}, Params{Radius: 10})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestComputeCancelledBetweenLocations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int
	res, err := Compute(ctx, excursion(), []Location{{}, {X: 5}, {X: 15}}, Params{
		Radius: 10,
		OnProgress: func(done, total int) {
			calls++
			assert.Equal(t, 3, total)
			cancel()
		},
	})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

// randomWalk builds a multi-track trajectory with irregular sampling.
func randomWalk(rng *rand.Rand, n int) []Sample {
	samples := make([]Sample, 0, n)
	x, y, secs := 0.0, 0.0, 0.0
	track := 0
	for i := 0; i < n; i++ {
		if i > 0 && rng.Intn(40) == 0 {
			track++
			secs += 500
		}
		x += rng.NormFloat64() * 3
		y += rng.NormFloat64() * 3
		secs += 1 + rng.Float64()*10
		samples = append(samples, sample(x, y, secs, string(rune('a'+track%26))+string(rune('0'+track/26))))
	}
	return samples
}

func TestComputeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	samples := randomWalk(rng, 400)
	locations := SelfLocations(samples[:50])
	total := TotalDuration(samples).Seconds()

	for _, threshold := range []float64{0, 5, 60} {
		res, err := Compute(context.Background(), samples, locations, Params{
			Radius:    4,
			Threshold: threshold,
			TimeUnits: Secs,
			Verbose:   true,
		})
		require.NoError(t, err)

		visits := 0
		for i := range locations {
			assert.GreaterOrEqual(t, res.Revisits[i], 0)
			assert.GreaterOrEqual(t, res.ResidenceTime[i], 0.0)
			assert.LessOrEqual(t, res.ResidenceTime[i], total+1e-6)
			// locations are trajectory points, so each is visited at least once
			assert.GreaterOrEqual(t, res.Revisits[i], 1)
			visits += res.Revisits[i]
		}

		require.Len(t, res.Visits, visits)
		for _, v := range res.Visits {
			assert.False(t, v.EntranceTime.After(v.ExitTime), "visit %+v", v)
			assert.GreaterOrEqual(t, v.TimeInside, 0.0)
		}
	}
}

func TestComputeParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	samples := randomWalk(rng, 300)
	locations := SelfLocations(samples[:60])

	params := Params{Radius: 5, Threshold: 20, TimeUnits: Mins, Verbose: true}
	seq, err := Compute(context.Background(), samples, locations, params)
	require.NoError(t, err)

	params.Workers = 4
	var progress []int
	done := make(chan int, len(locations))
	params.OnProgress = func(d, total int) { done <- d }
	par, err := Compute(context.Background(), samples, locations, params)
	require.NoError(t, err)
	close(done)
	for d := range done {
		progress = append(progress, d)
	}

	assert.Len(t, progress, len(locations))
	if diff := cmp.Diff(seq.Revisits, par.Revisits); diff != "" {
		t.Errorf("revisits mismatch (-seq +par):\n%s", diff)
	}
	if diff := cmp.Diff(seq.ResidenceTime, par.ResidenceTime); diff != "" {
		t.Errorf("residence time mismatch (-seq +par):\n%s", diff)
	}
	if diff := cmp.Diff(seq.Visits, par.Visits); diff != "" {
		t.Errorf("visits mismatch (-seq +par):\n%s", diff)
	}
}

func TestTotalDuration(t *testing.T) {
	samples := []Sample{
		sample(0, 0, 0, "a"),
		sample(0, 0, 4, "a"),
		sample(0, 0, 100, "b"),
		sample(0, 0, 103, "b"),
	}
	assert.Equal(t, 7*time.Second, TotalDuration(samples))
}
