package costfunction_test

import (
	"math"
	"testing"

	"lintang/neuracity/pkg/costfunction"
	"lintang/neuracity/pkg/datastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bounds struct{ drive, walk float64 }

func (b bounds) MaxDriveSpeedKmh() float64 { return b.drive }
func (b bounds) MaxWalkSpeedKmh() float64  { return b.walk }

func segment(lengthM, driveKmh, walkKmh float64) datastructure.Segment {
	return datastructure.Segment{LengthM: lengthM, DriveSpeedKmh: driveKmh, WalkSpeedKmh: walkKmh}
}

func TestCostFunctions(t *testing.T) {
	w := costfunction.DefaultWeights()
	seg := segment(1000, 50, 5)
	p := datastructure.Penalty{Congestion: 0.4, Noise: 0.6, Hazard: 0.8}

	t.Run("drive adds half the hazard to congested travel time", func(t *testing.T) {
		cf := costfunction.NewDrive(w)
		wantTime := 1.0 / (50 * (1 - 0.5*0.4))
		assert.InDelta(t, wantTime, cf.TravelTime(seg, p), 1e-12)
		assert.InDelta(t, wantTime+0.5*0.8, cf.Weight(seg, p), 1e-12)
		assert.Equal(t, datastructure.ModeDrive, cf.Mode())
	})

	t.Run("eco adds weighted congestion", func(t *testing.T) {
		cf := costfunction.NewEco(w)
		wantTime := 1.0 / (50 * (1 - 0.5*0.4))
		assert.InDelta(t, wantTime+0.8*0.4, cf.Weight(seg, p), 1e-12)
	})

	t.Run("quiet walk uses walking speed and noise", func(t *testing.T) {
		cf := costfunction.NewQuietWalk(w)
		assert.InDelta(t, 0.2, cf.TravelTime(seg, p), 1e-12)
		assert.InDelta(t, 0.2+0.6, cf.Weight(seg, p), 1e-12)
	})

	t.Run("distance ignores penalties", func(t *testing.T) {
		cf := costfunction.NewDistance(w)
		assert.Equal(t, 1.0, cf.Weight(seg, p))
		assert.Equal(t, 1.0, cf.HeuristicSpeedKmh(bounds{}))
	})

	t.Run("zero penalties give pure travel time", func(t *testing.T) {
		for _, mode := range datastructure.Modes() {
			cf, err := costfunction.ForMode(mode, w)
			require.NoError(t, err)
			assert.InDelta(t, cf.TravelTime(seg, datastructure.Penalty{}), cf.Weight(seg, datastructure.Penalty{}), 1e-15)
		}
	})
}

func TestCostFunctionsAreTotal(t *testing.T) {
	weird := []datastructure.Segment{
		segment(math.NaN(), 50, 5),
		segment(-10, 50, 5),
		segment(100, 0, 0),
		segment(100, math.Inf(1), math.NaN()),
	}
	penalties := []datastructure.Penalty{
		{Congestion: math.NaN(), Noise: math.NaN(), Hazard: math.NaN()},
		{Congestion: 7, Noise: -3, Hazard: math.Inf(1)},
		{Congestion: 1, Noise: 1, Hazard: 1},
	}

	bad := costfunction.Weights{DriveHazard: -1, EcoCongestion: math.NaN(), QuietNoise: math.Inf(1), CongestionSlowdown: 3}
	for _, w := range []costfunction.Weights{costfunction.DefaultWeights(), bad} {
		for _, mode := range datastructure.Modes() {
			cf, err := costfunction.ForMode(mode, w)
			require.NoError(t, err)
			for _, seg := range weird {
				for _, p := range penalties {
					v := cf.Weight(seg, p)
					assert.False(t, math.IsNaN(v), "mode %s", mode)
					assert.False(t, math.IsInf(v, 0), "mode %s", mode)
					assert.GreaterOrEqual(t, v, 0.0, "mode %s", mode)
				}
			}
		}
	}
}

func TestQuietWalkMonotoneInAlpha(t *testing.T) {
	seg := segment(300, 50, 5)
	p := datastructure.Penalty{Noise: 0.7}

	prev := -1.0
	for _, alpha := range []float64{0, 0.5, 1, 2, 5} {
		w := costfunction.DefaultWeights()
		w.QuietNoise = alpha
		v := costfunction.NewQuietWalk(w).Weight(seg, p)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestHeuristicSpeed(t *testing.T) {
	w := costfunction.DefaultWeights()
	assert.Equal(t, 80.0, costfunction.NewDrive(w).HeuristicSpeedKmh(bounds{drive: 80, walk: 5}))
	assert.Equal(t, 50.0, costfunction.NewEco(w).HeuristicSpeedKmh(bounds{drive: 30, walk: 5}))
	assert.Equal(t, 6.0, costfunction.NewQuietWalk(w).HeuristicSpeedKmh(bounds{drive: 80, walk: 6}))
}

func TestForModeRejectsUnknownMode(t *testing.T) {
	_, err := costfunction.ForMode("teleport", costfunction.DefaultWeights())
	assert.Equal(t, datastructure.CodeInvalidInput, datastructure.ErrorCode(err))
}
