package gauge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectEndpoints(t *testing.T) {
	empty := Project(0)
	assert.Equal(t, Circumference, empty.ArcOffset)
	assert.InDelta(t, 502.4, Circumference, 0.1)

	full := Project(100)
	assert.Equal(t, Circumference-MaxFillLength, full.ArcOffset)
	assert.Equal(t, full.TrackOffset, full.ArcOffset, "full arc reaches the end of the track")
	assert.Greater(t, full.ArcOffset, 0.0, "arc must not close at full pressure")

	for _, g := range []float64{empty.ArcOffset, full.ArcOffset, empty.NeedleAngle, full.NeedleAngle} {
		assert.False(t, math.IsInf(g, 0) || math.IsNaN(g))
	}
}

func TestProjectNeedleBaseline(t *testing.T) {
	assert.Equal(t, 75.0, Project(78).NeedleAngle)
	assert.Equal(t, 76.5, Project(79).NeedleAngle)
	assert.Equal(t, 75.0-78*1.5, Project(0).NeedleAngle)
	assert.Equal(t, 75.0+22*1.5, Project(100).NeedleAngle)
}

func TestProjectTrackIsConstant(t *testing.T) {
	for _, p := range []float64{0, 33.3, 78, 100} {
		assert.Equal(t, Circumference-MaxFillLength, Project(p).TrackOffset)
	}
}

func TestProjectClampsInput(t *testing.T) {
	assert.Equal(t, Project(100), Project(140))
	assert.Equal(t, Project(0), Project(-5))
}

func TestProjectMonotonic(t *testing.T) {
	prev := Project(0)
	for p := 1.0; p <= 100; p++ {
		cur := Project(p)
		assert.Less(t, cur.ArcOffset, prev.ArcOffset)
		assert.Greater(t, cur.NeedleAngle, prev.NeedleAngle)
		prev = cur
	}
}

func TestCells(t *testing.T) {
	tests := []struct {
		name      string
		pressure  float64
		width     int
		wantFill  int
		wantEmpty int
	}{
		{"empty", 0, 40, 0, 30},
		{"full leaves gap", 100, 40, 30, 0},
		{"half", 50, 40, 15, 15},
		{"zero width", 50, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, e := Cells(Project(tt.pressure), tt.width)
			assert.Equal(t, tt.wantFill, f)
			assert.Equal(t, tt.wantEmpty, e)
		})
	}
}
