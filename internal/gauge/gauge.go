// Package gauge maps a pressure value onto the geometry of the circular
// gauge: stroke offsets for the track and progress arc, and the needle angle.
package gauge

import (
	"math"

	"github.com/Dicklesworthstone/pipegauge/internal/model"
)

const (
	Radius = 80.0
	// MaxFillLength is shorter than Circumference so a full gauge still
	// leaves a gap at the bottom.
	MaxFillLength = 377.0

	BaseNeedleAngle  = 75.0
	BaselinePressure = 78.0
	NeedleGain       = 1.5
)

// Circumference is a float64 variable so every offset derived from it is
// rounded the same way at run time.
var Circumference = 2 * math.Pi * Radius

// Project derives render parameters for pressure. Values outside [0, 100]
// are clamped first.
func Project(pressure float64) model.Gauge {
	p := math.Max(model.PressureMin, math.Min(model.PressureMax, pressure))
	return model.Gauge{
		TrackOffset: Circumference - MaxFillLength,
		ArcOffset:   Circumference - (p/100)*MaxFillLength,
		NeedleAngle: BaseNeedleAngle + (p-BaselinePressure)*NeedleGain,
	}
}

// Filled is the drawn length of the progress arc.
func Filled(g model.Gauge) float64 { return Circumference - g.ArcOffset }

// Cells splits width cells into the filled part of the arc and the part of
// the track still empty. The remaining width-filled-empty cells are the gap
// that stays open even at full pressure.
func Cells(g model.Gauge, width int) (filled, empty int) {
	if width <= 0 {
		return 0, 0
	}
	track := int(math.Round(float64(width) * MaxFillLength / Circumference))
	filled = int(math.Round(float64(width) * Filled(g) / Circumference))
	if filled > track {
		filled = track
	}
	if filled < 0 {
		filled = 0
	}
	return filled, track - filled
}
