// Package morphometry derives geometric egg features from raw measurements.
package morphometry

import (
	"math"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// Empirical constants for the allometric egg shell relations.
const (
	crossPointRatio  = 0.45
	surfaceCoeff     = 4.835
	surfaceExponent  = 0.662
	volumeDivisor    = 4.951
	volumeExponentBy = 0.666
)

// Compute returns the derived features for m. It reports false when the
// long axis or mass is not positive, or any input is not finite.
func Compute(m model.Measurement) (model.DerivedFeatures, bool) {
	if !finite(m.Mass) || !finite(m.LongAxis) || !finite(m.ShortAxis) {
		return model.DerivedFeatures{}, false
	}
	if m.LongAxis <= 0 || m.Mass <= 0 {
		return model.DerivedFeatures{}, false
	}

	crossPoint := m.LongAxis * crossPointRatio
	surfaceArea := surfaceCoeff * math.Pow(m.Mass, surfaceExponent)
	volume := math.Pow(surfaceArea/volumeDivisor, 1/volumeExponentBy)

	return model.DerivedFeatures{
		ShapeIndex:  m.ShortAxis / m.LongAxis,
		Ovality:     (m.LongAxis - crossPoint) / m.LongAxis,
		SurfaceArea: surfaceArea,
		Volume:      volume,
		Density:     m.Mass / volume,
	}, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
