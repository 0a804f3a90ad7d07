package morphometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

func TestCompute(t *testing.T) {
	f, ok := Compute(model.Measurement{Mass: 60, LongAxis: 58, ShortAxis: 43})
	require.True(t, ok)

	assert.InDelta(t, 0.741379, f.ShapeIndex, 1e-5)
	assert.InDelta(t, 0.55, f.Ovality, 1e-9)
	assert.InDelta(t, 72.6997, f.SurfaceArea, 1e-3)
	assert.InDelta(t, 56.4952, f.Volume, 1e-3)
	assert.InDelta(t, 1.06204, f.Density, 1e-4)
}

func TestComputeMatchesFormulae(t *testing.T) {
	m := model.Measurement{Mass: 55.3, LongAxis: 56.1, ShortAxis: 42.7}
	f, ok := Compute(m)
	require.True(t, ok)

	// Operands are variables so the expected values round like the runtime
	// arithmetic does, not like exact constant folding.
	mass, long, short := m.Mass, m.LongAxis, m.ShortAxis
	sa := 4.835 * math.Pow(mass, 0.662)
	vol := math.Pow(sa/4.951, 1/0.666)
	assert.Equal(t, short/long, f.ShapeIndex)
	assert.Equal(t, (long-long*0.45)/long, f.Ovality)
	assert.Equal(t, sa, f.SurfaceArea)
	assert.Equal(t, vol, f.Volume)
	assert.Equal(t, mass/vol, f.Density)
}

func TestComputeUndefined(t *testing.T) {
	tests := []struct {
		name string
		in   model.Measurement
	}{
		{"zero long axis", model.Measurement{Mass: 60, LongAxis: 0, ShortAxis: 43}},
		{"zero mass", model.Measurement{Mass: 0, LongAxis: 58, ShortAxis: 43}},
		{"negative mass", model.Measurement{Mass: -1, LongAxis: 58, ShortAxis: 43}},
		{"nan short axis", model.Measurement{Mass: 60, LongAxis: 58, ShortAxis: math.NaN()}},
		{"inf long axis", model.Measurement{Mass: 60, LongAxis: math.Inf(1), ShortAxis: 43}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := Compute(tt.in)
			assert.False(t, ok)
			assert.Equal(t, model.DerivedFeatures{}, f)
		})
	}
}
