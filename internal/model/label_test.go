package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"male", LabelMale},
		{"Male", LabelMale},
		{" FEMALE ", LabelFemale},
		{"Unknown", LabelUnknown},
		{"", LabelUnknown},
		{"rooster", LabelUnknown},
		{"error", LabelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLabel(tt.in))
		})
	}
}

func TestLabelTitle(t *testing.T) {
	assert.Equal(t, "Male", LabelMale.Title())
	assert.Equal(t, "Female", LabelFemale.Title())
	assert.Equal(t, "Unknown", LabelUnknown.Title())
	assert.Equal(t, "Unknown", Label("").Title())
}

func TestAlignmentBand(t *testing.T) {
	assert.Equal(t, BandPoor, AlignmentScore{Confidence: 0.5}.Band())
	assert.Equal(t, BandFair, AlignmentScore{Confidence: 0.51}.Band())
	assert.Equal(t, BandFair, AlignmentScore{Confidence: 0.8}.Band())
	assert.Equal(t, BandGood, AlignmentScore{Confidence: 0.81}.Band())
}
