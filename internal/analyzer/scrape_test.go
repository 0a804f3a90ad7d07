package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

func TestScrapeLabel(t *testing.T) {
	tests := []struct {
		text string
		want model.Label
	}{
		{"...therefore the prediction is Female.", model.LabelFemale},
		{"Prediction: MALE", model.LabelMale},
		{"The egg is likely female, though a male is possible.", model.LabelFemale},
		{"Males and females differ.", model.LabelUnknown},
		{"No clear signal.", model.LabelUnknown},
		{"", model.LabelUnknown},
		{"female", model.LabelFemale},
		{"**Male**", model.LabelMale},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ScrapeLabel(tt.text))
		})
	}
}
