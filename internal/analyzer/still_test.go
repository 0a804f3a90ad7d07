package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
	"github.com/aswin0605itsme-droid/Eggai/internal/predlog"
)

func TestStillCapture(t *testing.T) {
	frame := model.Image{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

	tests := []struct {
		name       string
		batch      string
		img        model.Image
		confidence float64
		wantErr    error
		wantLogged int
	}{
		{name: "aligned", batch: "B1", img: frame, confidence: 0.92, wantLogged: 1},
		{name: "at gate", batch: "B1", img: frame, confidence: 0.8, wantLogged: 1},
		{name: "below gate", batch: "B1", img: frame, confidence: 0.79, wantErr: common.ErrInvalidInput},
		{name: "no batch", batch: "  ", img: frame, confidence: 0.95, wantErr: common.ErrInvalidInput},
		{name: "no frame", batch: "B1", confidence: 0.95, wantErr: common.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeFramePredictor(tt.confidence)
			log := predlog.New()
			s := NewStillScanner(p, log, 0, nil)

			res, _, err := s.Capture(context.Background(), tt.batch, tt.img)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, p.analyzed.Load())
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.SourceLiveScan, res.Entry.Source)
				assert.Equal(t, model.LabelMale, res.Entry.Prediction)
			}
			assert.Equal(t, tt.wantLogged, log.Len())
		})
	}
}
