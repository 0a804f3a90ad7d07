package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveCall(op, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, op+":"+status)
}

func newTestPredictor(p Provider, opts ...Option) *Predictor {
	return NewPredictor(p, Config{MaxRetries: 2, RetryDelay: time.Millisecond, RateLimit: 6000}, nil, opts...)
}

func structuredReturning(body string) func(context.Context, StructuredRequest) (json.RawMessage, error) {
	return func(context.Context, StructuredRequest) (json.RawMessage, error) {
		return toRawJSON(body)
	}
}

func TestPredictMeasurement(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    model.Label
		wantErr error
	}{
		{"female", `{"predicted_sex":"female"}`, model.LabelFemale, nil},
		{"mixed case", `{"predicted_sex":"Male"}`, model.LabelMale, nil},
		{"missing field", `{}`, model.LabelUnknown, nil},
		{"unrecognized", `{"predicted_sex":"duck"}`, model.LabelUnknown, nil},
		{"malformed", `definitely male`, model.LabelError, common.ErrMalformedResponse},
		{"wrong type", `{"predicted_sex":3}`, model.LabelError, common.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider()
			mock.StructuredFunc = structuredReturning(tt.body)

			got, err := newTestPredictor(mock).PredictMeasurement(context.Background(),
				model.Measurement{Mass: 60.5, LongAxis: 58.2, ShortAxis: 43.5})

			assert.Equal(t, tt.want, got)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 1, mock.CallCount("structured"), "malformed output must not be retried")
				return
			}
			require.NoError(t, err)

			calls := mock.Calls()
			require.Len(t, calls, 1)
			assert.Contains(t, calls[0].Prompt, "Mass=60.5g, Long Axis=58.2mm, Short Axis=43.5mm")
		})
	}
}

func TestPredictMeasurementRetriesTransientFailures(t *testing.T) {
	mock := NewMockProvider()
	attempts := 0
	mock.StructuredFunc = func(context.Context, StructuredRequest) (json.RawMessage, error) {
		attempts++
		if attempts == 1 {
			return nil, &common.RetryableError{Err: common.ErrProviderFailure, Retryable: true}
		}
		return json.RawMessage(`{"predicted_sex":"male"}`), nil
	}

	got, err := newTestPredictor(mock).PredictMeasurement(context.Background(), model.Measurement{Mass: 1, LongAxis: 1})
	require.NoError(t, err)
	assert.Equal(t, model.LabelMale, got)
	assert.Equal(t, 2, attempts)
}

func TestPredictMeasurementProviderFailure(t *testing.T) {
	mock := NewMockProvider()
	mock.StructuredFunc = func(context.Context, StructuredRequest) (json.RawMessage, error) {
		return nil, errors.New("connection reset")
	}

	_, err := newTestPredictor(mock).PredictMeasurement(context.Background(), model.Measurement{Mass: 1, LongAxis: 1})
	require.ErrorIs(t, err, common.ErrProviderFailure)
}

func TestAnalyzeFrame(t *testing.T) {
	mock := NewMockProvider()
	mock.StructuredFunc = structuredReturning(`{"prediction":"Female","analysis_text":"Rounded blunt end."}`)

	got, err := newTestPredictor(mock).AnalyzeFrame(context.Background(), model.Image{MIMEType: "image/jpeg", Data: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, FrameAnalysis{Prediction: model.LabelFemale, AnalysisText: "Rounded blunt end."}, got)
	assert.True(t, mock.Calls()[0].HasImage)
}

func TestCheckAlignmentClamps(t *testing.T) {
	mock := NewMockProvider()
	mock.StructuredFunc = structuredReturning(`{"confidence":1.7,"is_aligned":true}`)

	got, err := newTestPredictor(mock).CheckAlignment(context.Background(), model.Image{Data: []byte{1}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
	assert.True(t, got.Aligned)
}

func TestSimulate(t *testing.T) {
	mock := NewMockProvider()
	mock.StructuredFunc = structuredReturning(`{"prediction":"female","confidence":0.82}`)

	got, err := newTestPredictor(mock).Simulate(context.Background(),
		model.Measurement{Mass: 60, LongAxis: 58, ShortAxis: 43},
		model.DerivedFeatures{ShapeIndex: 0.7414})
	require.NoError(t, err)
	assert.Equal(t, model.LabelFemale, got.Prediction)
	assert.InDelta(t, 0.82, got.Confidence, 1e-9)
	assert.Contains(t, mock.Calls()[0].Prompt, "Shape Index: 0.7414")
}

func TestAskUsesDeepProfile(t *testing.T) {
	mock := NewMockProvider()
	mock.StreamFunc = func(context.Context, StreamRequest) ([]string, error) {
		return []string{"a", "b"}, nil
	}
	p := newTestPredictor(mock)

	s, err := p.Ask(context.Background(), "why?", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, drain(t, s))
	assert.Equal(t, ProfileDeep, mock.Calls()[0].Profile)

	_, err = p.Ask(context.Background(), "why?", false)
	require.NoError(t, err)
	assert.Equal(t, ProfileFast, mock.Calls()[1].Profile)
}

func TestDescribeVideoPrompt(t *testing.T) {
	mock := NewMockProvider()
	_, err := newTestPredictor(mock).DescribeVideo(context.Background(), "Candling eggs at day 7")
	require.NoError(t, err)
	assert.Contains(t, mock.Calls()[0].Prompt, `"Candling eggs at day 7"`)
	assert.Contains(t, mock.Calls()[0].Prompt, "You have not actually seen the video")
}

func TestSearchPlacesPassesLocation(t *testing.T) {
	mock := NewMockProvider()
	var got GroundedRequest
	mock.GroundedFunc = func(_ context.Context, req GroundedRequest) (model.GroundedAnswer, error) {
		got = req
		return model.GroundedAnswer{Text: "ok"}, nil
	}

	_, err := newTestPredictor(mock).SearchPlaces(context.Background(), "hatcheries", model.Coordinate{Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	assert.Equal(t, GroundMaps, got.Source)
	require.NotNil(t, got.Location)
	assert.InDelta(t, 2.0, got.Location.Longitude, 1e-9)
}

func TestObserverRecordsOutcomes(t *testing.T) {
	obs := &recordingObserver{}
	mock := NewMockProvider()
	p := newTestPredictor(mock, WithObserver(obs))

	_, err := p.PredictMeasurement(context.Background(), model.Measurement{Mass: 1, LongAxis: 1})
	require.NoError(t, err)

	s, err := p.StreamImageAnalysis(context.Background(), model.Image{Data: []byte{9}})
	require.NoError(t, err)
	drain(t, s)

	mock.StructuredFunc = structuredReturning("nope")
	_, _ = p.CheckAlignment(context.Background(), model.Image{Data: []byte{1}})

	assert.Equal(t, []string{
		"predict_measurement:success",
		"analyze_image:success",
		"check_alignment:malformed",
	}, obs.calls)
}

func drain(t *testing.T, s Stream) []string {
	t.Helper()
	defer func() { _ = s.Close() }()
	var out []string
	for {
		frag, err := s.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, frag)
	}
}
