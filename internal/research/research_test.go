package research

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/llm"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

func newOrchestrator(mock *llm.MockProvider, loc Locator) *Orchestrator {
	p := llm.NewPredictor(mock, llm.Config{MaxRetries: 1, RetryDelay: time.Millisecond, RateLimit: 6000}, nil)
	return New(p, loc, nil)
}

var here = &model.Coordinate{Latitude: 52.52, Longitude: 13.405}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"think", ModeThink, false},
		{" WEB ", ModeWeb, false},
		{"Maps", ModeMaps, false},
		{"video", ModeVideo, false},
		{"chat", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryRoutesByMode(t *testing.T) {
	tests := []struct {
		mode        Mode
		wantKind    string
		wantProfile llm.Profile
		wantSource  llm.GroundingSource
	}{
		{ModeThink, "stream", llm.ProfileDeep, ""},
		{ModeVideo, "stream", llm.ProfileFast, ""},
		{ModeWeb, "grounded", "", llm.GroundWeb},
		{ModeMaps, "grounded", "", llm.GroundMaps},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			mock := llm.NewMockProvider()
			o := newOrchestrator(mock, StaticLocator{Coordinate: here})
			require.NoError(t, o.SetMode(tt.mode))

			var fragments []string
			res, err := o.Query(context.Background(), "hatcheries near me", func(s string) { fragments = append(fragments, s) })
			require.NoError(t, err)
			assert.Equal(t, tt.mode, res.Mode)
			assert.NotEmpty(t, res.Text)

			calls := mock.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantKind, calls[0].Kind)
			if tt.wantKind == "stream" {
				assert.Equal(t, tt.wantProfile, calls[0].Profile)
				assert.Equal(t, res.Text, strings.Join(fragments, ""))
			} else {
				assert.Equal(t, tt.wantSource, calls[0].Source)
				assert.Empty(t, fragments)
			}
			assert.Same(t, res, o.Last())
		})
	}
}

func TestVideoPromptCarriesTopic(t *testing.T) {
	mock := llm.NewMockProvider()
	o := newOrchestrator(mock, nil)
	require.NoError(t, o.SetMode(ModeVideo))

	_, err := o.Query(context.Background(), "ethical poultry farming", nil)
	require.NoError(t, err)
	assert.Contains(t, mock.Calls()[0].Prompt, "ethical poultry farming")
}

func TestMapsWithoutLocationIssuesNoCall(t *testing.T) {
	tests := []struct {
		name string
		loc  Locator
	}{
		{"no locator", nil},
		{"unset coordinate", StaticLocator{}},
		{"out of range", StaticLocator{Coordinate: &model.Coordinate{Latitude: 123}}},
		{"denied", LocatorFunc(func(context.Context) (model.Coordinate, error) {
			return model.Coordinate{}, errors.New("permission denied")
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider()
			o := newOrchestrator(mock, tt.loc)
			require.NoError(t, o.SetMode(ModeMaps))

			_, err := o.Query(context.Background(), "feed stores", nil)
			require.ErrorIs(t, err, common.ErrGeolocation)
			assert.Contains(t, common.UserMessage(err), "Location access denied")
			assert.Zero(t, mock.CallCount(""))
		})
	}
}

func TestMapsPassesLocation(t *testing.T) {
	mock := llm.NewMockProvider()
	var got *model.Coordinate
	mock.GroundedFunc = func(_ context.Context, req llm.GroundedRequest) (model.GroundedAnswer, error) {
		got = req.Location
		return model.GroundedAnswer{Text: "Two stores.", Citations: []model.Citation{{Title: "Farm Supply"}}}, nil
	}
	o := newOrchestrator(mock, StaticLocator{Coordinate: here})
	require.NoError(t, o.SetMode(ModeMaps))

	res, err := o.Query(context.Background(), "feed stores", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *here, *got)
	assert.Equal(t, "Two stores.", res.Text)
	require.Len(t, res.Citations, 1)
	assert.Empty(t, res.Citations[0].URI)
}

func TestEmptyPrompt(t *testing.T) {
	mock := llm.NewMockProvider()
	o := newOrchestrator(mock, nil)
	_, err := o.Query(context.Background(), "   ", nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Zero(t, mock.CallCount(""))
}

func TestSetModeResetsResult(t *testing.T) {
	o := newOrchestrator(llm.NewMockProvider(), nil)
	_, err := o.Query(context.Background(), "incubation temperature", nil)
	require.NoError(t, err)
	require.NotNil(t, o.Last())

	require.NoError(t, o.SetMode(ModeWeb))
	assert.Nil(t, o.Last())
	assert.Equal(t, ModeWeb, o.Mode())

	require.ErrorIs(t, o.SetMode("chat"), common.ErrInvalidInput)
	assert.Equal(t, ModeWeb, o.Mode())
}

func TestSecondQueryIsBusy(t *testing.T) {
	mock := llm.NewMockProvider()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var calls atomic.Int32
	mock.StreamFunc = func(context.Context, llm.StreamRequest) ([]string, error) {
		calls.Add(1)
		once.Do(func() { close(entered) })
		<-release
		return []string{"done"}, nil
	}
	o := newOrchestrator(mock, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := o.Query(context.Background(), "first", nil)
		errCh <- err
	}()
	<-entered

	_, err := o.Query(context.Background(), "second", nil)
	require.ErrorIs(t, err, common.ErrBusy)

	close(release)
	require.NoError(t, <-errCh)

	assert.Equal(t, int32(1), calls.Load(), "a busy query must not reach the provider")

	_, err = o.Query(context.Background(), "third", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestProviderFailureIsReported(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.GroundedFunc = func(context.Context, llm.GroundedRequest) (model.GroundedAnswer, error) {
		return model.GroundedAnswer{}, common.ErrProviderFailure
	}
	o := newOrchestrator(mock, nil)
	require.NoError(t, o.SetMode(ModeWeb))

	_, err := o.Query(context.Background(), "egg candling", nil)
	require.ErrorIs(t, err, common.ErrProviderFailure)
	assert.Equal(t, "An error occurred. Please try again.", common.UserMessage(err))
	assert.Nil(t, o.Last())
}
