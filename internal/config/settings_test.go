package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	s, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "gemini", s.LLM.Provider)
	assert.Equal(t, "env-key", s.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-flash", s.LLM.Model)
	assert.Equal(t, 3100*time.Millisecond, s.BatchDelay)
	assert.Equal(t, 1500*time.Millisecond, s.Scan.Interval)
	assert.InDelta(t, 0.9, s.Scan.Threshold, 1e-9)
	assert.Nil(t, s.Location)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("llm.api_key", "file-key")
	v.Set("batch.delay", "0s")
	v.Set("research.latitude", 51.5)
	v.Set("research.longitude", -0.12)

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "file-key", s.LLM.APIKey)
	assert.Zero(t, s.BatchDelay)
	require.NotNil(t, s.Location)
	assert.InDelta(t, 51.5, s.Location.Latitude, 1e-9)
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	v := viper.New()
	v.Set("scan.threshold", 1.5)

	_, err := Load(v)
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}
