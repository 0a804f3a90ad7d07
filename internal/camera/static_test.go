package camera

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

func TestStaticSource(t *testing.T) {
	ctx := context.Background()
	first := model.Image{MIMEType: "image/jpeg", Data: []byte{1}}
	s := NewStaticSource(first)

	_, err := s.Snapshot(ctx)
	require.ErrorIs(t, err, common.ErrDeviceAccess, "closed source has no frames")

	require.NoError(t, s.Open(ctx))
	assert.True(t, s.IsOpen())
	got, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := model.Image{MIMEType: "image/png", Data: []byte{2}}
	s.SetFrame(second)
	got, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	require.NoError(t, s.Close())
	assert.False(t, s.IsOpen())
}

func TestStaticSource_OpenError(t *testing.T) {
	s := NewStaticSource(model.Image{})
	s.OpenErr = errors.New("permission denied")

	err := s.Open(context.Background())
	require.ErrorIs(t, err, common.ErrDeviceAccess)
	assert.Contains(t, err.Error(), "permission denied")
	assert.False(t, s.IsOpen())
}
