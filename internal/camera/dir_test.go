package camera

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
)

func TestDirSourceTracksNewestFrame(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame-001.jpg"), []byte("first"), 0o600))

	src := NewDirSource(dir, nil)
	require.NoError(t, src.Open(context.Background()))

	img, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), img.Data)
	assert.Equal(t, "image/jpeg", img.MIMEType)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame-002.png"), []byte("second"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	require.Eventually(t, func() bool {
		img, err := src.Snapshot(context.Background())
		return err == nil && string(img.Data) == "second"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, src.Close())

	_, err = src.Snapshot(context.Background())
	require.ErrorIs(t, err, common.ErrDeviceAccess)
}

func TestDirSourceEmptyDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := NewDirSource(t.TempDir(), nil)
	require.NoError(t, src.Open(context.Background()))
	defer func() { _ = src.Close() }()

	_, err := src.Snapshot(context.Background())
	require.ErrorIs(t, err, ErrNoFrame)
}

func TestDirSourceMissingDir(t *testing.T) {
	src := NewDirSource(filepath.Join(t.TempDir(), "absent"), nil)
	err := src.Open(context.Background())
	require.ErrorIs(t, err, common.ErrDeviceAccess)
}

func TestDirSourceSkipsUnfinishedFrame(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame-001.jpg"), []byte("first"), 0o600))

	src := NewDirSource(dir, nil)
	require.NoError(t, src.Open(context.Background()))
	defer func() { _ = src.Close() }()

	img, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, "first", string(img.Data))

	next := filepath.Join(dir, "frame-002.jpg")
	f, err := os.Create(next)
	require.NoError(t, err)

	require.Never(t, func() bool {
		img, err := src.Snapshot(context.Background())
		return err != nil || string(img.Data) != "first"
	}, 100*time.Millisecond, 10*time.Millisecond, "an empty new frame must not replace the last complete one")

	_, err = f.Write([]byte("second"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		img, err := src.Snapshot(context.Background())
		return err == nil && string(img.Data) == "second"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDirSourceIgnoresEmptyFrameOnOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame-001.jpg"), nil, 0o600))

	src := NewDirSource(dir, nil)
	require.NoError(t, src.Open(context.Background()))
	defer func() { _ = src.Close() }()

	_, err := src.Snapshot(context.Background())
	require.ErrorIs(t, err, ErrNoFrame)
}

func TestSettled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.jpg")
	require.NoError(t, os.WriteFile(path, []byte("abcdef"), 0o600))

	assert.True(t, settled(path, []byte("abcdef")))
	assert.False(t, settled(path, []byte("abc")), "a short read means the writer is still going")
	assert.False(t, settled(path, nil))
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectMIME("a.JPG", nil))
	assert.Equal(t, "image/png", DetectMIME("x", []byte("\x89PNG\r\n\x1a\n0000")))
}
