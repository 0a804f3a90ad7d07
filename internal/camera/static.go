package camera

import (
	"context"
	"fmt"
	"sync"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// StaticSource serves a fixed frame until SetFrame replaces it. It stands in
// for a camera in the demo and in tests.
type StaticSource struct {
	OpenErr error
	frame   model.Image
	open    bool
	mu      sync.Mutex
}

// NewStaticSource creates a source serving frame.
func NewStaticSource(frame model.Image) *StaticSource {
	return &StaticSource{frame: frame}
}

// Open marks the source open, or returns OpenErr when set.
func (s *StaticSource) Open(_ context.Context) error {
	if s.OpenErr != nil {
		return fmt.Errorf("%w: %v", common.ErrDeviceAccess, s.OpenErr)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	return nil
}

// Snapshot returns the frame.
func (s *StaticSource) Snapshot(_ context.Context) (model.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return model.Image{}, fmt.Errorf("%w: source is closed", common.ErrDeviceAccess)
	}
	return s.frame, nil
}

// SetFrame replaces the served frame.
func (s *StaticSource) SetFrame(frame model.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
}

// IsOpen reports whether the source is open.
func (s *StaticSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Close marks the source closed.
func (s *StaticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}
