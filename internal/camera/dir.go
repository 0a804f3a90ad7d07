// Package camera provides frame sources for live scanning.
package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// ErrNoFrame is returned when no frame has been produced yet.
var ErrNoFrame = errors.New("no frame available yet")

// DirSource treats a directory as a camera: an external capture tool writes
// still frames into it and the newest image file is the current frame.
type DirSource struct {
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
	dir     string
	latest  string
	// last is the most recent complete frame, served while latest is still
	// being written.
	last model.Image
	mu   sync.Mutex
}

// NewDirSource creates a source over dir. The directory is not touched until Open.
func NewDirSource(dir string, logger *slog.Logger) *DirSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirSource{dir: dir, logger: logger}
}

// Open starts watching the frame directory.
func (d *DirSource) Open(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.watcher != nil {
		return nil
	}

	info, err := os.Stat(d.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDeviceAccess, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", common.ErrDeviceAccess, d.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDeviceAccess, err)
	}
	if err := fsw.Add(d.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("%w: %v", common.ErrDeviceAccess, err)
	}

	d.watcher = fsw
	d.done = make(chan struct{})
	d.latest = newestFrame(d.dir)
	go d.processEvents(fsw, d.done)

	d.logger.Info("Frame directory opened", "dir", d.dir, "latest", d.latest)
	return nil
}

// Snapshot reads the newest frame.
func (d *DirSource) Snapshot(_ context.Context) (model.Image, error) {
	d.mu.Lock()
	path := d.latest
	open := d.watcher != nil
	d.mu.Unlock()

	if !open {
		return model.Image{}, fmt.Errorf("%w: source is closed", common.ErrDeviceAccess)
	}
	if path == "" {
		return model.Image{}, ErrNoFrame
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Image{}, fmt.Errorf("read frame %s: %w", path, err)
	}
	if !settled(path, data) {
		d.mu.Lock()
		last := d.last
		d.mu.Unlock()
		if last.Data == nil {
			return model.Image{}, ErrNoFrame
		}
		d.logger.Debug("Frame still being written, serving previous one", "path", path)
		return last, nil
	}

	img := model.Image{MIMEType: DetectMIME(path, data), Data: data}
	d.mu.Lock()
	d.last = img
	d.mu.Unlock()
	return img, nil
}

// settled reports whether data is a complete read of path: non-empty and
// matching the size on disk after the read.
func settled(path string, data []byte) bool {
	if len(data) == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Size() == int64(len(data))
}

// Close stops watching and waits for the event loop to exit.
func (d *DirSource) Close() error {
	d.mu.Lock()
	fsw, done := d.watcher, d.done
	d.watcher = nil
	d.latest = ""
	d.last = model.Image{}
	d.mu.Unlock()

	if fsw == nil {
		return nil
	}
	err := fsw.Close()
	<-done
	return err
}

func (d *DirSource) processEvents(fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isFrame(event.Name) {
				continue
			}
			// A freshly created file is empty until its first write; a frame
			// renamed into place arrives as a Create with its full size.
			if !event.Has(fsnotify.Write) && !hasData(event.Name) {
				continue
			}
			d.mu.Lock()
			d.latest = event.Name
			d.mu.Unlock()
			d.logger.Debug("New frame", "path", event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			d.logger.Warn("Frame watcher error", "error", err)
		}
	}
}

func newestFrame(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var newest string
	var newestMod int64
	for _, e := range entries {
		if e.IsDir() || !isFrame(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = filepath.Join(dir, e.Name())
			newestMod = mod
		}
	}
	return newest
}

func hasData(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

func isFrame(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}

// DetectMIME picks an image MIME type from the file extension, falling back
// to content sniffing.
func DetectMIME(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	}
	return http.DetectContentType(data)
}
