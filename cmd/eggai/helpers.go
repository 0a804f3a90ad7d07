package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aswin0605itsme-droid/Eggai/internal/camera"
	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/config"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

// writeFile creates path and fills it with write.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(config.ExpandPath(path))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// readImage loads an image file and detects its MIME type.
func readImage(path string) (model.Image, error) {
	path = config.ExpandPath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return model.Image{}, common.InvalidInput("Please select an image to analyze.")
	}
	return model.Image{MIMEType: camera.DetectMIME(filepath.Base(path), data), Data: data}, nil
}
