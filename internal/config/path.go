// Package config resolves application settings and file locations.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appName = "eggai"

// ExpandPath expands a leading ~ and $VAR references in path.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return os.ExpandEnv(path)
}

// Dir returns the configuration directory: $XDG_CONFIG_HOME/eggai, falling
// back to ~/.config/eggai.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	return filepath.Join(ExpandPath("~/.config"), appName)
}

// CertDir holds the self-signed server certificate.
func CertDir() string {
	return filepath.Join(Dir(), "certs")
}
