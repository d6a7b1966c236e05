package sway

import (
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"os"
	"path/filepath"
	"strings"
)

const (
	socketEnv    = "SWAYSOCK"
	socketPrefix = "sway-ipc."
)

var ErrNoSocket = errors.New("sway ipc socket not found")

// SocketPath returns $SWAYSOCK, or the first sway-ipc.* entry in the user's
// runtime directory.
func SocketPath() (string, error) {
	if path := os.Getenv(socketEnv); path != "" {
		return path, nil
	}
	return findSocket(xdg.RuntimeDir)
}

func findSocket(runtimeDir string) (string, error) {
	entries, err := os.ReadDir(runtimeDir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", runtimeDir, errors.Join(ErrNoSocket, err))
	}

	for _, e := range entries {
		if strings.HasPrefix(e.Name(), socketPrefix) {
			return filepath.Join(runtimeDir, e.Name()), nil
		}
	}

	return "", fmt.Errorf("no %s* in %s: %w", socketPrefix, runtimeDir, ErrNoSocket)
}
