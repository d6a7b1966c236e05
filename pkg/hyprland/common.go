package hyprland

import (
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"net"
	"os"
	"path/filepath"
)

var ErrNotRunning = errors.New("hyprland might not be running")

const signatureEnv = "HYPRLAND_INSTANCE_SIGNATURE"

func Running() bool {
	return os.Getenv(signatureEnv) != ""
}

func connect(sock socketType) (net.Conn, error) {
	socketPath, err := getSocketPath(sock)
	if err != nil {
		return nil, fmt.Errorf("get socket path: %w", err)
	}

	return dial(socketPath)
}

func dial(socketPath string) (net.Conn, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return conn, nil
}

type socketType int

const (
	Hyperctl socketType = iota
)

func getSocketPath(sock socketType) (string, error) {
	signature := os.Getenv(signatureEnv)
	if signature == "" {
		return "", fmt.Errorf("%s is not set, %w", signatureEnv, ErrNotRunning)
	}

	var name string
	switch sock {
	case Hyperctl:
		name = ".socket.sock"
	default:
		return "", fmt.Errorf("unknown socket type: %d", sock)
	}

	return instanceDir(xdg.RuntimeDir, signature) + "/" + name, nil
}

// Hyprland 0.40 moved its sockets from /tmp/hypr to $XDG_RUNTIME_DIR/hypr.
func instanceDir(runtimeDir, signature string) string {
	dir := filepath.Join(runtimeDir, "hypr", signature)
	if _, err := os.Stat(dir); err == nil {
		return dir
	}
	return filepath.Join("/tmp/hypr", signature)
}
