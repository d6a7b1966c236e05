package hyprland

import (
	"encoding/json"
	"fmt"
	"go.uber.org/zap"
	"net"
)

type Hyprctl struct {
	log *zap.SugaredLogger

	// SocketPath overrides the request socket derived from the environment.
	SocketPath string
}

func NewHyprctl(log *zap.SugaredLogger) *Hyprctl {
	return &Hyprctl{log: log}
}

// ActiveWindowClass returns the class of the focused window, "" when no
// window has focus.
func (c *Hyprctl) ActiveWindowClass() (string, error) {
	conn, err := c.makeRequest("activewindow", "j")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	// hyprland answers "{}" when nothing is focused
	var win activeWindow
	if err := json.NewDecoder(conn).Decode(&win); err != nil {
		return "", fmt.Errorf("unmarshal active window: %w", err)
	}

	return win.application(), nil
}

// CurrentApplication never fails: every request opens a fresh connection,
// so an unreachable compositor simply reports no focus.
func (c *Hyprctl) CurrentApplication() string {
	class, err := c.ActiveWindowClass()
	if err != nil {
		c.log.Debugf("hyprland unavailable: %v", err)
		return ""
	}
	return class
}

func (c *Hyprctl) makeRequest(request string, args string) (net.Conn, error) {
	var conn net.Conn
	var err error
	if c.SocketPath != "" {
		conn, err = dial(c.SocketPath)
	} else {
		conn, err = connect(Hyperctl)
	}
	if err != nil {
		return nil, err
	}

	_, err = conn.Write([]byte(fmt.Sprintf("%s/%s", args, request)))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("write to hyprctl socket: %w", err)
	}

	return conn, nil
}
