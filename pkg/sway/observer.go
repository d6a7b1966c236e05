package sway

import (
	"context"
	"fmt"
	swayipc "github.com/joshuarubin/go-sway"
	"go.uber.org/zap"
	"io"
)

// Observer answers which application has focus. The IPC connection is opened
// on first use and dropped on any error, to be reopened by the next call.
type Observer struct {
	client swayipc.Client
	cancel context.CancelFunc
	log    *zap.SugaredLogger

	// SocketPath overrides socket discovery when set.
	SocketPath string
}

func NewObserver(log *zap.SugaredLogger) *Observer {
	return &Observer{log: log}
}

// Close drops the connection. The client's context is cancelled as well,
// which is what go-sway closes its socket on.
func (o *Observer) Close() error {
	if o.client == nil {
		return nil
	}

	var err error
	if c, ok := o.client.(io.Closer); ok {
		err = c.Close()
	}
	o.cancel()

	o.client = nil
	o.cancel = nil
	return err
}

func (o *Observer) connect() error {
	if o.client != nil {
		return nil
	}

	path := o.SocketPath
	if path == "" {
		var err error
		path, err = SocketPath()
		if err != nil {
			return fmt.Errorf("get socket path: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	client, err := swayipc.New(ctx, swayipc.WithSocketPath(path))
	if err != nil {
		cancel()
		return fmt.Errorf("connect to %s: %w", path, err)
	}

	o.log.Debugf("connected to sway at %s", path)
	o.client = client
	o.cancel = cancel
	return nil
}

// CurrentApplication returns the focused application's identifier, or "" if
// sway is unreachable or nothing is focused.
func (o *Observer) CurrentApplication() string {
	if err := o.connect(); err != nil {
		o.log.Debugf("sway unavailable: %v", err)
		return ""
	}

	tree, err := o.client.GetTree(context.Background())
	if err != nil {
		o.log.Warnf("get sway tree: %v", err)
		_ = o.Close()
		return ""
	}

	focused := findFocused(tree)
	if focused == nil {
		return ""
	}

	return application(focused)
}
