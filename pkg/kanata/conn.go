package kanata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"net"
	"syscall"
	"time"
)

const DefaultConnectTimeout = 5 * time.Second

var (
	ErrTimeout    = errors.New("connection to kanata timed out")
	ErrRefused    = errors.New("connection to kanata refused")
	ErrShortWrite = errors.New("short write to kanata")
	ErrProtocol   = errors.New("kanata protocol violation")
)

// Publisher receives every layer name seen on the connection, both the ones
// kanata announces and the ones this client asks for.
type Publisher interface {
	Publish(layer string)
}

type Conn struct {
	conn      net.Conn
	publisher Publisher
	log       *zap.SugaredLogger
}

func Connect(ctx context.Context, addr string, timeout time.Duration, publisher Publisher, log *zap.SugaredLogger) (*Conn, error) {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	log.Infof("connecting to kanata at %s", addr)

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, classifyDialError(err)
	}

	log.Info("connected to kanata")

	return NewConn(conn, publisher, log), nil
}

// NewConn wraps an established connection.
func NewConn(conn net.Conn, publisher Publisher, log *zap.SugaredLogger) *Conn {
	return &Conn{conn: conn, publisher: publisher, log: log}
}

func classifyDialError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: %w", ErrRefused, err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("dial: %w", err)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

// Send asks kanata to switch to the given layer. The layer is published
// before the write so the sync loop sees its own command in order with
// kanata's notifications.
func (c *Conn) Send(name string) error {
	c.log.Infof("telling kanata to change layer to %q", name)
	c.publisher.Publish(name)

	msg, err := EncodeChangeLayer(name)
	if err != nil {
		return err
	}

	n, err := c.conn.Write(msg)
	if n != len(msg) {
		return fmt.Errorf("wrote %d of %d bytes: %w", n, len(msg), errors.Join(ErrShortWrite, err))
	}
	if err != nil {
		return fmt.Errorf("write to kanata: %w", err)
	}

	return nil
}

// ReceiveLoop reads notifications until the connection fails, the context is
// cancelled or kanata sends something it should not.
func (c *Conn) ReceiveLoop(ctx context.Context) error {
	c.log.Debug("kanata reader starting")

	dec := json.NewDecoder(c.conn)

	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var syntaxErr *json.SyntaxError
		switch {
		case errors.As(err, &syntaxErr):
			return fmt.Errorf("decode message: %w: %w", ErrProtocol, err)
		case err != nil:
			return fmt.Errorf("read from kanata: %w", err)
		}

		name, err := ParseLayerChange(raw)
		if err != nil {
			return fmt.Errorf("decode message %s: %w", raw, err)
		}

		c.log.Infof("kanata changed layer to %q", name)
		c.publisher.Publish(name)
	}
}
