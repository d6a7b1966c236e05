package kanata

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recorder struct {
	mu     sync.Mutex
	layers []string
}

func (r *recorder) Publish(layer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layers = append(r.layers, layer)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.layers...)
}

func TestEncodeChangeLayer(t *testing.T) {
	msg, err := EncodeChangeLayer("firefox")
	require.NoError(t, err)
	assert.Equal(t, `{"ChangeLayer":{"new":"firefox"}}`, string(msg))
}

func TestSend(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	rec := &recorder{}
	conn := NewConn(client, rec, zaptest.NewLogger(t).Sugar())
	defer conn.Close()

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 256)
		n, _ := server.Read(buf)
		got <- string(buf[:n])
	}()

	require.NoError(t, conn.Send("browser"))
	assert.Equal(t, `{"ChangeLayer":{"new":"browser"}}`, <-got)
	assert.Equal(t, []string{"browser"}, rec.get())
}

type shortConn struct {
	net.Conn
}

func (c shortConn) Write(b []byte) (int, error) {
	return len(b) - 1, nil
}

func TestSendShortWrite(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	conn := NewConn(shortConn{client}, &recorder{}, zaptest.NewLogger(t).Sugar())
	err := conn.Send("main")
	assert.ErrorIs(t, err, ErrShortWrite)
}

func TestReceiveLoop(t *testing.T) {
	client, server := net.Pipe()

	rec := &recorder{}
	conn := NewConn(client, rec, zaptest.NewLogger(t).Sugar())

	done := make(chan error, 1)
	go func() {
		done <- conn.ReceiveLoop(context.Background())
	}()

	_, err := server.Write([]byte(`{"LayerChange":{"new":"browser"}}`))
	require.NoError(t, err)
	// two messages in one write, one message split over two writes
	_, err = server.Write([]byte(`{"LayerChange":{"new":"nav"}}` + "\n" + `{"LayerChange":`))
	require.NoError(t, err)
	_, err = server.Write([]byte(`{"new":"main"}}`))
	require.NoError(t, err)
	require.NoError(t, server.Close())

	err = <-done
	assert.ErrorIs(t, err, io.EOF)
	assert.NotErrorIs(t, err, ErrProtocol)
	assert.Equal(t, []string{"browser", "nav", "main"}, rec.get())
}

func TestReceiveLoopProtocolViolations(t *testing.T) {
	cases := map[string]string{
		"garbage":       `not json at all`,
		"other message": `{"LayerNames":{"names":["main"]}}`,
		"empty object":  `{}`,
		"wrong type":    `{"LayerChange":{"new":42}}`,
		"no layer":      `{"LayerChange":{}}`,
		"empty layer":   `{"LayerChange":{"new":""}}`,
		"folded case":   `{"layerchange":{"NEW":"nav"}}`,
		"duplicate key": `{"LayerChange":{"new":"a","new":"b"}}`,
		"extra key":     `{"LayerChange":{"new":"a","old":"main"}}`,
		"two messages":  `{"LayerChange":{"new":"a"},"LayerNames":{}}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			client, server := net.Pipe()
			defer server.Close()

			rec := &recorder{}
			conn := NewConn(client, rec, zaptest.NewLogger(t).Sugar())

			done := make(chan error, 1)
			go func() {
				done <- conn.ReceiveLoop(context.Background())
			}()

			go server.Write([]byte(payload + "\n"))

			select {
			case err := <-done:
				assert.ErrorIs(t, err, ErrProtocol)
			case <-time.After(5 * time.Second):
				t.Fatal("receive loop did not stop")
			}
			assert.Empty(t, rec.get())
		})
	}
}

func TestConnectRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	_, err = Connect(context.Background(), addr, time.Second, &recorder{}, zaptest.NewLogger(t).Sugar())
	assert.ErrorIs(t, err, ErrRefused)
}

func TestConnect(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	rec := &recorder{}
	conn, err := Connect(context.Background(), l.Addr().String(), time.Second, rec, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer conn.Close()

	server := <-accepted
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- conn.ReceiveLoop(context.Background())
	}()

	_, err = server.Write([]byte(`{"LayerChange":{"new":"firefox"}}`))
	require.NoError(t, err)
	require.NoError(t, server.Close())

	<-done
	assert.Equal(t, []string{"firefox"}, rec.get())
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyDialError(t *testing.T) {
	assert.ErrorIs(t, classifyDialError(&net.OpError{Op: "dial", Err: timeoutError{}}), ErrTimeout)
	assert.ErrorIs(t, classifyDialError(context.DeadlineExceeded), ErrTimeout)

	other := errors.New("no route to host")
	err := classifyDialError(other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrRefused)
}

func TestParseLayerChange(t *testing.T) {
	name, err := ParseLayerChange([]byte(` { "LayerChange" : { "new" : "nav" } } `))
	require.NoError(t, err)
	assert.Equal(t, "nav", name)

	name, err = ParseLayerChange([]byte(`{"LayerChange":{"new":"caf\u00e9"}}`))
	require.NoError(t, err)
	assert.Equal(t, "café", name)

	for _, payload := range []string{
		`{"LayerChange":{"New":"nav"}}`,
		`{"LayerChange":null}`,
		`{"LayerChange":{"new":"nav"}`,
		`["LayerChange"]`,
	} {
		_, err := ParseLayerChange([]byte(payload))
		assert.ErrorIs(t, err, ErrProtocol, payload)
	}
}
