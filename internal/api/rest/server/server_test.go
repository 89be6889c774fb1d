package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLayer opens a real listener and remembers its address so the
// test can dial the ephemeral port.
type recordingLayer struct {
	addr chan string
}

func (l *recordingLayer) Listen(protocol, addr string) (net.Listener, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	l.addr <- listener.Addr().String()
	return listener, nil
}

func TestHTTPServer_StartAndStop(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	srv := NewHTTPServer(handler, "127.0.0.1:0")
	layer := &recordingLayer{addr: make(chan string, 1)}

	done := make(chan error, 1)
	go func() {
		done <- srv.Start(layer)
	}()

	addr := <-layer.addr

	res, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPServer_Address(t *testing.T) {
	srv := NewHTTPServer(http.NewServeMux(), "127.0.0.1:8443")
	assert.Equal(t, "127.0.0.1:8443", srv.Address())
}

func TestHTTPServer_Start_ListenError(t *testing.T) {
	srv := NewHTTPServer(http.NewServeMux(), "invalid-address")

	err := srv.Start(failingLayer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

type failingLayer struct{}

func (failingLayer) Listen(protocol, addr string) (net.Listener, error) {
	return nil, net.UnknownNetworkError(protocol)
}
