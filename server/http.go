package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

type httpServer struct {
	inner http.Server

	name string
}

// newHTTPServer creates a server for the dashboard API
func newHTTPServer(name string, handler http.Handler) *httpServer {
	const (
		readHeaderTimeout = 20 * time.Second
		readTimeout       = 20 * time.Second
		writeTimeout      = 20 * time.Second
	)

	return &httpServer{
		inner: http.Server{
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,

			Handler: handler,
		},

		name: name,
	}
}

// newProxyServer creates a server for the intercepting proxy.
// No read or write timeout: tunnels and streamed bodies may be long-lived.
func newProxyServer(name string, handler http.Handler) *httpServer {
	const readHeaderTimeout = 20 * time.Second

	return &httpServer{
		inner: http.Server{
			ReadHeaderTimeout: readHeaderTimeout,

			Handler: handler,
		},

		name: name,
	}
}

func (s *httpServer) String() string {
	return s.name
}

// Serve blocks until the listener fails or ctx is done
func (s *httpServer) Serve(ctx context.Context, l net.Listener) error {
	go func() {
		<-ctx.Done()

		s.inner.Close()
	}()

	err := s.inner.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// Shutdown stops accepting connections and waits for active requests
func (s *httpServer) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
