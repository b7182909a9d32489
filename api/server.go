// Package api serves stored records and database tables over HTTP.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tevino/abool"

	"github.com/safing/biodb/log"
	"github.com/safing/biodb/metrics"
)

// DefaultListenAddress is used if no address is configured.
const DefaultListenAddress = "127.0.0.1:8817"

// Server is the API server.
type Server struct {
	Address string

	router    *mux.Router
	endpoints map[string]*Endpoint
	server    *http.Server
	running   *abool.AtomicBool
}

// NewServer returns a server with the meta endpoints and the metrics route
// registered.
func NewServer(address string) (*Server, error) {
	if address == "" {
		address = DefaultListenAddress
	}

	s := &Server{
		Address:   address,
		router:    mux.NewRouter(),
		endpoints: make(map[string]*Endpoint),
		running:   abool.New(),
	}
	s.router.Use(LogTracer, RequestLogger)
	s.router.HandleFunc("/metrics", metrics.Handler).Methods(http.MethodGet)

	if err := s.registerMetaEndpoints(); err != nil {
		return nil, err
	}
	if err := s.registerDebugEndpoints(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the root handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Running reports whether the server is listening.
func (s *Server) Running() bool {
	return s.running.IsSet()
}

// Serve listens on the configured address until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Address)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, listener)
}

// ServeListener serves on listener until ctx is canceled.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	if !s.running.SetToIf(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.UnSet()

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			log.Warningf("api: failed to shut down gracefully: %s", err)
		}
	}()

	log.Infof("api: starting to listen on %s", listener.Addr())
	err := s.server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		<-shutdownDone
		return nil
	}
	return err
}
