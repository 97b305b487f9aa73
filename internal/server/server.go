// Package server exposes the feedback REST API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bobmcallan/carfeed/internal/app"
	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
)

// Server serves the feedback API for one App.
type Server struct {
	app      *app.App
	feedback interfaces.FeedbackService
	logger   *common.Logger
	http     *http.Server
}

// NewServer builds the routes and middleware for a.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:      a,
		feedback: a.FeedbackService,
		logger:   a.Logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.http = &http.Server{
		Addr:              net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port)),
		Handler:           applyMiddleware(mux, a.Logger, a.Config),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Handler is the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// Start listens until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("Feedback API listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
