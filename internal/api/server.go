// Package api serves the project and task operations over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/taskyard/internal/recurrence"
	"github.com/zulandar/taskyard/internal/store"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Store       store.Store
	Generator   *recurrence.Generator
	Port        int
	HorizonDays int // default generation horizon when upToDate is omitted
	Out         io.Writer
	Now         func() time.Time
}

// server carries the dependencies shared by all handlers.
type server struct {
	st          store.Store
	gen         *recurrence.Generator
	horizonDays int
	clock       func() time.Time
}

func (s *server) now() time.Time {
	return s.clock().UTC()
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("api: store is required")
	}
	if opts.Generator == nil {
		opts.Generator = recurrence.NewGenerator(opts.Store)
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = 30
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &server{
		st:          opts.Store,
		gen:         opts.Generator,
		horizonDays: opts.HorizonDays,
		clock:       opts.Now,
	}
	registerRoutes(router, s)
	return router, nil
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "API listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
