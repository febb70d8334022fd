// Package server exposes leaderboards over REST and runs practice sessions
// over a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/events"
	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/leaderboard"
	"github.com/abhisek/mathdrill/internal/learn"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/scoring"
	"github.com/abhisek/mathdrill/internal/session"
	"github.com/abhisek/mathdrill/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Config wires a Server. Tokens and Board are required.
type Config struct {
	Addr           string
	AllowedOrigins []string

	Tokens    *identity.TokenIssuer
	Users     store.UserRepo
	Events    store.EventRepo
	Board     *leaderboard.Service
	Publisher scoring.ScorePublisher
	Generator *problemgen.Generator

	// NewExplainer builds one explainer per websocket session. Nil disables
	// explanations.
	NewExplainer func() session.Explainer

	// ExplainTimeout bounds how long a session waits for an explanation.
	ExplainTimeout time.Duration
}

type Server struct {
	cfg      Config
	engine   *gin.Engine
	cors     *cors.Cors
	validate *validator.Validate
	lessons  *learn.Catalog
	upgrader websocket.Upgrader
	hub      *hub
	now      func() time.Time
}

// New builds the server and its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Tokens == nil {
		return nil, errors.New("server: token issuer is required")
	}
	if cfg.Board == nil {
		return nil, errors.New("server: leaderboard service is required")
	}
	if cfg.Generator == nil {
		cfg.Generator = problemgen.New(problemgen.DefaultRegistry(), problemgen.DefaultConfig())
	}
	if cfg.ExplainTimeout <= 0 {
		cfg.ExplainTimeout = 30 * time.Second
	}

	v, err := newValidator(cfg.Generator.Registry())
	if err != nil {
		return nil, fmt.Errorf("server: register validators: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		validate: v,
		lessons:  learn.NewCatalog(cfg.Generator),
		hub:      newHub(),
		now:      time.Now,
		cors: cors.New(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), requestLogger())
	s.Routes(s.engine)
	return s, nil
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r gin.IRouter) {
	r.GET("/health", s.health)
	r.GET("/ws", s.ServeWS)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/topics", s.topics)
		v1.GET("/lessons", s.listLessons)
		v1.GET("/lessons/:topic", s.getLesson)
		v1.POST("/guests", s.createGuest)
		v1.GET("/leaderboard", s.optionalAuth(), s.leaderboard)
		v1.GET("/me", s.requireAuth(), s.me)
	}
}

// Handler returns the routes wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	return s.cors.Handler(s.engine)
}

// BoardChanged pushes a leaderboard refresh to connected sessions. It
// matches the leaderboard projector's change hook.
func (s *Server) BoardChanged(ev events.ScoreRecorded) {
	s.hub.publish(ev)
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// open websocket sessions.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logrus.WithField("addr", s.cfg.Addr).Info("HTTP server listening")

	select {
	case err := <-errCh:
		s.hub.shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.hub.shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// checkOrigin admits non-browser clients and browsers from allowed origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	if r.Header.Get("Origin") == "" {
		return true
	}
	return s.cors.OriginAllowed(r)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Debug("HTTP request")
	}
}
