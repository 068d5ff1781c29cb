package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ligoview/ligoview/internal/backend"
	"github.com/ligoview/ligoview/internal/logging"
	"github.com/ligoview/ligoview/internal/store"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/patrickmn/go-cache"
)

const (
	fetchPoolSize  = 64
	sessionMaxIdle = 12 * time.Hour
	projectsTTL    = time.Minute
)

// Backend is the part of the metrics API client the dashboard needs.
type Backend interface {
	backend.Fetcher
	ListMetricSets(ctx context.Context) ([]string, error)
	BaseURL() string
}

type Server struct {
	store     *store.SQLiteStore
	backend   Backend
	port      int
	token     string
	tokenFile string
	router    *http.ServeMux
	startTime time.Time
	pool      *ants.Pool
	sessions  cmap.ConcurrentMap[string, *session]
	projects  *cache.Cache
}

func New(s *store.SQLiteStore, b Backend, port int, tokenFile string) *Server {
	pool, err := ants.NewPool(fetchPoolSize)
	if err != nil {
		// only reachable with an invalid size
		panic(err)
	}

	srv := &Server{
		store:     s,
		backend:   b,
		port:      port,
		token:     generateToken(),
		tokenFile: tokenFile,
		router:    http.NewServeMux(),
		startTime: time.Now(),
		pool:      pool,
		sessions:  cmap.New[*session](),
		projects:  cache.New(projectsTTL, 0),
	}

	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	// Public endpoints
	s.router.HandleFunc("/health", s.handleHealth)

	// Dashboard endpoints (protected)
	s.router.Handle("/dashboard", s.authMiddleware(http.HandlerFunc(s.handleDashboard)))
	s.router.Handle("/dashboard/views", s.authMiddleware(http.HandlerFunc(s.handleViews)))
	s.router.Handle("/dashboard/api/view", s.authMiddleware(http.HandlerFunc(s.handleViewAPI)))
	s.router.Handle("/dashboard/api/projects", s.authMiddleware(http.HandlerFunc(s.handleProjectsAPI)))
	s.router.Handle("/v/", s.authMiddleware(http.HandlerFunc(s.handleSavedView)))
}

func (s *Server) Start() error {
	return s.StartWithOptions(true)
}

// StartQuiet starts the server without printing startup messages
func (s *Server) StartQuiet() error {
	return s.StartWithOptions(false)
}

func (s *Server) StartWithOptions(printMessages bool) error {
	// Write token to file for OTP command
	if s.tokenFile != "" {
		if err := os.WriteFile(s.tokenFile, []byte(s.token), 0600); err != nil {
			logging.Logger.Warnw("failed to write token file", "path", s.tokenFile, "error", err)
		}
	}

	addr := fmt.Sprintf(":%d", s.port)

	if printMessages {
		fmt.Println()
		fmt.Printf("ligoview running on http://localhost:%d\n", s.port)
		fmt.Printf("Dashboard: http://localhost:%d/dashboard?token=%s\n", s.port, s.token)
		fmt.Printf("Metrics backend: %s\n", s.backend.BaseURL())
		fmt.Println()
		fmt.Println("Press Ctrl+C to stop")
	}

	stop := make(chan struct{})
	defer close(stop)
	go s.sweepSessions(stop)

	logging.Logger.Infow("server started", "addr", addr, "backend", s.backend.BaseURL())
	return http.ListenAndServe(addr, s.router)
}

// Close releases the fetch pool.
func (s *Server) Close() {
	s.pool.Release()
}

func (s *Server) Token() string {
	return s.token
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) sweepSessions(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.expireSessions(time.Now().Add(-sessionMaxIdle)); n > 0 {
				logging.Logger.Debugw("expired idle sessions", "count", n)
			}
		case <-stop:
			return
		}
	}
}

func generateToken() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a simple token if crypto/rand fails
		return "a1b2c3d4"
	}
	return hex.EncodeToString(bytes)
}
