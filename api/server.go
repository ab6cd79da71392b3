package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/raushankrgupta/flyer-price-scraper/storage"
	"github.com/raushankrgupta/flyer-price-scraper/utils"
)

// RunFunc performs one complete scrape run
type RunFunc func(ctx context.Context) error

// AuthConfig holds the single admin credential
type AuthConfig struct {
	JWTSecret         string
	AdminPasswordHash string
}

// ArchiveLinker hands out time-limited download links for archived snapshots
type ArchiveLinker interface {
	PresignedURL(ctx context.Context, date string) (string, error)
}

type Server struct {
	router  *chi.Mux
	reader  storage.Reader
	auth    AuthConfig
	run     RunFunc
	archive ArchiveLinker

	// running is held for the whole of a background run
	running sync.Mutex
	wg      sync.WaitGroup
}

func NewServer(reader storage.Reader, auth AuthConfig, run RunFunc) *Server {
	s := &Server{
		router: chi.NewRouter(),
		reader: reader,
		auth:   auth,
		run:    run,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(utils.LatencyMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/snapshots/latest", s.LatestSnapshotHandler)
	s.router.Get("/snapshots/{date}", s.SnapshotByDateHandler)
	s.router.Post("/auth/login", s.LoginHandler)

	s.router.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)
		r.Post("/scrape", s.ScrapeHandler)
		r.Get("/snapshots/{date}/archive", s.ArchiveLinkHandler)
	})
}

// SetArchive enables /snapshots/{date}/archive. Without it the route answers 503.
func (s *Server) SetArchive(archive ArchiveLinker) {
	s.archive = archive
}

func (s *Server) Router() http.Handler {
	return s.router
}

// Wait blocks until a background run started by /scrape has finished
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
