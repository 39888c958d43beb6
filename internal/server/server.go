package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// maxMultipartMemory bounds the part of a multipart body held in memory.
const maxMultipartMemory = 12 << 20

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	cfg    *config.Config
}

// New builds the router with the shared middleware chain and all API routes.
func New(cfg *config.Config, db *gorm.DB, handlers api.Handlers) *Server {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.ErrorHandler(),
		metrics.Middleware(),
		middleware.CORS(cfg.CORSOrigins),
	)

	api.RegisterRoutes(router, db, handlers)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	if cfg.StorageBackend == config.StorageLocal {
		router.Static(mediaPrefix(cfg.MediaURL), cfg.MediaRoot)
	}

	return &Server{
		router: router,
		cfg:    cfg,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("server starting")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// mediaPrefix turns a media URL such as /media/ or
// http://host/media/ into a router prefix.
func mediaPrefix(mediaURL string) string {
	if u, err := url.Parse(mediaURL); err == nil {
		mediaURL = u.Path
	}
	p := "/" + strings.Trim(mediaURL, "/")
	if p == "/" {
		return "/media"
	}
	return p
}
