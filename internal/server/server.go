// Package server exposes the download/transcribe/prompt pipeline over REST.
package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"reelscribe/internal/config"
	"reelscribe/internal/downloader"
	"reelscribe/internal/pipeline"
	"reelscribe/internal/session"
	"reelscribe/internal/store"
)

// Version is reported by the health endpoints
const Version = "2.0.0"

// PipelineRunner is the pipeline surface the handlers need
type PipelineRunner interface {
	Run(ctx context.Context, audioPath string, opts pipeline.Options, progress pipeline.ProgressFunc) (*pipeline.Result, error)
}

// Server wires the HTTP handlers to their collaborators
type Server struct {
	cfg        *config.Config
	downloader downloader.Downloader
	pipeline   PipelineRunner
	sessions   *session.Manager
	store      *store.Store
}

// New creates a server. store may be nil, which disables job history.
func New(cfg *config.Config, dl downloader.Downloader, p PipelineRunner, st *store.Store) *Server {
	return &Server{
		cfg:        cfg,
		downloader: dl,
		pipeline:   p,
		sessions:   session.NewManager(cfg.OutputDir),
		store:      st,
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Lets request structs declare binding:"instagramurl"
		_ = v.RegisterValidation("instagramurl", func(fl validator.FieldLevel) bool {
			return downloader.IsValidInstagramURL(fl.Field().String())
		})
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.handleHealth)
	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	{
		api.POST("/download", s.handleDownload)
		api.GET("/validate-url", s.handleValidateURL)
		api.GET("/jobs", s.handleJobs)
	}

	return r
}

// Run starts the HTTP server on the configured address
func (s *Server) Run() error {
	return s.Router().Run(s.cfg.ListenAddr())
}
