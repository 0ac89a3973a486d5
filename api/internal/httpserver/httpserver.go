package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-lens/api/internal/config"
	"food-lens/api/internal/handle"
)

type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewRouter wires middleware and routes. Exposed separately so tests can drive it with httptest.
func NewRouter(cfg *config.Config, h *handle.Handle, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxBytes

	router.Use(
		handle.RequestID(log),
		handle.AccessLog(log),
		handle.Recovery(log),
		cors.New(corsConfig(cfg.CORSAllowedOrigins)),
	)

	router.GET("/", h.Root)
	router.GET("/healthz", h.Healthz)
	router.POST("/upload-image", handle.LimitBody(cfg.Upload.MaxBytes), h.UploadImage)

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", handle.RequestIDHeader},
		ExposeHeaders: []string{handle.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

func New(cfg *config.Config, h *handle.Handle, log *zap.Logger) *Server {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           NewRouter(cfg, h, log),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			// the backend call alone may take up to VISION_TIMEOUT
			WriteTimeout:   cfg.Vision.Timeout + 15*time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		log: log,
	}
}

func (s *Server) Run() error {
	s.log.Info("listening", zap.String("address", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
