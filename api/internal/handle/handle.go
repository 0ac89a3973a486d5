package handle

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-lens/api/internal/service"
	"food-lens/api/internal/upload"
)

// Annotator is the pipeline behind POST /upload-image.
type Annotator interface {
	Annotate(ctx context.Context, img upload.Image, log *zap.Logger) (service.Result, error)
}

type Handle struct {
	svc Annotator
	log *zap.Logger
}

func New(svc Annotator, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{
		svc: svc,
		log: log,
	}
}

func writeJSON(c *gin.Context, code int, v any) {
	c.JSON(code, v)
}
