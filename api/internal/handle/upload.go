package handle

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-lens/api/internal/upload"
	"food-lens/api/internal/vision"
)

// UploadImage handles POST /upload-image.
func (h *Handle) UploadImage(c *gin.Context) {
	log := Logger(c, h.log)

	fh, err := c.FormFile(upload.FieldName)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			err = fmt.Errorf("%w: limit %d bytes", ErrPayloadTooLarge, mbe.Limit)
		} else {
			err = fmt.Errorf("%w: %v", vision.ErrMissingPayload, err)
		}
		h.fail(c, log, err)
		return
	}

	img, err := upload.Receive(fh)
	if err != nil {
		h.fail(c, log, err)
		return
	}

	res, err := h.svc.Annotate(c.Request.Context(), img, log)
	if err != nil {
		h.fail(c, log, err)
		return
	}

	writeJSON(c, http.StatusOK, Success(res))
}

func (h *Handle) fail(c *gin.Context, log *zap.Logger, err error) {
	code, body := Failure(err)
	if code >= http.StatusInternalServerError {
		log.Error("upload-image failed", zap.Int("status", code), zap.Error(err))
	} else {
		log.Info("upload-image rejected", zap.Int("status", code), zap.Error(err))
	}
	writeJSON(c, code, body)
}
