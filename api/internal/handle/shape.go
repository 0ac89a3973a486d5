package handle

import (
	"context"
	"errors"
	"net/http"

	"food-lens/api/internal/service"
	"food-lens/api/internal/upload"
	"food-lens/api/internal/vision"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	// nginx convention for a caller that went away mid-request.
	statusClientClosedRequest = 499
)

var ErrPayloadTooLarge = errors.New("payload too large")

// SuccessResponse keeps the `labels` field name for client compatibility
// even though it carries both labels and objects.
type SuccessResponse struct {
	Status   string           `json:"status"`
	Labels   []vision.Finding `json:"labels"`
	RawText  *string          `json:"raw_text,omitempty"`
	Message  string           `json:"message,omitempty"`
	Filename string           `json:"filename,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func Success(r service.Result) SuccessResponse {
	labels := r.Findings
	if labels == nil {
		labels = []vision.Finding{}
	}
	resp := SuccessResponse{
		Status:   statusSuccess,
		Labels:   labels,
		Filename: r.Filename,
	}
	if r.Empty {
		resp.Message = vision.NoDataMessage
		return resp
	}
	text := r.Text
	resp.RawText = &text
	return resp
}

// Failure maps any pipeline error to an HTTP status and the error payload.
func Failure(err error) (int, ErrorResponse) {
	code, msg := classify(err)
	return code, ErrorResponse{Status: statusError, Message: msg}
}

func classify(err error) (int, string) {
	var be *vision.BackendError
	var se *service.StoreError
	switch {
	case err == nil:
		return http.StatusInternalServerError, "unknown error"
	case errors.Is(err, vision.ErrMissingPayload):
		return http.StatusBadRequest, "missing payload: no file in form field \"" + upload.FieldName + "\""
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, vision.ErrBackendNotConfigured):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, vision.ErrBackendTimeout):
		return http.StatusGatewayTimeout, err.Error()
	case errors.As(err, &be):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, vision.ErrMalformedResponse), errors.Is(err, vision.ErrBackendUnreachable):
		return http.StatusBadGateway, err.Error()
	case errors.As(err, &se):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, "request cancelled"
	}
	return http.StatusInternalServerError, err.Error()
}
