package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	visionapi "google.golang.org/api/vision/v1"

	"food-lens/api/internal/vision"
)

const DefaultEndpoint = "https://vision.googleapis.com/v1/images:annotate"

// Engine talks to the Cloud Vision images:annotate REST endpoint.
// The key travels as the `key` query parameter.
type Engine struct {
	APIKey   string
	Endpoint string
	httpc    *http.Client
}

func New(apiKey, endpoint string, timeout time.Duration) *Engine {
	return NewWithTransport(apiKey, endpoint, timeout, http.DefaultTransport)
}

// NewWithTransport lets tests count or intercept outbound round trips.
func NewWithTransport(apiKey, endpoint string, timeout time.Duration, rt http.RoundTripper) *Engine {
	apiKey = strings.TrimSpace(apiKey)
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	return &Engine{
		APIKey:   apiKey,
		Endpoint: endpoint,
		httpc: &http.Client{
			Timeout:   timeout,
			Transport: &transport.APIKey{Key: apiKey, Transport: rt},
		},
	}
}

func (e *Engine) Name() string { return "vision" }

func (e *Engine) Ready() error {
	if e.APIKey == "" {
		return fmt.Errorf("vision: %w: GOOGLE_VISION_API_KEY is empty", vision.ErrBackendNotConfigured)
	}
	return nil
}

func (e *Engine) Annotate(ctx context.Context, img vision.Image, features []vision.FeatureRequest) (*vision.BatchResponse, error) {
	if err := e.Ready(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(buildRequest(img, features))
	if err != nil {
		return nil, fmt.Errorf("vision: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("vision: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision: %w", vision.TransportError(ctx, err))
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &vision.BackendError{StatusCode: gerr.Code, Message: gerr.Message}
		}
		return nil, &vision.BackendError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	var out vision.BatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("vision: %w", vision.TransportError(ctx, err))
		}
		return nil, fmt.Errorf("vision: %w: %v", vision.ErrMalformedResponse, err)
	}
	return &out, nil
}

// buildRequest produces {requests:[{image:{content}, features:[{type,maxResults}]}]}.
func buildRequest(img vision.Image, features []vision.FeatureRequest) *visionapi.BatchAnnotateImagesRequest {
	feats := make([]*visionapi.Feature, 0, len(features))
	for _, f := range features {
		feats = append(feats, &visionapi.Feature{
			Type:       string(f.Kind),
			MaxResults: int64(f.MaxResults),
		})
	}
	return &visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{
			{
				Image:    &visionapi.Image{Content: img.Content},
				Features: feats,
			},
		},
	}
}
