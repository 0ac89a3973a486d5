package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"food-lens/api/internal/util"
	"food-lens/api/internal/vision"
)

// Engine asks a multimodal Gemini model for a vision-shaped annotation reply,
// so its output goes through the same normalizer as the Cloud Vision engine.
type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) Ready() error {
	if e.APIKey == "" {
		return fmt.Errorf("gemini: %w: GEMINI_API_KEY is empty", vision.ErrBackendNotConfigured)
	}
	if e.Model == "" {
		return fmt.Errorf("gemini: %w: GEMINI_MODEL is empty", vision.ErrBackendNotConfigured)
	}
	return nil
}

func (e *Engine) Annotate(ctx context.Context, img vision.Image, features []vision.FeatureRequest) (*vision.BatchResponse, error) {
	if err := e.Ready(); err != nil {
		return nil, err
	}

	data, hint, err := util.DecodeBase64MaybeDataURL(img.Content)
	if err != nil {
		return nil, fmt.Errorf("gemini: bad base64 payload: %w", err)
	}
	mime := util.PickMIME(img.MIME, hint, data)

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt(features))},
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text("Annotate this image. Reply with JSON only."),
		&genai.Blob{MIMEType: mime, Data: data},
	)
	if err != nil {
		return nil, classify(ctx, err)
	}

	return parseModelOutput(firstText(resp))
}

func systemPrompt(features []vision.FeatureRequest) string {
	var b strings.Builder
	b.WriteString(`You are an image annotation backend. Look at the image and answer with STRICT JSON of this shape:
{
  "labelAnnotations": [{"description": string, "score": number}],
  "localizedObjectAnnotations": [{"name": string, "score": number}],
  "fullTextAnnotation": {"text": string}
}
Scores are your confidence in [0,1]. Omit "score" when you cannot estimate it. Use English names.
Order each list by confidence, highest first. Limits:
`)
	for _, f := range features {
		switch f.Kind {
		case vision.FeatureLabel:
			fmt.Fprintf(&b, "- at most %d labelAnnotations (what the image shows as a whole)\n", f.MaxResults)
		case vision.FeatureObject:
			fmt.Fprintf(&b, "- at most %d localizedObjectAnnotations (distinct physical objects)\n", f.MaxResults)
		case vision.FeatureText:
			b.WriteString("- fullTextAnnotation.text holds all legible text verbatim, or is omitted when there is none\n")
		}
	}
	return b.String()
}

// parseModelOutput wraps one per-image reply into a batch response.
// An empty model answer is a reply with zero elements, not an error.
func parseModelOutput(txt string) (*vision.BatchResponse, error) {
	txt = strings.TrimSpace(txt)
	if txt == "" {
		return &vision.BatchResponse{}, nil
	}
	var ir vision.ImageResponse
	if err := json.Unmarshal([]byte(util.ExtractJSONObject(txt)), &ir); err != nil {
		return nil, fmt.Errorf("gemini: %w: %v", vision.ErrMalformedResponse, err)
	}
	return &vision.BatchResponse{Responses: []vision.ImageResponse{ir}}, nil
}

func classify(ctx context.Context, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &vision.BackendError{StatusCode: gerr.Code, Message: gerr.Message}
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("gemini: %w", vision.TransportError(ctx, err))
	}
	return &vision.BackendError{StatusCode: http.StatusBadGateway, Message: err.Error()}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
