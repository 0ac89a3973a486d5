package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"food-lens/api/internal/vision"
)

func TestAnnotateWithoutKey(t *testing.T) {
	e := New("  ", "gemini-2.5-flash")
	_, err := e.Annotate(context.Background(), vision.Image{Content: vision.Encode([]byte("x"))}, nil)
	if !errors.Is(err, vision.ErrBackendNotConfigured) {
		t.Fatalf("expected ErrBackendNotConfigured, got %v", err)
	}
}

func TestParseModelOutput(t *testing.T) {
	out, err := parseModelOutput("```json\n" + `{
		"labelAnnotations":[{"description":"Pizza","score":0.9},{"description":"Cheese"}],
		"localizedObjectAnnotations":[{"name":"Plate","score":0.7}],
		"fullTextAnnotation":{"text":"Margherita"}
	}` + "\n```")
	if err != nil {
		t.Fatalf("parseModelOutput: %v", err)
	}
	if len(out.Responses) != 1 {
		t.Fatalf("expected one response element, got %d", len(out.Responses))
	}
	r := out.Responses[0]
	if len(r.LabelAnnotations) != 2 || r.LabelAnnotations[1].Score != nil {
		t.Errorf("labels = %+v", r.LabelAnnotations)
	}
	if len(r.LocalizedObjectAnnotations) != 1 || r.LocalizedObjectAnnotations[0].Name != "Plate" {
		t.Errorf("objects = %+v", r.LocalizedObjectAnnotations)
	}
	if r.FullTextAnnotation == nil || r.FullTextAnnotation.Text != "Margherita" {
		t.Errorf("text = %+v", r.FullTextAnnotation)
	}
}

func TestParseModelOutputEmpty(t *testing.T) {
	out, err := parseModelOutput("   ")
	if err != nil {
		t.Fatalf("parseModelOutput: %v", err)
	}
	if len(out.Responses) != 0 {
		t.Fatalf("expected zero elements, got %d", len(out.Responses))
	}
}

func TestParseModelOutputMalformed(t *testing.T) {
	_, err := parseModelOutput("I see a pizza.")
	if !errors.Is(err, vision.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestSystemPromptCarriesLimits(t *testing.T) {
	p := systemPrompt(vision.DefaultFeatures(7, 3, 1))
	for _, want := range []string{"at most 7 labelAnnotations", "at most 3 localizedObjectAnnotations", "fullTextAnnotation.text"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
