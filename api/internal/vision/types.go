package vision

// FeatureKind is the annotation type requested from the backend.
type FeatureKind string

const (
	FeatureLabel  FeatureKind = "LABEL_DETECTION"
	FeatureObject FeatureKind = "OBJECT_LOCALIZATION"
	FeatureText   FeatureKind = "TEXT_DETECTION"
)

// FeatureRequest asks the backend for at most MaxResults findings of one kind.
type FeatureRequest struct {
	Kind       FeatureKind
	MaxResults int
}

// DefaultFeatures is the fixed per-deployment feature list.
func DefaultFeatures(maxLabels, maxObjects, maxText int) []FeatureRequest {
	return []FeatureRequest{
		{Kind: FeatureLabel, MaxResults: maxLabels},
		{Kind: FeatureObject, MaxResults: maxObjects},
		{Kind: FeatureText, MaxResults: maxText},
	}
}

// Image is the encoded payload handed to an engine.
type Image struct {
	Content string // base64, see Encode
	MIME    string
}

// BatchResponse mirrors the backend reply. Only the first element of
// Responses is ever read; the rest are ignored.
type BatchResponse struct {
	Responses []ImageResponse `json:"responses"`
}

type ImageResponse struct {
	LabelAnnotations           []EntityAnnotation `json:"labelAnnotations,omitempty"`
	LocalizedObjectAnnotations []ObjectAnnotation `json:"localizedObjectAnnotations,omitempty"`
	FullTextAnnotation         *TextAnnotation    `json:"fullTextAnnotation,omitempty"`
	Error                      *Status            `json:"error,omitempty"`
}

// Score is a pointer so that an absent score stays distinguishable from 0.
type EntityAnnotation struct {
	Description string   `json:"description"`
	Score       *float64 `json:"score,omitempty"`
}

type ObjectAnnotation struct {
	Name  string   `json:"name"`
	Score *float64 `json:"score,omitempty"`
}

type TextAnnotation struct {
	Text string `json:"text"`
}

type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
