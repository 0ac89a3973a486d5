package vision

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func score(v float64) *float64 { return &v }

func TestAggregatePizzaScenario(t *testing.T) {
	resp := &BatchResponse{Responses: []ImageResponse{{
		LabelAnnotations:           []EntityAnnotation{{Description: "Pizza", Score: score(0.95)}},
		LocalizedObjectAnnotations: []ObjectAnnotation{{Name: "Pizza Slice", Score: score(0.98)}},
	}}}

	got, err := Aggregate(resp)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := []Finding{
		{Name: "Pizza Slice", Score: score(0.98), Category: CategoryObject},
		{Name: "Pizza", Score: score(0.95), Category: CategoryLabel},
	}
	assertFindings(t, got.Findings, want)
	if got.Text != "" || got.Empty {
		t.Errorf("unexpected text %q / empty %v", got.Text, got.Empty)
	}
}

func TestAggregateMissingScoreRanksLast(t *testing.T) {
	resp := &BatchResponse{Responses: []ImageResponse{{
		LabelAnnotations: []EntityAnnotation{
			{Description: "Unscored label"},
			{Description: "Zero label", Score: score(0)},
		},
		LocalizedObjectAnnotations: []ObjectAnnotation{
			{Name: "Unscored object"},
			{Name: "Low object", Score: score(0.01)},
		},
		FullTextAnnotation: &TextAnnotation{Text: "hello"},
	}}}

	got, err := Aggregate(resp)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := []Finding{
		{Name: "Low object", Score: score(0.01), Category: CategoryObject},
		{Name: "Zero label", Score: score(0), Category: CategoryLabel},
		{Name: "Unscored label", Category: CategoryLabel},
		{Name: "Unscored object", Category: CategoryObject},
	}
	assertFindings(t, got.Findings, want)
	if got.Text != "hello" {
		t.Errorf("text = %q", got.Text)
	}
}

func TestAggregateTiesKeepLabelsFirstThenBackendOrder(t *testing.T) {
	resp := &BatchResponse{Responses: []ImageResponse{{
		LabelAnnotations: []EntityAnnotation{
			{Description: "L1", Score: score(0.5)},
			{Description: "L2", Score: score(0.5)},
		},
		LocalizedObjectAnnotations: []ObjectAnnotation{
			{Name: "O1", Score: score(0.5)},
			{Name: "O2", Score: score(0.9)},
		},
	}}}

	got, err := Aggregate(resp)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	var names []string
	for _, f := range got.Findings {
		names = append(names, f.Name)
	}
	want := []string{"O2", "L1", "L2", "O1"}
	for i := range want {
		if i >= len(names) || names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestAggregateNoElements(t *testing.T) {
	got, err := Aggregate(&BatchResponse{})
	if err != nil {
		t.Fatalf("zero elements must not be an error: %v", err)
	}
	if !got.Empty {
		t.Error("expected Empty result")
	}
	if got.Findings == nil || len(got.Findings) != 0 {
		t.Errorf("expected empty non-nil findings, got %#v", got.Findings)
	}
}

func TestAggregateIgnoresExtraElements(t *testing.T) {
	resp := &BatchResponse{Responses: []ImageResponse{
		{LabelAnnotations: []EntityAnnotation{{Description: "first", Score: score(0.1)}}},
		{LabelAnnotations: []EntityAnnotation{{Description: "second", Score: score(0.9)}}},
	}}
	got, err := Aggregate(resp)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got.Findings) != 1 || got.Findings[0].Name != "first" {
		t.Fatalf("expected only the first element to be used, got %+v", got.Findings)
	}
}

func TestAggregateDropsNamelessFindings(t *testing.T) {
	resp := &BatchResponse{Responses: []ImageResponse{{
		LabelAnnotations:           []EntityAnnotation{{Description: "  ", Score: score(0.9)}},
		LocalizedObjectAnnotations: []ObjectAnnotation{{Name: "Fork", Score: score(0.4)}},
	}}}
	got, err := Aggregate(resp)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got.Findings) != 1 || got.Findings[0].Name != "Fork" {
		t.Fatalf("got %+v", got.Findings)
	}
}

func TestAggregatePerImageError(t *testing.T) {
	resp := &BatchResponse{Responses: []ImageResponse{{
		Error: &Status{Code: 3, Message: "Bad image data."},
	}}}
	_, err := Aggregate(resp)
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
}

func TestAggregateNil(t *testing.T) {
	if _, err := Aggregate(nil); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

// Ordering property over random inputs: non-increasing scores, nil scores
// after all scored findings, and ties keep input order.
func TestSortFindingsProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	levels := []float64{0, 0.25, 0.5, 0.75, 1}

	for iter := 0; iter < 200; iter++ {
		n := r.IntN(20)
		in := make([]Finding, n)
		pos := make(map[string]int, n)
		for i := range in {
			name := string(rune('a'+i%26)) + string(rune('0'+i/26))
			in[i] = Finding{Name: name, Category: CategoryLabel}
			if r.IntN(4) != 0 {
				in[i].Score = score(levels[r.IntN(len(levels))])
			}
			pos[name] = i
		}

		out := append([]Finding(nil), in...)
		SortFindings(out)

		for i := 1; i < len(out); i++ {
			a, b := out[i-1], out[i]
			switch {
			case a.Score == nil && b.Score != nil:
				t.Fatalf("nil score before scored finding: %+v", out)
			case a.Score != nil && b.Score != nil && *a.Score < *b.Score:
				t.Fatalf("not non-increasing at %d: %+v", i, out)
			}
			equal := (a.Score == nil && b.Score == nil) ||
				(a.Score != nil && b.Score != nil && *a.Score == *b.Score)
			if equal && pos[a.Name] > pos[b.Name] {
				t.Fatalf("unstable order for ties at %d", i)
			}
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	if Encode(data) != Encode(data) {
		t.Fatal("encoding must be deterministic")
	}
	if got := Encode([]byte("pizza")); got != "cGl6emE=" {
		t.Fatalf("Encode = %q", got)
	}
}

func assertFindings(t *testing.T, got, want []Finding) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d findings, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Name != w.Name || g.Category != w.Category {
			t.Fatalf("finding %d = %+v, want %+v", i, g, w)
		}
		if (g.Score == nil) != (w.Score == nil) || (g.Score != nil && *g.Score != *w.Score) {
			t.Fatalf("finding %d score = %v, want %v", i, g.Score, w.Score)
		}
	}
}
