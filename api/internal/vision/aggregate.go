package vision

import (
	"cmp"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// NoDataMessage accompanies a successful result for which the backend returned no per-image element.
const NoDataMessage = "no data found"

type Category string

const (
	CategoryLabel  Category = "label"
	CategoryObject Category = "object"
)

// Finding is one detected entity. A nil Score ranks after every scored finding.
type Finding struct {
	Name     string   `json:"name"`
	Score    *float64 `json:"score"`
	Category Category `json:"type"`
}

// Result is the merged view of one backend reply. It is not modified after Aggregate returns it.
type Result struct {
	Findings []Finding
	Text     string
	// Empty is set when the backend returned zero response elements.
	Empty bool
}

// Aggregate merges labels and localized objects into one list ordered by score, highest first.
// Labels precede objects before sorting and the sort is stable, so equal or missing
// scores keep that order along with the backend's own order within each category.
func Aggregate(resp *BatchResponse) (Result, error) {
	if resp == nil {
		return Result{}, fmt.Errorf("%w: nil response", ErrMalformedResponse)
	}
	if len(resp.Responses) == 0 {
		return Result{Findings: []Finding{}, Empty: true}, nil
	}

	first := resp.Responses[0]
	if first.Error != nil && (first.Error.Code != 0 || first.Error.Message != "") {
		return Result{}, &BackendError{
			StatusCode: http.StatusOK,
			Message:    fmt.Sprintf("image error %d: %s", first.Error.Code, first.Error.Message),
		}
	}

	findings := make([]Finding, 0, len(first.LabelAnnotations)+len(first.LocalizedObjectAnnotations))
	for _, l := range first.LabelAnnotations {
		if name := strings.TrimSpace(l.Description); name != "" {
			findings = append(findings, Finding{Name: name, Score: l.Score, Category: CategoryLabel})
		}
	}
	for _, o := range first.LocalizedObjectAnnotations {
		if name := strings.TrimSpace(o.Name); name != "" {
			findings = append(findings, Finding{Name: name, Score: o.Score, Category: CategoryObject})
		}
	}
	SortFindings(findings)

	var text string
	if first.FullTextAnnotation != nil {
		text = first.FullTextAnnotation.Text
	}

	return Result{Findings: findings, Text: text}, nil
}

// SortFindings orders findings in place: descending score, missing scores last, stable.
func SortFindings(findings []Finding) {
	slices.SortStableFunc(findings, compareFindings)
}

func compareFindings(a, b Finding) int {
	switch {
	case a.Score == nil && b.Score == nil:
		return 0
	case a.Score == nil:
		return 1
	case b.Score == nil:
		return -1
	}
	return cmp.Compare(*b.Score, *a.Score)
}
