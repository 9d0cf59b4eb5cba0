package validator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseVerdict decodes the raw model reply against the two-field verdict
// schema. Surrounding prose is tolerated by slicing the outermost JSON
// object; the object itself must carry exactly valid and reasons. Callers
// decide what to do on error (the pipeline substitutes FallbackVerdict).
func ParseVerdict(raw string) (*Verdict, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("validator: empty model response")
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}

	var probe struct {
		Valid   *bool     `json:"valid"`
		Reasons *[]string `json:"reasons"`
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&probe); err != nil {
		return nil, fmt.Errorf("validator: decode response: %w", err)
	}
	if probe.Valid == nil {
		return nil, fmt.Errorf("validator: response missing valid field")
	}
	if probe.Reasons == nil {
		return nil, fmt.Errorf("validator: response missing reasons field")
	}
	return &Verdict{Valid: *probe.Valid, Reasons: *probe.Reasons}, nil
}
