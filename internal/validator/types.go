package validator

import "context"

// Verdict is the structured decision returned to the caller.
type Verdict struct {
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons"`
}

// Input carries everything needed to judge one document.
type Input struct {
	Requirements    string
	ValidExamples   string
	InvalidExamples string
	DocumentText    string
	// Threshold is the minimum mean per-requirement score, in [0,1].
	Threshold float64
}

// Completer abstracts the model completion call.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// VerdictCache replays verdicts for identical inputs.
type VerdictCache interface {
	Get(ctx context.Context, key string) (*Verdict, bool, error)
	Set(ctx context.Context, key string, verdict *Verdict) error
}

// Config controls the validator behavior.
type Config struct {
	Completer Completer
	Cache     VerdictCache
	Language  string
	Model     string
}

// FallbackVerdict is substituted when the model reply is not valid JSON.
func FallbackVerdict() *Verdict {
	return &Verdict{
		Valid:   false,
		Reasons: []string{"Invalid JSON returned from model"},
	}
}
