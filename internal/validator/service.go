package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/hetulpatel/DocValidator/internal/hashutil"
	"github.com/hetulpatel/DocValidator/internal/logging"
)

// Service validates documents against free-text requirements via LLM.
type Service struct {
	completer Completer
	cache     VerdictCache
	language  string
	model     string
}

// NewService creates a validator.
func NewService(cfg Config) (*Service, error) {
	if cfg.Completer == nil {
		return nil, fmt.Errorf("validator: completer is required")
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = "English"
	}
	return &Service{
		completer: cfg.Completer,
		cache:     cfg.Cache,
		language:  language,
		model:     cfg.Model,
	}, nil
}

// Validate builds the prompt, runs the completion, and parses the verdict.
// A transport failure is a hard error; an unparseable reply degrades to the
// fallback verdict instead of failing the request.
func (s *Service) Validate(ctx context.Context, in Input) (*Verdict, error) {
	if s == nil {
		return nil, fmt.Errorf("validator: service is nil")
	}
	if strings.TrimSpace(in.Requirements) == "" {
		return nil, fmt.Errorf("validator: requirements are empty")
	}
	if in.Threshold < 0 || in.Threshold > 1 {
		return nil, fmt.Errorf("validator: threshold %.4f outside [0,1]", in.Threshold)
	}

	key := s.CacheKey(in)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logging.Errorf("[validator] cache get: %v", err)
		} else if ok {
			logging.Debugf("[validator] cache hit key=%s", key)
			return cached, nil
		}
	}

	prompt := BuildPrompt(in, s.language)
	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("validator: model call: %w", err)
	}

	verdict, parseErr := ParseVerdict(raw)
	if parseErr != nil {
		logging.Errorf("[validator] unparseable model reply: %v", parseErr)
		return FallbackVerdict(), nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, verdict); err != nil {
			logging.Errorf("[validator] cache set: %v", err)
		}
	}
	return verdict, nil
}

// CacheKey hashes everything that influences the verdict for a given input.
func (s *Service) CacheKey(in Input) string {
	return hashutil.HashStrings(
		s.model,
		s.language,
		fmt.Sprintf("%.4f", in.Threshold),
		in.Requirements,
		in.ValidExamples,
		in.InvalidExamples,
		in.DocumentText,
	)
}
