package translate

import (
	"context"
	"time"

	"github.com/okrasa/Parley/internal/domain"
)

// StubConfig configures the stub translator behavior.
type StubConfig struct {
	// Delay simulates backend latency.
	Delay time.Duration
	// Dictionary maps [targetLang][sourceText] to a translation.
	// Misses fall back to "[LANG] " + source text.
	Dictionary map[domain.LangCode]map[string]string
	// Err, when set, makes every call fail with it.
	Err error
}

// Stub is a deterministic Translator for tests and keyless local runs.
type Stub struct {
	cfg StubConfig
}

func NewStub(cfg StubConfig) *Stub {
	return &Stub{cfg: cfg}
}

func (s *Stub) Translate(ctx context.Context, text string, target domain.LangCode) (string, error) {
	if s.cfg.Delay > 0 {
		select {
		case <-time.After(s.cfg.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.cfg.Err != nil {
		return "", s.cfg.Err
	}
	if dict, ok := s.cfg.Dictionary[target]; ok {
		if out, ok := dict[text]; ok {
			return out, nil
		}
	}
	return "[" + string(target) + "] " + text, nil
}
