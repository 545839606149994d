// Package translate calls the external translation backend.
package translate

import (
	"context"
	"errors"

	"github.com/okrasa/Parley/internal/domain"
)

// ErrTranslationFailed covers every backend failure: transport errors, bad
// status codes, malformed bodies, auth rejection, timeouts. Callers never
// branch on the cause; the detail is for operator logs only.
var ErrTranslationFailed = errors.New("translation failed")

// Translator converts text into the target language. The source language is
// implicit; the backend detects it.
type Translator interface {
	Translate(ctx context.Context, text string, target domain.LangCode) (string, error)
}
