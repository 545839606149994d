package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/okrasa/Parley/internal/domain"
	"github.com/okrasa/Parley/internal/translate"
)

// FailureMessage is the only translation-failure text a client ever sees.
// Raw backend detail stays in the operator log.
const FailureMessage = "Error al traducir el texto. Inténtalo de nuevo."

// TranscriptionRouter turns transcribed speech into a translated caption for
// the speaker's counterpart.
type TranscriptionRouter struct {
	Registry   *Registry
	Translator translate.Translator
	// Timeout bounds the backend call; expiry counts as a translation
	// failure. Zero means no bound.
	Timeout time.Duration
}

// HandleTranscription routes one utterance. The translation call is the only
// point that blocks; callers that must not stall run it on its own
// goroutine. The caption target and its language are snapshotted before the
// call and never re-read, so a disconnect or language change while the
// backend is working cannot redirect this request.
func (t *TranscriptionRouter) HandleTranscription(ctx context.Context, sender domain.EndpointID, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		log.Debug().Str("module", "app.captions").Str("sid", string(sender)).Msg("empty transcription dropped")
		return
	}

	peer, lang, ok := t.Registry.CaptionTarget(sender)
	if !ok {
		// Normal idle state: nobody to caption for.
		log.Debug().Str("module", "app.captions").Str("sid", string(sender)).Msg("no counterpart, transcription dropped")
		return
	}

	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	translated, err := t.Translator.Translate(ctx, text, lang)
	if err != nil {
		log.Error().Err(err).Str("module", "app.captions").Str("sid", string(sender)).Str("lang", string(lang)).Msg("translation backend failure")
		t.deliver(sender, translationErrorEvent{Type: "translation-error", Message: FailureMessage})
		return
	}

	log.Debug().Str("module", "app.captions").Str("from", string(sender)).Str("to", string(peer)).Str("lang", string(lang)).Msg("caption delivered")
	t.deliver(peer, subtitlesEvent{Type: "subtitles", Text: translated})
}

// deliver re-checks liveness at delivery time: an endpoint that disconnected
// while the backend was working gets nothing, and that is not an error.
func (t *TranscriptionRouter) deliver(id domain.EndpointID, v any) {
	conn, ok := t.Registry.Conn(id)
	if !ok {
		log.Debug().Str("module", "app.captions").Str("sid", string(id)).Msg("endpoint gone, delivery skipped")
		return
	}
	send(conn, v)
}
