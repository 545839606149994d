package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/okrasa/Parley/internal/domain"
)

func (ctl *SignalWSController) handleTranscription(
	ctx context.Context,
	sid domain.EndpointID,
	data []byte,
) {
	type transcriptionPayload struct {
		Type   string `json:"type"`
		Text   string `json:"text"`
		UserID string `json:"userId"`
	}
	var p transcriptionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad transcription payload")
		return
	}
	if domain.EndpointID(p.UserID) != sid {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("userId", p.UserID).Msg("transcription userId mismatch, dropped")
		return
	}

	// Own goroutine per utterance: the translation backend call blocks and
	// must not stall this connection's read loop. WithoutCancel so a
	// disconnect does not abort the in-flight call; delivery afterward is a
	// no-op against a gone endpoint.
	go ctl.Orch.Captions.HandleTranscription(context.WithoutCancel(ctx), sid, p.Text)
}
