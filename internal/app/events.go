package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/okrasa/Parley/internal/core"
	"github.com/okrasa/Parley/internal/domain"
)

// Outbound event envelopes. Inbound envelopes live with their handlers in
// the signal adapter; these are the ones the core itself originates.

type subtitlesEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type translationErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type signalEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type presenceEvent struct {
	Type string            `json:"type"`
	ID   domain.EndpointID `json:"id"`
}

// send encodes an event and hands it to the transport, best effort. A full
// send buffer or a closed connection is logged and swallowed: signaling and
// caption delivery carry no ack or retry.
func send(conn core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Msg("event marshal")
		return
	}
	if err := conn.TrySend(core.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "app").Msg("event dropped")
	}
}
