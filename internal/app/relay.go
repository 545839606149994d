package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/okrasa/Parley/internal/domain"
)

// SignalKind names the session-negotiation messages the relay forwards.
type SignalKind string

const (
	KindOffer     SignalKind = "offer"
	KindAnswer    SignalKind = "answer"
	KindCandidate SignalKind = "ice-candidate"
)

// Relay forwards opaque session-negotiation payloads between paired
// endpoints. It never inspects, validates or rewrites the payload; a
// malformed SDP is the receiving browser's problem.
type Relay struct {
	Registry *Registry
}

// Forward delivers payload verbatim to the sender's room counterpart.
// Unicast, matching caption delivery. Best effort: no ack, no retry, no
// ordering beyond the channel's own.
func (r *Relay) Forward(kind SignalKind, sender domain.EndpointID, payload json.RawMessage) {
	peer, ok := r.Registry.Counterpart(sender)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("sid", string(sender)).Str("kind", string(kind)).Msg("no counterpart, signal dropped")
		return
	}
	conn, ok := r.Registry.Conn(peer)
	if !ok {
		return
	}
	send(conn, signalEvent{Type: string(kind), Payload: payload})
	log.Debug().Str("module", "app.relay").Str("from", string(sender)).Str("to", string(peer)).Str("kind", string(kind)).Msg("relayed")
}
