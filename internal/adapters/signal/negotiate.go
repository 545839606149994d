package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/okrasa/Parley/internal/app"
	"github.com/okrasa/Parley/internal/domain"
)

// handleNegotiate covers offer, answer and ice-candidate. Only the envelope
// is decoded; the payload goes to the relay untouched.
func (ctl *SignalWSController) handleNegotiate(
	kind app.SignalKind,
	sid domain.EndpointID,
	data []byte,
) {
	var p struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("kind", string(kind)).Msg("bad negotiate envelope")
		return
	}
	ctl.Orch.Relay.Forward(kind, sid, p.Payload)
}
