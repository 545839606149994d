package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/okrasa/Parley/internal/domain"
)

func (ctl *SignalWSController) handleChangeLanguage(
	sid domain.EndpointID,
	conn *WsSignalConn,
	data []byte,
) {
	type langPayload struct {
		Type string `json:"type"`
		Lang string `json:"lang"`
	}
	var p langPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad change-language payload")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}

	if err := ctl.Orch.Registry.SetLanguage(sid, p.Lang); err != nil {
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "invalid_language",
		})
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("lang", p.Lang).Msg("change-language")
}
