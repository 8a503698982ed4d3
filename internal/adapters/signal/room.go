package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/estimate/internal/core"
	"github.com/rs/zerolog/log"
)

type joinPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
	Role     string `json:"role"`
}

func (ctl *SignalWSController) handleJoin(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	data json.RawMessage,
) {
	var p joinPayload
	if err := decode(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, err)
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.RoomID).Str("name", p.UserName).Msg("join")
	// joined and the snapshot are delivered by the orchestrator.
	if _, err := ctl.Orch.Join(ctx, sid, p.RoomID, p.UserName, p.Role); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join rejected")
		ctl.sendError(conn, err)
	}
}

// handleLeave leaves the current room, the connection itself stays open.
func (ctl *SignalWSController) handleLeave(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	if err := ctl.Orch.Leave(ctx, sid); err != nil {
		ctl.sendError(conn, err)
	}
}
