package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/estimate/internal/core"
	"github.com/rs/zerolog/log"
)

type votePayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Vote   string `json:"vote"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

func (ctl *SignalWSController) handleVote(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	data json.RawMessage,
) {
	var p votePayload
	if err := decode(data, &p); err != nil {
		ctl.sendError(conn, err)
		return
	}
	if err := ctl.Orch.CastVote(ctx, sid, p.RoomID, p.UserID, p.Vote); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("vote rejected")
		ctl.sendError(conn, err)
	}
}

func (ctl *SignalWSController) handleReveal(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	data json.RawMessage,
) {
	var p roomPayload
	if err := decode(data, &p); err != nil {
		ctl.sendError(conn, err)
		return
	}
	if err := ctl.Orch.Reveal(ctx, sid, p.RoomID); err != nil {
		ctl.sendError(conn, err)
	}
}

func (ctl *SignalWSController) handleReset(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
	data json.RawMessage,
) {
	var p roomPayload
	if err := decode(data, &p); err != nil {
		ctl.sendError(conn, err)
		return
	}
	if err := ctl.Orch.Reset(ctx, sid, p.RoomID); err != nil {
		ctl.sendError(conn, err)
	}
}
