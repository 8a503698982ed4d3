package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/estimate/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBadPayload   = errors.New("bad payload")
	ErrUnknownEvent = errors.New("unknown event")
	ErrRateLimited  = errors.New("rate limit exceeded")
)

func (ctl *SignalWSController) writePump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		// unblocks readPump
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("writePump ctx done")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(ctl.opts.WriteWait))
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		// ctx is already canceled here; the leave must still go through.
		if err := ctl.Orch.Disconnect(context.Background(), sid); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("disconnect")
		}
		ctl.limiter.Forget(sid)
		c.Close()
	}()

	pongWait := ctl.opts.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
			ctl.handleSignal(ctx, sid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, sid core.SessionID, c *WsSignalConn, data []byte) {
	// every frame counts against the budget, malformed ones included
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("rate limited")
		ctl.sendError(c, ErrRateLimited)
		return
	}
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		ctl.sendError(c, ErrBadPayload)
		return
	}

	switch env.Type {
	case core.EventJoinRoom:
		ctl.handleJoin(ctx, sid, c, env.Data)
	case core.EventLeaveRoom:
		ctl.handleLeave(ctx, sid, c)
	case core.EventVoteCast, core.EventVote:
		ctl.handleVote(ctx, sid, c, env.Data)
	case core.EventRevealVote:
		ctl.handleReveal(ctx, sid, c, env.Data)
	case core.EventResetVotes:
		ctl.handleReset(ctx, sid, c, env.Data)
	case core.EventWhoAmI:
		ctl.handleWhoAmI(ctx, sid, c)
	case core.EventPing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type))
	}
}

// decode fills p from an event's data. Missing data leaves p zero.
func decode(data json.RawMessage, p any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

func (ctl *SignalWSController) send(c *WsSignalConn, typ string, v any) {
	b, err := core.Encode(typ, v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("send marshal")
		return
	}
	_ = c.TrySend(b)
}

// sendError reports a rejected intent to the originating connection only.
func (ctl *SignalWSController) sendError(c *WsSignalConn, err error) {
	_ = c.TrySend(core.EncodeError(err))
}
