package orch

import (
	"github.com/dkeye/estimate/internal/app"
	"github.com/dkeye/estimate/internal/core"
	"github.com/dkeye/estimate/internal/domain"
	"github.com/rs/zerolog/log"
)

// publish sends one snapshot of room to its subscribers. Must run on the loop,
// after the mutation is complete.
func (o *Orchestrator) publish(room *domain.Room, event string) {
	frame, err := core.Encode(event, room.Snapshot())
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(room.ID)).Msg("encode snapshot")
		return
	}
	res := o.Hub.Publish(room.ID, frame)

	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room.ID, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("room", string(room.ID)).Str("sid", string(slow)).Msg("slow subscriber kicked")
			o.Registry.Cancel(slow)
		case app.NoAction:
			// the topic dropped it; listen again so the next snapshot reaches it
			if conn, ok := o.Registry.GetSignal(slow); ok {
				o.Hub.Subscribe(room.ID, slow, conn)
			}
		}
	}
}

// reply sends a frame to one connection only.
func (o *Orchestrator) reply(sid core.SessionID, conn core.SignalConnection, event string, data any) {
	frame, err := core.Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("encode reply")
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("event", event).Msg("reply dropped")
	}
}
