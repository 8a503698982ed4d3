package signal

import (
	"context"

	"github.com/dkeye/estimate/internal/core"
)

func (ctl *SignalWSController) handleWhoAmI(
	ctx context.Context,
	sid core.SessionID,
	conn *WsSignalConn,
) {
	id, err := ctl.Orch.WhoAmI(ctx, sid)
	if err != nil {
		ctl.sendError(conn, err)
		return
	}
	ctl.send(conn, core.EventWhoAmI, id)
}
