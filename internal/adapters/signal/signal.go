package signal

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/estimate/internal/app/orch"
	"github.com/dkeye/estimate/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type Options struct {
	ReadLimit      int64
	PingPeriod     time.Duration
	WriteWait      time.Duration
	SendBuffer     int
	RateLimit      int
	RateInterval   time.Duration
	AllowedOrigins []string
}

func DefaultOptions() Options {
	return Options{
		ReadLimit:      4096,
		PingPeriod:     30 * time.Second,
		WriteWait:      5 * time.Second,
		SendBuffer:     32,
		RateLimit:      20,
		RateInterval:   time.Second,
		AllowedOrigins: []string{"*"},
	}
}

type SignalWSController struct {
	Orch *orch.Orchestrator

	opts     Options
	limiter  *RateLimiter
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	ctl := &SignalWSController{
		Orch:    o,
		opts:    opts,
		limiter: NewRateLimiter(opts.RateLimit, opts.RateInterval),
	}
	ctl.upgrader = websocket.Upgrader{CheckOrigin: ctl.checkOrigin}
	return ctl
}

// checkOrigin accepts same-host requests, requests without an Origin header
// and any origin on the allow-list. "*" allows everything.
func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	if slices.Contains(ctl.opts.AllowedOrigins, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(ctl.opts.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, buffer),
	}
}

// TrySend queues f without blocking. A full queue is reported as backpressure.
func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and serves one connection until either
// side goes away or ctx is canceled.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	logger := log.With().
		Str("module", "signal").
		Str("sid", string(sid)).
		Str("client_token", c.GetString("client_token")).
		Logger()

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("ws upgrade")
		return
	}
	logger.Info().Str("remote", c.ClientIP()).Msg("new WS connection")

	conn := newWsSignalConn(ws, ctl.opts.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	if err := ctl.Orch.Connect(ctx, sid, conn, cancel); err != nil {
		logger.Error().Err(err).Msg("register connection")
		cancel()
		conn.Close()
		return
	}

	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
