package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/dkeye/estimate/internal/app"
	"github.com/dkeye/estimate/internal/app/orch"
	"github.com/dkeye/estimate/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

type roomHandlers struct {
	orch *orch.Orchestrator
}

// GET /api/rooms
func (h *roomHandlers) list(c *gin.Context) {
	rooms, err := h.orch.ListRooms(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// POST /api/rooms hands out an unused code. The room appears on first join.
func (h *roomHandlers) create(c *gin.Context) {
	code, err := h.orch.NewRoomCode(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": code})
}

// GET /api/rooms/:id
func (h *roomHandlers) get(c *gin.Context) {
	id, err := domain.ParseRoomID(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	room, err := h.orch.Snapshot(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// GET /api/rooms/:id/qr renders the share link of a room as PNG.
func (h *roomHandlers) qr(c *gin.Context) {
	id, err := domain.ParseRoomID(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	png, err := qrcode.Encode(shareURL(c.Request, id), qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", string(id)).Msg("qr generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qr generation failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// shareURL respects TLS and X-Forwarded-Proto.
func shareURL(r *http.Request, id domain.RoomID) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: "/room/" + string(id)}
	return u.String()
}

func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRoomIDEmpty), errors.Is(err, domain.ErrRoomIDTooLong):
		status = http.StatusBadRequest
	case errors.Is(err, orch.ErrNoFreeRoomCode), errors.Is(err, orch.ErrStopped):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
