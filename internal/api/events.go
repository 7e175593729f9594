package api

import (
	"context"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/ws"
)

// EventHandler upgrades GET /datasets/:id/events to a WebSocket that
// streams the dataset's label events.
type EventHandler struct {
	appCtx      context.Context
	datasets    DatasetService
	hub         *ws.Hub
	corsOrigins []string
	log         *logrus.Logger
}

// NewEventHandler creates an EventHandler. Connections end when appCtx is
// cancelled.
func NewEventHandler(appCtx context.Context, datasets DatasetService, hub *ws.Hub, corsOrigins []string, log *logrus.Logger) *EventHandler {
	return &EventHandler{appCtx: appCtx, datasets: datasets, hub: hub, corsOrigins: corsOrigins, log: log}
}

// Subscribe handles GET /datasets/:id/events.
func (h *EventHandler) Subscribe(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	if _, err := h.datasets.GetDataset(c.Request.Context(), ids[0]); err != nil {
		respondServiceError(c, h.log, "checking dataset for subscription", err)
		return
	}

	// CORS origins double as WebSocket origin patterns; config validation
	// rejects wildcards.
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns:       h.corsOrigins,
		CompressionMode:      websocket.CompressionContextTakeover,
		CompressionThreshold: 128,
	})
	if err != nil {
		h.log.WithError(err).Error("websocket accept failed")
		return
	}

	client := ws.NewClient(h.hub, conn, ids[0])
	h.hub.Register(client)

	wsCtx, wsCancel := context.WithCancel(h.appCtx)
	go func() {
		select {
		case <-c.Request.Context().Done():
			wsCancel()
		case <-wsCtx.Done():
		}
	}()

	go client.WritePump(wsCtx)
	client.ReadPump(wsCtx)
	wsCancel()
}
