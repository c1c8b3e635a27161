package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tutor-chat/sink"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS layer; the upgrade
	// itself accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Websocket upgrades the connection and registers the caller for live
// delivery. A reconnect from the same user displaces this registration;
// the deferred disconnect passes its own sink so that when the stale
// read loop eventually ends, it removes only its own handle and never
// the fresh one.
func (h *Handler) Websocket(bufferSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CallerIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no identity"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", "user_id", identity.UserID, "error", err)
			return
		}
		defer conn.Close()

		wsSink := sink.NewWs(h.log, bufferSize)
		h.service.Connect(identity.UserID, wsSink)
		defer h.service.Disconnect(identity.UserID, wsSink)

		h.log.Info("user connected", "user_id", identity.UserID)
		defer h.log.Info("user disconnected", "user_id", identity.UserID)

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		go wsSink.WritePump(ctx, conn)

		// The read loop exists to detect the client closing; inbound
		// frames are not part of the protocol and are discarded.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
