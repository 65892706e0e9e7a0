package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// GuestPrefix marks the server-assigned identity of a connection without a token.
// Guest holds live as long as their hold TTL and cannot be released from another connection.
const GuestPrefix = "guest-"

// Handler upgrades storefront connections and hands them to the hub
type Handler struct {
	hub     *Hub
	origins map[string]bool
}

func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Handler{hub: hub, origins: origins}
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkOrigin admits non-browser clients, which send no Origin, and configured browser origins
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return h.origins["*"] || h.origins[origin]
}

// ServeWS godoc
// @Summary      Real-time seat channel
// @Description  Upgrades to a WebSocket carrying joinEvent, reserveSeat and releaseSeat requests and seat broadcasts
// @Tags         realtime
// @Success      101
// @Router       /ws [get]
func (h *Handler) ServeWS(ctx *gin.Context) {
	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.hub.logger.Warn("websocket upgrade failed", "ip", ctx.ClientIP(), "error", err)
		return
	}

	userID := ctx.GetString("user_id")
	if userID == "" {
		userID = GuestPrefix + uuid.NewString()
	}
	client := newClient(h.hub, conn, userID)
	if !h.hub.send(h.hub.register, client) {
		_ = conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}

// SetupRealtimeRoutes mounts the WebSocket endpoint behind the given identity middleware
func SetupRealtimeRoutes(router *gin.Engine, handler *Handler, identity ...gin.HandlerFunc) {
	handlers := append(identity, handler.ServeWS)
	router.GET("/ws", handlers...)
}
