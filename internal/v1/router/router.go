// Package router implements the channel entry point (§4.1): it owns the
// single `/collab/{boardId}` upgrade endpoint, enforces the origin
// allow-list, looks up or creates the board's room, and hands the accepted
// connection to transport for its read loop.
package router

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/metrics"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/protocol"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/room"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/transport"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
	"go.uber.org/zap"
)

// Router serves the board-collaboration upgrade endpoint.
type Router struct {
	manager        *room.Manager
	allowedOrigins []string
}

// New builds a Router. allowedOrigins is a parsed CSV; empty (nil) means
// every origin is permitted, per §6.
func New(manager *room.Manager, allowedOrigins []string) *Router {
	return &Router{manager: manager, allowedOrigins: allowedOrigins}
}

// ServeWs is the gin handler mounted at GET /collab/:boardId. It answers
// 426 for a non-upgrade request, 404 for a malformed board id, 403 for a
// disallowed origin, and otherwise upgrades and hands the connection to
// transport.
func (rt *Router) ServeWs(c *gin.Context) {
	boardID := c.Param("boardId")
	if !validBoardID(boardID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if !websocket.IsWebSocketUpgrade(c.Request) {
		c.JSON(http.StatusUpgradeRequired, gin.H{"error": "upgrade required"})
		return
	}

	if err := validateOrigin(c.Request.Header.Get("Origin"), rt.allowedOrigins); err != nil {
		logging.Warn(c.Request.Context(), "origin rejected", zap.String("origin", c.Request.Header.Get("Origin")), zap.Error(err))
		c.JSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return validateOrigin(r.Header.Get("Origin"), rt.allowedOrigins) == nil
		},
		WriteBufferPool: &sync.Pool{New: func() any { return make([]byte, 4096) }},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error(c.Request.Context(), "websocket upgrade failed", zap.Error(err))
		return
	}

	ip := c.ClientIP()
	r := rt.manager.GetOrCreate(types.BoardIDType(boardID))
	metrics.WebsocketEvents.WithLabelValues("connect", "ok").Inc()

	go transport.RunSession(c.Request.Context(), r, conn, ip)
}

// validBoardID rejects the empty string and anything longer than §4.7's
// MAX_BOARD_ID_CHARS; the store/validator layers enforce everything else.
func validBoardID(id string) bool {
	return id != "" && len(id) <= protocol.MaxBoardIDChars
}

// validateOrigin mirrors the teacher's allow-list check (exact scheme+host
// match via url.Parse), generalized per §6: an empty allow-list
// (ALLOWED_ORIGINS unset) permits every origin, and a missing Origin header
// permits non-browser clients exactly as the teacher's helper does.
func validateOrigin(origin string, allowedOrigins []string) error {
	if len(allowedOrigins) == 0 || origin == "" {
		return nil
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return errOriginNotAllowed(origin)
	}

	for _, allowed := range allowedOrigins {
		allowedURL, err := url.Parse(allowed)
		if err != nil {
			continue
		}
		if originURL.Scheme == allowedURL.Scheme && originURL.Host == allowedURL.Host {
			return nil
		}
	}
	return errOriginNotAllowed(origin)
}

type errOriginNotAllowed string

func (e errOriginNotAllowed) Error() string { return "origin not allowed: " + string(e) }
