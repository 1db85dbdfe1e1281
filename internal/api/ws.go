package api

import (
	"net/http"
	"sync"

	"taskdeck/internal/model"
	"taskdeck/pkg/auth"
	"taskdeck/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub fans unlock events out to a user's open websocket connections. It
// implements service.UnlockPublisher.
type Hub struct {
	mu    sync.Mutex
	conns map[int64]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[int64]map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) add(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

func (h *Hub) remove(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns[userID], conn)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

func (h *Hub) PublishUnlocks(userID int64, achievements []*model.Achievement) {
	log := logger.Logger()

	unlocked := make([]achievementResponse, len(achievements))
	for i, a := range achievements {
		unlocked[i] = toAchievementResponse(a)
	}

	data, err := json.Marshal(wsMessage{
		Type: "achievements_unlocked",
		Data: unlocked,
	})
	if err != nil {
		log.Error("failed to marshal unlock event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns[userID] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Info("failed to push unlock event", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
}

type wsRoutes struct {
	hub *Hub
	a   *auth.BearerAuth
}

func NewWSRoutes(handler *gin.RouterGroup, hub *Hub, a *auth.BearerAuth) {
	r := &wsRoutes{hub: hub, a: a}

	h := handler.Group("/ws")
	h.Use(a.Middleware())
	h.GET("", r.handleWebSocket)
}

func (r *wsRoutes) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	r.hub.add(userID, conn)

	go func() {
		defer func() {
			r.hub.remove(userID, conn)
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Info("websocket unexpected close", zap.Int64("user_id", userID), zap.Error(err))
				}
				return
			}
		}
	}()
}
