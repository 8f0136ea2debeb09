package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"geo_tracker/internal/middleware"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

type hubMessage struct {
	trackerID uint
	payload   []byte
}

// TrackerHub manages active WebSocket watcher connections keyed by tracker
// id and broadcasts accepted events to them. Delivery is best-effort: a
// full broadcast channel drops the message with a warning. Writes to one
// connection are serialized through a per-connection mutex since
// gorilla/websocket supports at most one concurrent writer.
type TrackerHub struct {
	watchers  map[uint]map[*websocket.Conn]*sync.Mutex
	broadcast chan hubMessage
	mu        sync.Mutex
}

// NewTrackerHub creates a hub and starts its broadcasting goroutine.
func NewTrackerHub() *TrackerHub {
	hub := &TrackerHub{
		watchers:  make(map[uint]map[*websocket.Conn]*sync.Mutex),
		broadcast: make(chan hubMessage, 100),
	}
	go hub.run()
	return hub
}

func (h *TrackerHub) run() {
	for msg := range h.broadcast {
		h.mu.Lock()
		if conns, exists := h.watchers[msg.trackerID]; exists {
			for conn, writeMu := range conns {
				go func(c *websocket.Conn, writeMu *sync.Mutex, payload []byte) {
					writeMu.Lock()
					err := c.WriteMessage(websocket.TextMessage, payload)
					writeMu.Unlock()
					if err != nil {
						if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
							logrus.WithFields(logrus.Fields{
								"tracker_id": msg.trackerID,
								"conn_ptr":   fmt.Sprintf("%p", c),
							}).Info("Watcher connection closed during broadcast, unregistering.")
							h.UnregisterWatcher(msg.trackerID, c)
						} else {
							logrus.WithError(err).WithField("tracker_id", msg.trackerID).Warn("Failed to send event to watcher.")
						}
					}
				}(conn, writeMu, msg.payload)
			}
		}
		h.mu.Unlock()
	}
}

// RegisterWatcher subscribes a connection to one tracker's event stream.
func (h *TrackerHub) RegisterWatcher(trackerID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watchers[trackerID]; !ok {
		h.watchers[trackerID] = make(map[*websocket.Conn]*sync.Mutex)
	}
	h.watchers[trackerID][conn] = &sync.Mutex{}
	logrus.WithFields(logrus.Fields{
		"tracker_id": trackerID,
		"conn_ptr":   fmt.Sprintf("%p", conn),
	}).Info("Watcher registered with TrackerHub.")
}

// UnregisterWatcher removes a disconnected watcher.
func (h *TrackerHub) UnregisterWatcher(trackerID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.watchers[trackerID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.watchers, trackerID)
		}
	}
}

// Publish queues one serialized event for broadcast. Implements the
// pipeline's Publisher.
func (h *TrackerHub) Publish(trackerID uint, message []byte) {
	select {
	case h.broadcast <- hubMessage{trackerID: trackerID, payload: message}:
	default:
		logrus.Warn("Event broadcast channel full, dropping message.")
	}
}

// WebSocketController authenticates watcher connections and hands them to
// the hub.
type WebSocketController struct {
	hub *TrackerHub
	jwt *middleware.JWTAuth
}

func NewWebSocketController(hub *TrackerHub, jwt *middleware.JWTAuth) *WebSocketController {
	return &WebSocketController{hub: hub, jwt: jwt}
}

// HandleEventWebSocket upgrades a watcher connection. The JWT travels as a
// query parameter since browsers cannot set headers on websocket dials; the
// tracker to watch is given by tracker_id.
func (wc *WebSocketController) HandleEventWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
		return
	}
	if _, err := wc.jwt.ValidateToken(tokenString); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	trackerID, err := strconv.ParseUint(c.Query("tracker_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tracker_id parameter"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	defer conn.Close()

	wc.hub.RegisterWatcher(uint(trackerID), conn)
	defer wc.hub.UnregisterWatcher(uint(trackerID), conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("tracker_id", trackerID).Info("Watcher WebSocket closed.")
			} else {
				logrus.WithError(err).Errorf("Error reading WebSocket message from watcher of tracker %d", trackerID)
			}
			break
		}
		logrus.WithField("tracker_id", trackerID).Warn("Watcher sent unexpected message. Ignoring.")
	}
}
