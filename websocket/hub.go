package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationTypeConnected  = "connected"
	NotificationTypeInvalidate = "invalidate"
)

const invalidationChannel = "profiradce:invalidations"

// Notification represents a message sent over WebSocket. Invalidation
// notices carry the cache collections the client should mark stale.
type Notification struct {
	Type        string   `json:"type"`
	Message     string   `json:"message,omitempty"`
	Collections []string `json:"collections,omitempty"`
	UserID      string   `json:"userID,omitempty"`
}

// invalidationEnvelope is the Redis pub/sub wire form of an invalidation.
type invalidationEnvelope struct {
	UserID      string   `json:"userId"`
	Collections []string `json:"collections"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
}

// Hub maintains the set of active dashboard sessions and pushes cache
// invalidation notices to them. With Redis configured, notices published by
// other instances are relayed too.
type Hub struct {
	clients    map[primitive.ObjectID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	redis      *redis.Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance. redisClient may be nil; the hub then
// only serves sessions connected to this instance.
func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		redis:      redisClient,
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	if h.redis != nil {
		go h.relayInvalidations()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.UserID]; ok {
				delete(conns, client)
				if len(conns) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// sendToUser writes a notification to every session of the user.
func (h *Hub) sendToUser(userID primitive.ObjectID, notification Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		if err := client.Conn.WriteJSON(notification); err != nil {
			log.Printf("websocket write to %s failed: %v", userID.Hex(), err)
		}
	}
}

// NotifyInvalidation tells the user's dashboard sessions to mark the given
// cache collections stale. With Redis configured the notice goes through
// pub/sub so every instance, including this one, delivers it; otherwise it
// is written straight to local sessions.
func (h *Hub) NotifyInvalidation(userID primitive.ObjectID, collections ...string) {
	if h.redis == nil {
		h.sendToUser(userID, Notification{
			Type:        NotificationTypeInvalidate,
			Collections: collections,
		})
		return
	}

	payload, err := json.Marshal(invalidationEnvelope{
		UserID:      userID.Hex(),
		Collections: collections,
	})
	if err != nil {
		return
	}
	if err := h.redis.Publish(context.Background(), invalidationChannel, payload).Err(); err != nil {
		log.Printf("publishing invalidation failed: %v", err)
	}
}

// relayInvalidations forwards invalidation notices published by other
// instances to locally connected sessions.
func (h *Hub) relayInvalidations() {
	sub := h.redis.Subscribe(context.Background(), invalidationChannel)
	for msg := range sub.Channel() {
		var envelope invalidationEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			continue
		}
		userID, err := primitive.ObjectIDFromHex(envelope.UserID)
		if err != nil {
			continue
		}
		h.sendToUser(userID, Notification{
			Type:        NotificationTypeInvalidate,
			Collections: envelope.Collections,
		})
	}
}
