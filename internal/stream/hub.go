package stream

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "ride:"
	channelSuffix  = ":broadcast"
	channelPattern = channelPrefix + "*" + channelSuffix
)

// Hub fans ride updates out to websocket clients. With Redis configured every
// broadcast goes through pub/sub so clients on other instances see it too.
type Hub struct {
	redis   *redis.Client
	pubsub  *redis.PubSub
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	RideID string
	Send   chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		ctx := context.Background()
		ps := redisClient.PSubscribe(ctx, channelPattern)
		if _, err := ps.Receive(ctx); err != nil {
			log.Printf("redis subscribe error: %v", err)
			_ = ps.Close()
		} else {
			h.pubsub = ps
			go h.relay(ps.Channel())
		}
	}
	return h
}

func (h *Hub) Register(rideID string) *Client {
	client := &Client{
		RideID: rideID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[rideID] == nil {
		h.clients[rideID] = map[*Client]struct{}{}
	}
	h.clients[rideID][client] = struct{}{}
	return client
}

// Unregister removes client and closes its Send channel. Repeated calls are
// no-ops.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rideClients := h.clients[client.RideID]
	if _, ok := rideClients[client]; !ok {
		return
	}
	delete(rideClients, client)
	if len(rideClients) == 0 {
		delete(h.clients, client.RideID)
	}
	close(client.Send)
}

// Broadcast publishes payload to every client watching rideID. Local delivery
// is used when Redis is absent or publishing fails.
func (h *Hub) Broadcast(rideID string, payload []byte) {
	if h.pubsub != nil {
		err := h.redis.Publish(context.Background(), redisChannel(rideID), payload).Err()
		if err == nil {
			return
		}
		log.Printf("redis publish error: %v", err)
	}
	h.deliver(rideID, payload)
}

// Close stops the Redis subscription.
func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}
	return h.pubsub.Close()
}

func (h *Hub) deliver(rideID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[rideID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) relay(messages <-chan *redis.Message) {
	for msg := range messages {
		rideID := rideIDFromChannel(msg.Channel)
		if rideID == "" {
			continue
		}
		h.deliver(rideID, []byte(msg.Payload))
	}
}

func redisChannel(rideID string) string {
	return channelPrefix + rideID + channelSuffix
}

func rideIDFromChannel(ch string) string {
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
