package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"auctionhouse/internal/domain/notification"
	"auctionhouse/internal/events"
	"auctionhouse/internal/metrics"
	"auctionhouse/internal/repository"
	"auctionhouse/pkg/logger"

	"github.com/google/uuid"
)

// subscriptionRequest asks the hub to (un)subscribe a client to an item.
type subscriptionRequest struct {
	client    *Client
	itemID    uuid.UUID
	subscribe bool
}

// cleanupProbability is the chance a reconnect also prunes old delivered
// notifications, so cleanup piggybacks on traffic without a dedicated job.
const cleanupProbability = 0.05

// Hub is the connection registry: it tracks live clients, per-item
// subscriber sets, and per-user connection sets. All maps are touched only
// by the Run loop, which is also the single dispatch path that keeps
// per-item delivery in publish order.
type Hub struct {
	clients map[string]*Client
	items   map[uuid.UUID]map[*Client]struct{}
	users   map[uuid.UUID]map[*Client]struct{}

	register     chan *Client
	unregister   chan *Client
	subscription chan subscriptionRequest
	deliver      chan events.Envelope

	queue     repository.NotificationRepository
	retention time.Duration
	log       *logger.Logger
}

func NewHub(queue repository.NotificationRepository, retention time.Duration, log *logger.Logger) *Hub {
	return &Hub{
		clients:      make(map[string]*Client),
		items:        make(map[uuid.UUID]map[*Client]struct{}),
		users:        make(map[uuid.UUID]map[*Client]struct{}),
		register:     make(chan *Client, 256),
		unregister:   make(chan *Client, 256),
		subscription: make(chan subscriptionRequest, 512),
		deliver:      make(chan events.Envelope, 1024),
		queue:        queue,
		retention:    retention,
		log:          log,
	}
}

// Run owns every mutation of the registry and every broadcast.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(ctx, client)
		case client := <-h.unregister:
			h.removeClient(client)
		case req := <-h.subscription:
			if req.subscribe {
				h.subscribeClient(req.client, req.itemID)
			} else {
				h.unsubscribeClient(req.client, req.itemID)
			}
		case env := <-h.deliver:
			h.dispatch(ctx, env)
		}
	}
}

func (h *Hub) Register(client *Client)   { h.register <- client }
func (h *Hub) Unregister(client *Client) { h.unregister <- client }

func (h *Hub) Subscribe(client *Client, itemID uuid.UUID) {
	h.subscription <- subscriptionRequest{client: client, itemID: itemID, subscribe: true}
}

func (h *Hub) Unsubscribe(client *Client, itemID uuid.UUID) {
	h.subscription <- subscriptionRequest{client: client, itemID: itemID, subscribe: false}
}

// Deliver hands an envelope from the event bus to the dispatch loop.
func (h *Hub) Deliver(env events.Envelope) { h.deliver <- env }

// PumpEvents forwards bus envelopes into the dispatch loop until ctx ends.
func (h *Hub) PumpEvents(ctx context.Context, envelopes <-chan events.Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-envelopes:
			if !ok {
				return
			}
			h.Deliver(env)
		}
	}
}

func (h *Hub) addClient(ctx context.Context, client *Client) {
	h.clients[client.ID] = client
	if h.users[client.UserID] == nil {
		h.users[client.UserID] = make(map[*Client]struct{})
	}
	h.users[client.UserID][client] = struct{}{}
	metrics.ConnectedClients.Set(float64(len(h.clients)))

	h.replayPending(ctx, client)

	if rand.Float64() < cleanupProbability {
		if n, err := h.queue.CleanupDelivered(ctx, h.retention); err == nil && n > 0 {
			h.log.Infof("cleaned up %d delivered notifications", n)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)

	for itemID := range client.items {
		if subscribers, ok := h.items[itemID]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.items, itemID)
			}
		}
	}

	if conns, ok := h.users[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.users, client.UserID)
		}
	}

	close(client.send)
	metrics.ConnectedClients.Set(float64(len(h.clients)))
}

func (h *Hub) subscribeClient(client *Client, itemID uuid.UUID) {
	if _, ok := h.items[itemID]; !ok {
		h.items[itemID] = make(map[*Client]struct{})
	}
	h.items[itemID][client] = struct{}{}
	client.items[itemID] = true
}

func (h *Hub) unsubscribeClient(client *Client, itemID uuid.UUID) {
	if subscribers, ok := h.items[itemID]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.items, itemID)
		}
	}
	delete(client.items, itemID)
}

// dispatch delivers one envelope. Item events go to every subscriber of the
// item; user-directed events go to the user's live connections or straight
// to the queue. Each individual failure queues one notification; a partial
// failure never aborts the rest of the fan-out.
func (h *Hub) dispatch(ctx context.Context, env events.Envelope) {
	if env.UserID.Valid {
		h.dispatchToUser(ctx, env)
		return
	}

	// The delivered counter is incremented by the write pump once the frame
	// actually hits the socket, not here on enqueue.
	for client := range h.items[env.ItemID] {
		if err := client.Send(env.Frame); err != nil {
			h.log.Warnf("send to client %s failed: %v", client.ID, err)
			h.queueForUser(ctx, client.UserID, env)
		}
	}
}

func (h *Hub) dispatchToUser(ctx context.Context, env events.Envelope) {
	conns := h.users[env.UserID.UUID]
	if len(conns) == 0 {
		h.queueForUser(ctx, env.UserID.UUID, env)
		return
	}
	for client := range conns {
		if err := client.Send(env.Frame); err != nil {
			h.log.Warnf("send to client %s failed: %v", client.ID, err)
			h.queueForUser(ctx, client.UserID, env)
		}
	}
}

func (h *Hub) queueForUser(ctx context.Context, userID uuid.UUID, env events.Envelope) {
	n := notification.New(
		userID,
		uuid.NullUUID{UUID: env.ItemID, Valid: true},
		notification.Type(env.EventType),
		env.EventID,
		env.Frame,
		time.Now(),
	)
	if err := h.queue.Queue(ctx, n); err != nil {
		h.log.Errorf("failed to queue %s notification for user %s: %v", env.EventType, userID, err)
		return
	}
	metrics.NotificationsQueuedTotal.Inc()
}

// replayPending delivers every undelivered notification for the user, in
// creation order, marked so clients can tell backfill from live traffic.
func (h *Hub) replayPending(ctx context.Context, client *Client) {
	pending, err := h.queue.GetPending(ctx, client.UserID)
	if err != nil {
		h.log.Errorf("failed to load pending notifications for user %s: %v", client.UserID, err)
		return
	}
	if len(pending) == 0 {
		return
	}

	delivered := make([]uuid.UUID, 0, len(pending))
	for _, n := range pending {
		if err := client.Send(markQueued(n.Payload, n.CreatedAt)); err != nil {
			// Leave the rest undelivered; the next connect retries them.
			break
		}
		delivered = append(delivered, n.ID)
	}
	if len(delivered) == 0 {
		return
	}
	if err := h.queue.MarkDelivered(ctx, delivered); err != nil {
		h.log.Errorf("failed to mark notifications delivered for user %s: %v", client.UserID, err)
		return
	}
	metrics.NotificationsReplayedTotal.Add(float64(len(delivered)))
	h.log.Infof("replayed %d queued notifications to user %s", len(delivered), client.UserID)
}

// markQueued stamps a stored frame with the replay markers.
func markQueued(frame []byte, queuedAt time.Time) []byte {
	var m map[string]interface{}
	if err := json.Unmarshal(frame, &m); err != nil {
		return frame
	}
	m["queued"] = true
	m["queuedAt"] = queuedAt
	out, err := json.Marshal(m)
	if err != nil {
		return frame
	}
	return out
}
