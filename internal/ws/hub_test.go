package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"auctionhouse/internal/domain/notification"
	"auctionhouse/internal/events"
	"auctionhouse/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueue is an in-memory notification queue with the same dedup rule as
// the real table.
type fakeQueue struct {
	mu            sync.Mutex
	notifications []notification.Notification
	markedIDs     []uuid.UUID
	cleanedUp     int
}

func (q *fakeQueue) Queue(ctx context.Context, n *notification.Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, existing := range q.notifications {
		if existing.EventID == n.EventID && existing.UserID == n.UserID {
			return nil
		}
	}
	q.notifications = append(q.notifications, *n)
	return nil
}

func (q *fakeQueue) GetPending(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []notification.Notification
	for _, n := range q.notifications {
		if n.UserID == userID && !n.Delivered {
			out = append(out, n)
		}
	}
	return out, nil
}

func (q *fakeQueue) MarkDelivered(ctx context.Context, ids []uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.markedIDs = append(q.markedIDs, ids...)
	for _, id := range ids {
		for i := range q.notifications {
			if q.notifications[i].ID == id {
				q.notifications[i].Delivered = true
			}
		}
	}
	return nil
}

func (q *fakeQueue) CleanupDelivered(ctx context.Context, olderThan time.Duration) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cleanedUp++
	return 0, nil
}

func (q *fakeQueue) queued() []notification.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]notification.Notification, len(q.notifications))
	copy(out, q.notifications)
	return out
}

func newTestHub() (*Hub, *fakeQueue) {
	queue := &fakeQueue{}
	return NewHub(queue, 24*time.Hour, logger.New(logger.DevelopmentMode)), queue
}

func newTestClient(userID uuid.UUID) *Client {
	return NewClient(nil, userID)
}

func receiveFrame(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case frame := <-c.send:
		return frame
	case <-time.After(time.Second):
		t.Fatal("expected a frame")
		return nil
	}
}

func itemEnvelope(itemID uuid.UUID) events.Envelope {
	frame, _ := json.Marshal(map[string]interface{}{
		"type":   "bid_update",
		"itemId": itemID.String(),
	})
	return events.Envelope{
		EventID:    uuid.New().String(),
		EventType:  "bid_update",
		ItemID:     itemID,
		OccurredAt: time.Now(),
		Frame:      frame,
	}
}

func userEnvelope(itemID, userID uuid.UUID) events.Envelope {
	env := itemEnvelope(itemID)
	env.EventType = "outbid"
	env.UserID = uuid.NullUUID{UUID: userID, Valid: true}
	return env
}

func TestSubscriptionBookkeeping(t *testing.T) {
	h, _ := newTestHub()
	ctx := context.Background()

	client := newTestClient(uuid.New())
	h.addClient(ctx, client)
	assert.Len(t, h.clients, 1)
	assert.Len(t, h.users[client.UserID], 1)

	itemID := uuid.New()
	h.subscribeClient(client, itemID)
	assert.Len(t, h.items[itemID], 1)
	assert.True(t, client.items[itemID])

	h.unsubscribeClient(client, itemID)
	assert.NotContains(t, h.items, itemID)
	assert.NotContains(t, client.items, itemID)

	h.removeClient(client)
	assert.Empty(t, h.clients)
	assert.NotContains(t, h.users, client.UserID)

	// The send channel is closed on removal.
	_, open := <-client.send
	assert.False(t, open)
}

func TestRemoveClientPurgesSubscriptions(t *testing.T) {
	h, _ := newTestHub()
	ctx := context.Background()

	itemID := uuid.New()
	staying := newTestClient(uuid.New())
	leaving := newTestClient(uuid.New())
	h.addClient(ctx, staying)
	h.addClient(ctx, leaving)
	h.subscribeClient(staying, itemID)
	h.subscribeClient(leaving, itemID)

	h.removeClient(leaving)
	assert.Len(t, h.items[itemID], 1)
	assert.Contains(t, h.items[itemID], staying)

	// Removing twice is a no-op.
	h.removeClient(leaving)
	assert.Len(t, h.clients, 1)
}

func TestDispatchBroadcastsToItemSubscribers(t *testing.T) {
	h, queue := newTestHub()
	ctx := context.Background()

	itemID := uuid.New()
	subscribed := newTestClient(uuid.New())
	other := newTestClient(uuid.New())
	h.addClient(ctx, subscribed)
	h.addClient(ctx, other)
	h.subscribeClient(subscribed, itemID)
	h.subscribeClient(other, uuid.New())

	env := itemEnvelope(itemID)
	h.dispatch(ctx, env)

	frame := receiveFrame(t, subscribed)
	assert.JSONEq(t, string(env.Frame), string(frame))
	assert.Empty(t, other.send)
	assert.Empty(t, queue.queued())
}

func TestDispatchToOfflineUserQueues(t *testing.T) {
	h, queue := newTestHub()
	ctx := context.Background()

	userID := uuid.New()
	env := userEnvelope(uuid.New(), userID)
	h.dispatch(ctx, env)

	queued := queue.queued()
	require.Len(t, queued, 1)
	assert.Equal(t, userID, queued[0].UserID)
	assert.Equal(t, env.EventID, queued[0].EventID)
	assert.Equal(t, notification.TypeOutbid, queued[0].Type)
	assert.False(t, queued[0].Delivered)
}

func TestDispatchToUserHitsAllConnections(t *testing.T) {
	h, queue := newTestHub()
	ctx := context.Background()

	userID := uuid.New()
	first := newTestClient(userID)
	second := newTestClient(userID)
	h.addClient(ctx, first)
	h.addClient(ctx, second)

	env := userEnvelope(uuid.New(), userID)
	h.dispatch(ctx, env)

	receiveFrame(t, first)
	receiveFrame(t, second)
	assert.Empty(t, queue.queued())
}

func TestDispatchQueuesOnSendTimeout(t *testing.T) {
	h, queue := newTestHub()
	ctx := context.Background()

	itemID := uuid.New()
	stuck := newTestClient(uuid.New())
	healthy := newTestClient(uuid.New())
	h.addClient(ctx, stuck)
	h.addClient(ctx, healthy)
	h.subscribeClient(stuck, itemID)
	h.subscribeClient(healthy, itemID)

	// Saturate the stuck client's buffer so its Send times out.
	for range cap(stuck.send) {
		stuck.send <- []byte("{}")
	}

	env := itemEnvelope(itemID)
	h.dispatch(ctx, env)

	// The healthy client still got the frame; the stuck one got a queued
	// notification instead.
	receiveFrame(t, healthy)
	queued := queue.queued()
	require.Len(t, queued, 1)
	assert.Equal(t, stuck.UserID, queued[0].UserID)
}

func TestDispatchQueuesWhenWritePumpStopped(t *testing.T) {
	h, queue := newTestHub()
	ctx := context.Background()

	itemID := uuid.New()
	gone := newTestClient(uuid.New())
	h.addClient(ctx, gone)
	h.subscribeClient(gone, itemID)

	// The write pump stops when the peer goes away; frames for the client
	// must fail fast and land in the queue, not pile up in the buffer.
	gone.close()

	env := itemEnvelope(itemID)
	h.dispatch(ctx, env)

	assert.Empty(t, gone.send)
	queued := queue.queued()
	require.Len(t, queued, 1)
	assert.Equal(t, gone.UserID, queued[0].UserID)
	assert.Equal(t, env.EventID, queued[0].EventID)
}

func TestReplayPendingOnConnect(t *testing.T) {
	h, queue := newTestHub()
	ctx := context.Background()

	userID := uuid.New()
	itemID := uuid.New()
	queuedAt := time.Now().Add(-time.Minute)
	for i := 0; i < 2; i++ {
		env := userEnvelope(itemID, userID)
		n := notification.New(userID, uuid.NullUUID{UUID: itemID, Valid: true},
			notification.TypeOutbid, env.EventID, env.Frame, queuedAt.Add(time.Duration(i)*time.Second))
		require.NoError(t, queue.Queue(ctx, n))
	}

	client := newTestClient(userID)
	h.addClient(ctx, client)

	for i := 0; i < 2; i++ {
		frame := receiveFrame(t, client)
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(frame, &m))
		assert.Equal(t, true, m["queued"])
		assert.Contains(t, m, "queuedAt")
	}

	assert.Len(t, queue.markedIDs, 2)
	pending, err := queue.GetPending(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A second connect replays nothing.
	second := newTestClient(userID)
	h.addClient(ctx, second)
	assert.Empty(t, second.send)
}

func TestQueueDedupsByEventAndUser(t *testing.T) {
	h, queue := newTestHub()
	ctx := context.Background()

	userID := uuid.New()
	env := userEnvelope(uuid.New(), userID)
	h.dispatch(ctx, env)
	h.dispatch(ctx, env)

	assert.Len(t, queue.queued(), 1)
}

func TestMarkQueuedInjectsReplayMarkers(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	out := markQueued([]byte(`{"type":"outbid","newBidAmount":200}`), at)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "outbid", m["type"])
	assert.Equal(t, true, m["queued"])
	assert.NotEmpty(t, m["queuedAt"])

	// Malformed frames pass through untouched.
	raw := []byte("not json")
	assert.Equal(t, raw, markQueued(raw, at))
}
