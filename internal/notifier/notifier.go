package notifier

import (
	"context"
	"encoding/json"
	"time"

	"auctionhouse/internal/events"
	"auctionhouse/internal/metrics"
	"auctionhouse/pkg/logger"

	"github.com/google/uuid"
)

// Sink is what the bid engine and the completion scheduler emit into. All
// methods are best-effort: failures are logged, never returned.
type Sink interface {
	BidUpdate(itemID uuid.UUID, amount float64, bidderID uuid.UUID, bidderName string, at time.Time, reserveMet *bool)
	Outbid(itemID, previousBidderID uuid.UUID, newAmount, yourAmount float64)
	AuctionEnding(itemID uuid.UUID, secondsRemaining int64)
	AuctionEnded(itemID uuid.UUID, status string, finalPrice *float64, winnerID *uuid.UUID, winnerName *string)
}

// Notifier turns domain events into wire frames and publishes them on the
// event bus. Every frame for every item funnels through the single Run
// goroutine, so frames for one item are published in enqueue order, which
// under the bid engine's row lock is commit order.
type Notifier struct {
	bus   events.Publisher
	log   *logger.Logger
	queue chan events.Envelope
}

const (
	publishTimeout = time.Second
	// enqueueTimeout is how long an emitter blocks on a saturated queue
	// before the event is abandoned. Backpressure on the callers is
	// preferable to silently shedding events.
	enqueueTimeout = 2 * time.Second
)

func New(bus events.Publisher, log *logger.Logger) *Notifier {
	return &Notifier{
		bus:   bus,
		log:   log,
		queue: make(chan events.Envelope, 1024),
	}
}

// Run drains the queue until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-n.queue:
			n.publish(ctx, env)
		}
	}
}

func (n *Notifier) publish(ctx context.Context, env events.Envelope) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := n.bus.Publish(pubCtx, env); err != nil {
		n.log.Errorf("failed to publish %s event %s: %v", env.EventType, env.EventID, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(env.EventType).Inc()
}

func (n *Notifier) enqueue(env events.Envelope) {
	select {
	case n.queue <- env:
	case <-time.After(enqueueTimeout):
		n.log.Errorf("notifier queue saturated, dropping %s event %s", env.EventType, env.EventID)
	}
}

func (n *Notifier) BidUpdate(itemID uuid.UUID, amount float64, bidderID uuid.UUID, bidderName string, at time.Time, reserveMet *bool) {
	eventID := uuid.New().String()
	frame, err := json.Marshal(BidUpdateFrame{
		Type:       EventBidUpdate,
		EventID:    eventID,
		ItemID:     itemID,
		BidAmount:  amount,
		BidderID:   bidderID,
		BidderName: bidderName,
		Timestamp:  at,
		ReserveMet: reserveMet,
	})
	if err != nil {
		n.log.Errorf("failed to marshal bid_update frame: %v", err)
		return
	}
	n.enqueue(events.Envelope{
		EventID:    eventID,
		EventType:  EventBidUpdate,
		ItemID:     itemID,
		OccurredAt: at,
		Frame:      frame,
	})
}

func (n *Notifier) Outbid(itemID, previousBidderID uuid.UUID, newAmount, yourAmount float64) {
	eventID := uuid.New().String()
	frame, err := json.Marshal(OutbidFrame{
		Type:          EventOutbid,
		EventID:       eventID,
		ItemID:        itemID,
		NewBidAmount:  newAmount,
		YourBidAmount: yourAmount,
	})
	if err != nil {
		n.log.Errorf("failed to marshal outbid frame: %v", err)
		return
	}
	n.enqueue(events.Envelope{
		EventID:    eventID,
		EventType:  EventOutbid,
		ItemID:     itemID,
		UserID:     uuid.NullUUID{UUID: previousBidderID, Valid: true},
		OccurredAt: time.Now(),
		Frame:      frame,
	})
}

func (n *Notifier) AuctionEnding(itemID uuid.UUID, secondsRemaining int64) {
	eventID := uuid.New().String()
	frame, err := json.Marshal(AuctionEndingFrame{
		Type:             EventAuctionEnding,
		EventID:          eventID,
		ItemID:           itemID,
		SecondsRemaining: secondsRemaining,
	})
	if err != nil {
		n.log.Errorf("failed to marshal auction_ending frame: %v", err)
		return
	}
	n.enqueue(events.Envelope{
		EventID:    eventID,
		EventType:  EventAuctionEnding,
		ItemID:     itemID,
		OccurredAt: time.Now(),
		Frame:      frame,
	})
}

func (n *Notifier) AuctionEnded(itemID uuid.UUID, status string, finalPrice *float64, winnerID *uuid.UUID, winnerName *string) {
	eventID := uuid.New().String()
	frame, err := json.Marshal(AuctionEndedFrame{
		Type:       EventAuctionEnded,
		EventID:    eventID,
		ItemID:     itemID,
		Status:     status,
		FinalPrice: finalPrice,
		WinnerID:   winnerID,
		WinnerName: winnerName,
	})
	if err != nil {
		n.log.Errorf("failed to marshal auction_ended frame: %v", err)
		return
	}
	n.enqueue(events.Envelope{
		EventID:    eventID,
		EventType:  EventAuctionEnded,
		ItemID:     itemID,
		OccurredAt: time.Now(),
		Frame:      frame,
	})
}
