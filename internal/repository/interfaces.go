package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"auctionhouse/internal/domain/bid"
	"auctionhouse/internal/domain/item"
	"auctionhouse/internal/domain/notification"
	"auctionhouse/internal/domain/transaction"
	"auctionhouse/internal/domain/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)

	// DisplayName resolves a user id to a display name, falling back to
	// "Unknown" for missing users so broadcasts never fail on a lookup.
	DisplayName(ctx context.Context, id uuid.UUID) string
}

type ItemRepository interface {
	Create(ctx context.Context, i *item.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (item.Item, error)
	Update(ctx context.Context, i item.Item) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// GetForUpdate reads the item under a row lock. Callers must already be
	// inside a transaction scope; bids on the same item serialize here.
	GetForUpdate(ctx context.Context, id uuid.UUID) (item.Item, error)

	// FindExpired returns items still marked active whose end time has
	// passed. Resolved items fall out of this set, which is what makes the
	// completion sweep idempotent.
	FindExpired(ctx context.Context, now time.Time) ([]item.Item, error)

	// FindEndingWithin returns active items whose end time falls inside
	// (now, now+horizon], ordered soonest first.
	FindEndingWithin(ctx context.Context, now time.Time, horizon time.Duration) ([]item.Item, error)
}

type BidRepository interface {
	Create(ctx context.Context, b *bid.Bid) error
	GetByItemID(ctx context.Context, itemID uuid.UUID) ([]bid.Bid, error)
	CountByItemID(ctx context.Context, itemID uuid.UUID) (int64, error)

	// HighestBid returns the winning bid: highest amount, earliest
	// timestamp as tie-break. ErrNotFound when no bids exist.
	HighestBid(ctx context.Context, itemID uuid.UUID) (bid.Bid, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, t *transaction.Transaction) error
	GetByItemID(ctx context.Context, itemID uuid.UUID) (transaction.Transaction, error)
	TotalCommission(ctx context.Context) (float64, error)
	CommissionBetween(ctx context.Context, start, end time.Time) (float64, error)
}

type NotificationRepository interface {
	Queue(ctx context.Context, n *notification.Notification) error
	GetPending(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error)
	MarkDelivered(ctx context.Context, ids []uuid.UUID) error
	CleanupDelivered(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Store bundles the repositories behind a single transactional boundary.
// WithinTx runs fn against a store whose repositories share one database
// transaction; nested calls reuse the surrounding scope via savepoints.
type Store interface {
	Users() UserRepository
	Items() ItemRepository
	Bids() BidRepository
	Transactions() TransactionRepository

	WithinTx(ctx context.Context, fn func(Store) error) error
}
