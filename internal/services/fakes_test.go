package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"auctionhouse/internal/domain/bid"
	"auctionhouse/internal/domain/item"
	"auctionhouse/internal/domain/transaction"
	"auctionhouse/internal/domain/user"
	"auctionhouse/internal/repository"
	auction_errors "auctionhouse/pkg/errors"

	"github.com/google/uuid"
)

// fakeStore is an in-memory Store. WithinTx runs fn against the same store
// under a lock, which is enough to exercise the service logic without a
// database.
type fakeStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]user.User
	items        map[uuid.UUID]item.Item
	bids         []bid.Bid
	transactions map[uuid.UUID]transaction.Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[uuid.UUID]user.User),
		items:        make(map[uuid.UUID]item.Item),
		transactions: make(map[uuid.UUID]transaction.Transaction),
	}
}

func (s *fakeStore) Users() repository.UserRepository               { return &fakeUserRepo{s} }
func (s *fakeStore) Items() repository.ItemRepository               { return &fakeItemRepo{s} }
func (s *fakeStore) Bids() repository.BidRepository                 { return &fakeBidRepo{s} }
func (s *fakeStore) Transactions() repository.TransactionRepository { return &fakeTxRepo{s} }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

func (s *fakeStore) addUser(displayName string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user.User{
		ID:          uuid.New(),
		Email:       displayName + "@example.com",
		Username:    displayName,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
	}
	s.users[u.ID] = u
	return u.ID
}

func (s *fakeStore) addItem(i item.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[i.ID] = i
}

func (s *fakeStore) getItem(id uuid.UUID) item.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return auction_errors.ErrAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, auction_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, auction_errors.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, auction_errors.ErrNotFound
}

func (r *fakeUserRepo) DisplayName(ctx context.Context, id uuid.UUID) string {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return "Unknown"
	}
	return u.DisplayName
}

type fakeItemRepo struct{ s *fakeStore }

func (r *fakeItemRepo) Create(ctx context.Context, i *item.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.items[i.ID] = *i
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id uuid.UUID) (item.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.items[id]
	if !ok {
		return item.Item{}, auction_errors.ErrNotFound
	}
	return i, nil
}

func (r *fakeItemRepo) Update(ctx context.Context, i item.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[i.ID]; !ok {
		return auction_errors.ErrNotFound
	}
	r.s.items[i.ID] = i
	return nil
}

func (r *fakeItemRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.items[id]
	return ok, nil
}

func (r *fakeItemRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (item.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeItemRepo) FindExpired(ctx context.Context, now time.Time) ([]item.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var expired []item.Item
	for _, i := range r.s.items {
		if i.Status == item.StatusActive && !i.EndTime.After(now) {
			expired = append(expired, i)
		}
	}
	return expired, nil
}

func (r *fakeItemRepo) FindEndingWithin(ctx context.Context, now time.Time, horizon time.Duration) ([]item.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ending []item.Item
	for _, i := range r.s.items {
		if i.Status == item.StatusActive && i.EndTime.After(now) && !i.EndTime.After(now.Add(horizon)) {
			ending = append(ending, i)
		}
	}
	sort.Slice(ending, func(a, b int) bool { return ending[a].EndTime.Before(ending[b].EndTime) })
	return ending, nil
}

type fakeBidRepo struct{ s *fakeStore }

func (r *fakeBidRepo) Create(ctx context.Context, b *bid.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bids = append(r.s.bids, *b)
	return nil
}

func (r *fakeBidRepo) GetByItemID(ctx context.Context, itemID uuid.UUID) ([]bid.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []bid.Bid
	for _, b := range r.s.bids {
		if b.ItemID == itemID {
			out = append(out, b)
		}
	}
	// Newest first, matching the production query.
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (r *fakeBidRepo) CountByItemID(ctx context.Context, itemID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, b := range r.s.bids {
		if b.ItemID == itemID {
			count++
		}
	}
	return count, nil
}

func (r *fakeBidRepo) HighestBid(ctx context.Context, itemID uuid.UUID) (bid.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *bid.Bid
	for idx := range r.s.bids {
		b := r.s.bids[idx]
		if b.ItemID != itemID {
			continue
		}
		if best == nil ||
			b.Amount.GreaterThan(best.Amount) ||
			(b.Amount.Equal(best.Amount) && b.CreatedAt.Before(best.CreatedAt)) {
			best = &b
		}
	}
	if best == nil {
		return bid.Bid{}, auction_errors.ErrNotFound
	}
	return *best, nil
}

type fakeTxRepo struct{ s *fakeStore }

func (r *fakeTxRepo) Create(ctx context.Context, t *transaction.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.transactions[t.ItemID]; ok {
		return auction_errors.ErrAlreadyExists
	}
	r.s.transactions[t.ItemID] = *t
	return nil
}

func (r *fakeTxRepo) GetByItemID(ctx context.Context, itemID uuid.UUID) (transaction.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[itemID]
	if !ok {
		return transaction.Transaction{}, auction_errors.ErrNotFound
	}
	return t, nil
}

func (r *fakeTxRepo) TotalCommission(ctx context.Context) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := 0.0
	for _, t := range r.s.transactions {
		total += t.CommissionAmount.InexactFloat64()
	}
	return total, nil
}

func (r *fakeTxRepo) CommissionBetween(ctx context.Context, start, end time.Time) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := 0.0
	for _, t := range r.s.transactions {
		if !t.CompletedAt.Before(start) && !t.CompletedAt.After(end) {
			total += t.CommissionAmount.InexactFloat64()
		}
	}
	return total, nil
}

// sinkEvent is one recorded notifier call.
type sinkEvent struct {
	kind       string
	itemID     uuid.UUID
	userID     uuid.UUID
	amount     float64
	prevAmount float64
	status     string
	finalPrice *float64
	winnerID   *uuid.UUID
	winnerName *string
	reserveMet *bool
	seconds    int64
}

// recordingSink captures notifier calls for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (s *recordingSink) BidUpdate(itemID uuid.UUID, amount float64, bidderID uuid.UUID, bidderName string, at time.Time, reserveMet *bool) {
	s.record(sinkEvent{kind: "bid_update", itemID: itemID, userID: bidderID, amount: amount, reserveMet: reserveMet})
}

func (s *recordingSink) Outbid(itemID, previousBidderID uuid.UUID, newAmount, yourAmount float64) {
	s.record(sinkEvent{kind: "outbid", itemID: itemID, userID: previousBidderID, amount: newAmount, prevAmount: yourAmount})
}

func (s *recordingSink) AuctionEnding(itemID uuid.UUID, secondsRemaining int64) {
	s.record(sinkEvent{kind: "auction_ending", itemID: itemID, seconds: secondsRemaining})
}

func (s *recordingSink) AuctionEnded(itemID uuid.UUID, status string, finalPrice *float64, winnerID *uuid.UUID, winnerName *string) {
	s.record(sinkEvent{kind: "auction_ended", itemID: itemID, status: status, finalPrice: finalPrice, winnerID: winnerID, winnerName: winnerName})
}

func (s *recordingSink) record(e sinkEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) byKind(kind string) []sinkEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sinkEvent
	for _, e := range s.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}
