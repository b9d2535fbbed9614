package repository

import (
	"context"

	"gorm.io/gorm"
)

// gormStore is the production Store. WithinTx hands fn a store bound to the
// transaction's *gorm.DB; gorm opens a savepoint when the receiver is
// already transactional, so nested scopes compose without any process-wide
// bookkeeping.
type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *gormStore) Items() ItemRepository {
	return NewItemRepository(s.db)
}

func (s *gormStore) Bids() BidRepository {
	return NewBidRepository(s.db)
}

func (s *gormStore) Transactions() TransactionRepository {
	return NewTransactionRepository(s.db)
}

func (s *gormStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
