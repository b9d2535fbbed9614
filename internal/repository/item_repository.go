package repository

import (
	"context"
	"errors"
	"time"

	"auctionhouse/internal/domain/item"
	auction_errors "auctionhouse/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &PostgresItemRepository{db: db}
}

func (r *PostgresItemRepository) Create(ctx context.Context, i *item.Item) error {
	res := r.db.WithContext(ctx).Create(i)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) || isUniqueViolation(res.Error) {
			return auction_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresItemRepository) GetByID(ctx context.Context, id uuid.UUID) (item.Item, error) {
	var i item.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&i).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item.Item{}, auction_errors.ErrNotFound
		}
		return item.Item{}, err
	}
	return i, nil
}

func (r *PostgresItemRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (item.Item, error) {
	var i item.Item
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&i).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item.Item{}, auction_errors.ErrNotFound
		}
		return item.Item{}, err
	}
	return i, nil
}

func (r *PostgresItemRepository) Update(ctx context.Context, i item.Item) error {
	i.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Save(&i)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return auction_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresItemRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&item.Item{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresItemRepository) FindExpired(ctx context.Context, now time.Time) ([]item.Item, error) {
	var items []item.Item
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_time <= ?", item.StatusActive, now).
		Order("end_time ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresItemRepository) FindEndingWithin(ctx context.Context, now time.Time, horizon time.Duration) ([]item.Item, error) {
	var items []item.Item
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_time > ? AND end_time <= ?", item.StatusActive, now, now.Add(horizon)).
		Order("end_time ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
