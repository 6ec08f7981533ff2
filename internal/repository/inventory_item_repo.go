package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/model"
)

type InventoryItemRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	// FindVisible returns the active items among ids that owner may use: its
	// own items and global defaults.
	FindVisible(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]model.InventoryItem, error)
	FindVisibleTx(tx *gorm.DB, owner uuid.UUID, ids []uuid.UUID) ([]model.InventoryItem, error)
	List(ctx context.Context, owner uuid.UUID, search string, page, limit int) ([]model.InventoryItem, int64, error)
}

type inventoryItemRepo struct{ db *gorm.DB }

func NewInventoryItemRepository(db *gorm.DB) InventoryItemRepository {
	return &inventoryItemRepo{db: db}
}

func (r *inventoryItemRepo) Create(ctx context.Context, item *model.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *inventoryItemRepo) FindVisible(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]model.InventoryItem, error) {
	return r.FindVisibleTx(r.db.WithContext(ctx), owner, ids)
}

func (r *inventoryItemRepo) FindVisibleTx(tx *gorm.DB, owner uuid.UUID, ids []uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if len(ids) == 0 {
		return items, nil
	}
	err := tx.Where("id IN ? AND is_active = ? AND (owner_id = ? OR is_default = ?)", ids, true, owner, true).
		Find(&items).Error
	return items, err
}

func (r *inventoryItemRepo) List(ctx context.Context, owner uuid.UUID, search string, page, limit int) ([]model.InventoryItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("is_active = ? AND (owner_id = ? OR is_default = ?)", true, owner, true)
	if search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.InventoryItem
	err := paginate(q, page, limit).Order("name ASC").Find(&items).Error
	return items, total, err
}
