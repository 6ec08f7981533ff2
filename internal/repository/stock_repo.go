package repository

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JonathanM-A/costmate/internal/model"
)

// StockFilter narrows the stock listing.
type StockFilter struct {
	Search       string
	BelowReorder bool
	Page         int
	Limit        int
}

// StockRepository maintains one running balance per (item, owner).
type StockRepository interface {
	// LockTx takes row locks on the existing aggregates for itemIDs, in item
	// order, and returns them keyed by item.
	LockTx(tx *gorm.DB, owner uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]model.StockAggregate, error)
	// ApplyDeltasTx adds each signed delta to its aggregate, creating missing
	// rows and reviving soft-deleted ones, in a single statement.
	ApplyDeltasTx(tx *gorm.DB, owner uuid.UUID, deltas map[uuid.UUID]decimal.Decimal) error
	FindByItemsTx(tx *gorm.DB, owner uuid.UUID, itemIDs []uuid.UUID) ([]model.StockAggregate, error)
	UpdateValuationTx(tx *gorm.DB, id uuid.UUID, costPerUnit, totalValue decimal.Decimal) error

	FindByItem(ctx context.Context, owner, itemID uuid.UUID) (*model.StockAggregate, error)
	List(ctx context.Context, owner uuid.UUID, filter StockFilter) ([]model.StockAggregate, int64, error)
	SetReorderLevel(ctx context.Context, owner, itemID uuid.UUID, level decimal.Decimal) (int64, error)
	Deactivate(ctx context.Context, owner, itemID uuid.UUID) (int64, error)
	// CountAtOrBelowReorder counts active aggregates among itemIDs whose
	// quantity is at or under their reorder level.
	CountAtOrBelowReorder(ctx context.Context, owner uuid.UUID, itemIDs []uuid.UUID) (int64, error)
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) LockTx(tx *gorm.DB, owner uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]model.StockAggregate, error) {
	out := make(map[uuid.UUID]model.StockAggregate, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	var rows []model.StockAggregate
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ? AND item_id IN ?", owner, itemIDs).
		Order("item_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ItemID] = s
	}
	return out, nil
}

func (r *stockRepo) ApplyDeltasTx(tx *gorm.DB, owner uuid.UUID, deltas map[uuid.UUID]decimal.Decimal) error {
	if len(deltas) == 0 {
		return nil
	}
	rows := make([]model.StockAggregate, 0, len(deltas))
	for itemID, delta := range deltas {
		rows = append(rows, model.StockAggregate{
			ItemID:       itemID,
			OwnerID:      owner,
			Quantity:     delta,
			ReorderLevel: decimal.Zero,
			CostPerUnit:  decimal.Zero,
			TotalValue:   decimal.Zero,
			IsActive:     true,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ItemID.String() < rows[j].ItemID.String() })

	return tx.Omit("Item").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "item_id"}, {Name: "owner_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr(
				"CASE WHEN stock_aggregates.is_active THEN stock_aggregates.quantity + excluded.quantity ELSE excluded.quantity END"),
			"is_active":  true,
			"updated_at": time.Now(),
		}),
	}).Create(&rows).Error
}

func (r *stockRepo) FindByItemsTx(tx *gorm.DB, owner uuid.UUID, itemIDs []uuid.UUID) ([]model.StockAggregate, error) {
	var rows []model.StockAggregate
	if len(itemIDs) == 0 {
		return rows, nil
	}
	err := tx.Preload("Item").
		Where("owner_id = ? AND item_id IN ?", owner, itemIDs).
		Order("item_id").
		Find(&rows).Error
	return rows, err
}

func (r *stockRepo) UpdateValuationTx(tx *gorm.DB, id uuid.UUID, costPerUnit, totalValue decimal.Decimal) error {
	return tx.Model(&model.StockAggregate{}).Where("id = ?", id).Updates(map[string]interface{}{
		"cost_per_unit": costPerUnit,
		"total_value":   totalValue,
		"updated_at":    time.Now(),
	}).Error
}

func (r *stockRepo) FindByItem(ctx context.Context, owner, itemID uuid.UUID) (*model.StockAggregate, error) {
	var s model.StockAggregate
	err := r.db.WithContext(ctx).Preload("Item").
		Where("owner_id = ? AND item_id = ?", owner, itemID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepo) List(ctx context.Context, owner uuid.UUID, filter StockFilter) ([]model.StockAggregate, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockAggregate{}).
		Joins("JOIN inventory_items ON inventory_items.id = stock_aggregates.item_id").
		Where("stock_aggregates.owner_id = ? AND stock_aggregates.is_active = ?", owner, true)
	if filter.Search != "" {
		q = q.Where("LOWER(inventory_items.name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	if filter.BelowReorder {
		q = q.Where("stock_aggregates.quantity < stock_aggregates.reorder_level")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.StockAggregate
	err := paginate(q, filter.Page, filter.Limit).
		Preload("Item").
		Order("inventory_items.name ASC").
		Find(&rows).Error
	return rows, total, err
}

func (r *stockRepo) SetReorderLevel(ctx context.Context, owner, itemID uuid.UUID, level decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.StockAggregate{}).
		Where("owner_id = ? AND item_id = ? AND is_active = ?", owner, itemID, true).
		Updates(map[string]interface{}{"reorder_level": level, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *stockRepo) Deactivate(ctx context.Context, owner, itemID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.StockAggregate{}).
		Where("owner_id = ? AND item_id = ? AND is_active = ?", owner, itemID, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *stockRepo) CountAtOrBelowReorder(ctx context.Context, owner uuid.UUID, itemIDs []uuid.UUID) (int64, error) {
	var n int64
	if len(itemIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&model.StockAggregate{}).
		Where("owner_id = ? AND item_id IN ? AND is_active = ?", owner, itemIDs, true).
		Where("quantity <= reorder_level").
		Count(&n).Error
	return n, err
}
