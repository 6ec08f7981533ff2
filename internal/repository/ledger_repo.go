package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/model"
)

// LedgerFilter narrows the history listing.
type LedgerFilter struct {
	ItemID     *uuid.UUID
	SupplierID *uuid.UUID
	Action     string // "add" | "deduct" | ""
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

// LedgerRepository is the append-only store of stock movements.
type LedgerRepository interface {
	// AppendTx inserts all entries in one statement. IDs are filled in.
	AppendTx(tx *gorm.DB, entries []model.LedgerEntry) error
	// RecentAdditionsTx returns, per item, the newest `window` addition
	// entries ordered incident_date DESC, created_at DESC, id DESC.
	RecentAdditionsTx(tx *gorm.DB, owner uuid.UUID, itemIDs []uuid.UUID, window int) (map[uuid.UUID][]model.LedgerEntry, error)
	List(ctx context.Context, owner uuid.UUID, filter LedgerFilter) ([]model.LedgerEntry, int64, error)
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) AppendTx(tx *gorm.DB, entries []model.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return tx.Omit("Item", "Supplier").Create(&entries).Error
}

const recentAdditionsSQL = `
SELECT id FROM (
  SELECT id, ROW_NUMBER() OVER (
    PARTITION BY item_id
    ORDER BY incident_date DESC, created_at DESC, id DESC
  ) AS rn
  FROM ledger_entries
  WHERE owner_id = ? AND item_id IN ? AND is_addition = ?
) ranked
WHERE rn <= ?`

func (r *ledgerRepo) RecentAdditionsTx(tx *gorm.DB, owner uuid.UUID, itemIDs []uuid.UUID, window int) (map[uuid.UUID][]model.LedgerEntry, error) {
	out := make(map[uuid.UUID][]model.LedgerEntry, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	var ids []uint64
	if err := tx.Raw(recentAdditionsSQL, owner, itemIDs, true, window).Scan(&ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	var entries []model.LedgerEntry
	if err := tx.Where("id IN ?", ids).
		Order("incident_date DESC, created_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	for _, e := range entries {
		out[e.ItemID] = append(out[e.ItemID], e)
	}
	return out, nil
}

func (r *ledgerRepo) List(ctx context.Context, owner uuid.UUID, filter LedgerFilter) ([]model.LedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).Where("owner_id = ?", owner)
	if filter.ItemID != nil {
		q = q.Where("item_id = ?", *filter.ItemID)
	}
	if filter.SupplierID != nil {
		q = q.Where("supplier_id = ?", *filter.SupplierID)
	}
	switch filter.Action {
	case "add":
		q = q.Where("is_addition = ?", true)
	case "deduct":
		q = q.Where("is_addition = ?", false)
	}
	if filter.From != nil {
		q = q.Where("incident_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("incident_date <= ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.LedgerEntry
	err := paginate(q, filter.Page, filter.Limit).
		Preload("Item").Preload("Supplier").
		Order("incident_date DESC, created_at DESC, id DESC").
		Find(&entries).Error
	return entries, total, err
}
