package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/dto"
	"github.com/JonathanM-A/costmate/internal/model"
	"github.com/JonathanM-A/costmate/internal/repository"
)

// InventoryService owns the stock write paths (purchases and manual
// consumption) and the stock / ledger read models.
type InventoryService interface {
	RecordPurchase(ctx context.Context, owner uuid.UUID, req dto.RecordPurchaseRequest) ([]dto.StockResponse, error)
	RecordConsumption(ctx context.Context, owner, itemID uuid.UUID, req dto.DecreaseStockRequest) (*dto.StockResponse, error)
	GetStock(ctx context.Context, owner, itemID uuid.UUID) (*dto.StockResponse, error)
	ListStock(ctx context.Context, owner uuid.UUID, filter dto.StockFilter) (*dto.StockListResponse, error)
	SetReorderLevel(ctx context.Context, owner, itemID uuid.UUID, req dto.ReorderLevelRequest) (*dto.StockResponse, error)
	RemoveStock(ctx context.Context, owner, itemID uuid.UUID) error
	ListHistory(ctx context.Context, owner uuid.UUID, filter dto.LedgerFilter) (*dto.LedgerListResponse, error)
}

type inventoryService struct {
	db        *gorm.DB
	items     repository.InventoryItemRepository
	suppliers repository.SupplierRepository
	stock     repository.StockRepository
	ledger    repository.LedgerRepository
	cascade   *Cascade
}

func NewInventoryService(
	db *gorm.DB,
	items repository.InventoryItemRepository,
	suppliers repository.SupplierRepository,
	stock repository.StockRepository,
	ledger repository.LedgerRepository,
	cascade *Cascade,
) InventoryService {
	return &inventoryService{db: db, items: items, suppliers: suppliers, stock: stock, ledger: ledger, cascade: cascade}
}

// ── RecordPurchase ───────────────────────────────────────────────────────────
//  1. Parse and validate every entry (no writes on failure)
//  2. BEGIN TX: check item visibility + supplier ownership, post to ledger, cascade
//  3. COMMIT, return refreshed stock rows

func (s *inventoryService) RecordPurchase(ctx context.Context, owner uuid.UUID, req dto.RecordPurchaseRequest) ([]dto.StockResponse, error) {
	if len(req.Entries) == 0 {
		return nil, invalid("entries", "at least one entry is required")
	}

	entries := make([]model.LedgerEntry, 0, len(req.Entries))
	itemIDs := make([]uuid.UUID, 0, len(req.Entries))
	var supplierIDs []uuid.UUID
	for i, e := range req.Entries {
		itemID, err := parseID(fmt.Sprintf("entries[%d].item_id", i), e.ItemID)
		if err != nil {
			return nil, err
		}
		supplierID, err := parseOptionalID(fmt.Sprintf("entries[%d].supplier_id", i), e.SupplierID)
		if err != nil {
			return nil, err
		}
		if !e.Quantity.IsPositive() {
			return nil, invalid(fmt.Sprintf("entries[%d].quantity", i), "quantity must be greater than zero")
		}
		if e.CostPrice.IsNegative() {
			return nil, invalid(fmt.Sprintf("entries[%d].cost_price", i), "must not be negative")
		}

		entry := model.LedgerEntry{
			ItemID:     itemID,
			SupplierID: supplierID,
			Quantity:   e.Quantity,
			IsAddition: true,
			CostPrice:  e.CostPrice,
			Reference:  "purchase",
		}
		if e.IncidentDate != nil && *e.IncidentDate != "" {
			d, err := parseDate(fmt.Sprintf("entries[%d].incident_date", i), *e.IncidentDate)
			if err != nil {
				return nil, err
			}
			entry.IncidentDate = d
		}
		entries = append(entries, entry)
		itemIDs = append(itemIDs, itemID)
		if supplierID != nil {
			supplierIDs = append(supplierIDs, *supplierID)
		}
	}

	var touched []uuid.UUID
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.checkItemsVisible(tx, owner, itemIDs); err != nil {
			return err
		}
		if err := s.checkSuppliers(tx, owner, supplierIDs); err != nil {
			return err
		}
		ids, err := s.cascade.Post(ctx, tx, TriggerPurchase, owner, entries)
		touched = ids
		return err
	})
	if err != nil {
		return nil, err
	}

	rows, err := s.stock.FindByItemsTx(s.db.WithContext(ctx), owner, touched)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toStockResponse(r))
	}
	return out, nil
}

// RecordConsumption removes quantity of one item. It fails without mutation
// when the balance is too low.
func (s *inventoryService) RecordConsumption(ctx context.Context, owner, itemID uuid.UUID, req dto.DecreaseStockRequest) (*dto.StockResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, invalid("quantity", "quantity must be greater than zero")
	}
	if _, err := s.activeStock(ctx, owner, itemID); err != nil {
		return nil, err
	}

	reference := req.Reason
	if reference == "" {
		reference = "manual"
	}
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		_, err := s.cascade.Post(ctx, tx, TriggerConsumption, owner, []model.LedgerEntry{{
			ItemID:    itemID,
			Quantity:  req.Quantity,
			Reference: reference,
		}})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetStock(ctx, owner, itemID)
}

func (s *inventoryService) GetStock(ctx context.Context, owner, itemID uuid.UUID) (*dto.StockResponse, error) {
	row, err := s.activeStock(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	resp := toStockResponse(*row)
	return &resp, nil
}

func (s *inventoryService) ListStock(ctx context.Context, owner uuid.UUID, filter dto.StockFilter) (*dto.StockListResponse, error) {
	rows, total, err := s.stock.List(ctx, owner, repository.StockFilter{
		Search:       filter.Search,
		BelowReorder: filter.BelowReorder,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.StockResponse, 0, len(rows))
	for _, r := range rows {
		data = append(data, toStockResponse(r))
	}
	return &dto.StockListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *inventoryService) SetReorderLevel(ctx context.Context, owner, itemID uuid.UUID, req dto.ReorderLevelRequest) (*dto.StockResponse, error) {
	if req.ReorderLevel.IsNegative() {
		return nil, invalid("reorder_level", "must not be negative")
	}
	n, err := s.stock.SetReorderLevel(ctx, owner, itemID, req.ReorderLevel)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("stock: %w", ErrNotFound)
	}
	return s.GetStock(ctx, owner, itemID)
}

// RemoveStock soft-deletes the stock row. The ledger is untouched; the next
// purchase of the item revives the row.
func (s *inventoryService) RemoveStock(ctx context.Context, owner, itemID uuid.UUID) error {
	n, err := s.stock.Deactivate(ctx, owner, itemID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("stock: %w", ErrNotFound)
	}
	return nil
}

func (s *inventoryService) ListHistory(ctx context.Context, owner uuid.UUID, filter dto.LedgerFilter) (*dto.LedgerListResponse, error) {
	f := repository.LedgerFilter{Action: filter.Action, Page: filter.Page, Limit: filter.Limit}
	var err error
	if f.ItemID, err = parseOptionalID("item_id", &filter.ItemID); err != nil {
		return nil, err
	}
	if f.SupplierID, err = parseOptionalID("supplier_id", &filter.SupplierID); err != nil {
		return nil, err
	}
	if filter.From != "" {
		from, err := parseDate("from", filter.From)
		if err != nil {
			return nil, err
		}
		f.From = &from
	}
	if filter.To != "" {
		to, err := parseDate("to", filter.To)
		if err != nil {
			return nil, err
		}
		f.To = &to
	}

	entries, total, err := s.ledger.List(ctx, owner, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		data = append(data, toLedgerEntryResponse(e))
	}
	return &dto.LedgerListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *inventoryService) activeStock(ctx context.Context, owner, itemID uuid.UUID) (*model.StockAggregate, error) {
	row, err := s.stock.FindByItem(ctx, owner, itemID)
	if err != nil {
		return nil, mapRepoErr(err, "stock")
	}
	if !row.IsActive {
		return nil, fmt.Errorf("stock: %w", ErrNotFound)
	}
	return row, nil
}

func (s *inventoryService) checkItemsVisible(tx *gorm.DB, owner uuid.UUID, ids []uuid.UUID) error {
	return checkItemsVisible(tx, s.items, owner, ids)
}

func (s *inventoryService) checkSuppliers(tx *gorm.DB, owner uuid.UUID, ids []uuid.UUID) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	n, err := s.suppliers.CountOwnedTx(tx, owner, ids)
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return invalid("supplier_id", "supplier not found")
	}
	return nil
}

// checkItemsVisible rejects any id the owner cannot reference.
func checkItemsVisible(tx *gorm.DB, items repository.InventoryItemRepository, owner uuid.UUID, ids []uuid.UUID) error {
	ids = uniqueIDs(ids)
	found, err := items.FindVisibleTx(tx, owner, ids)
	if err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}
	seen := make(map[uuid.UUID]bool, len(found))
	for _, it := range found {
		seen[it.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return invalid("item_id", fmt.Sprintf("inventory item %s not found", id))
		}
	}
	return nil
}
