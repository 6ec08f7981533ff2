package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JonathanM-A/costmate/internal/model"
)

// OrderFilter narrows the order listing.
type OrderFilter struct {
	Status     string
	CustomerID *uuid.UUID
	Page       int
	Limit      int
}

// Requirement is one (order line, recipe ingredient) pair: LineQuantity
// units of a recipe each needing IngredientQuantity of ItemID.
type Requirement struct {
	RecipeID           uuid.UUID
	ItemID             uuid.UUID
	IngredientQuantity decimal.Decimal
	LineQuantity       int
}

type OrderRepository interface {
	// CreateTx inserts the order header and its lines.
	CreateTx(tx *gorm.DB, o *model.Order) error
	// LastOrderNoTx returns the order number with the highest numeric suffix,
	// or "" when there are no orders.
	LastOrderNoTx(tx *gorm.DB) (string, error)
	LockTx(tx *gorm.DB, owner, id uuid.UUID) (*model.Order, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus, completedAt *time.Time) error
	RequirementsTx(tx *gorm.DB, orderID uuid.UUID) ([]Requirement, error)

	FindByID(ctx context.Context, owner, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, owner uuid.UUID, filter OrderFilter) ([]model.Order, int64, error)
	IngredientItemIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	lines := o.Lines
	if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].OrderID = o.ID
	}
	if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
		return err
	}
	o.Lines = lines
	return nil
}

// Zero-padded suffixes compare correctly once length is taken into account,
// which keeps "ORD-100000" above "ORD-99999".
func (r *orderRepo) LastOrderNoTx(tx *gorm.DB) (string, error) {
	var o model.Order
	err := tx.Select("order_no").
		Where("order_no LIKE ?", "ORD-%").
		Order("LENGTH(order_no) DESC, order_no DESC").
		Take(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return o.OrderNo, err
}

func (r *orderRepo) LockTx(tx *gorm.DB, owner, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ? AND id = ?", owner, id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus, completedAt *time.Time) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       status,
		"completed_at": completedAt,
		"updated_at":   time.Now(),
	}).Error
}

func (r *orderRepo) RequirementsTx(tx *gorm.DB, orderID uuid.UUID) ([]Requirement, error) {
	var rows []struct {
		RecipeID     uuid.UUID
		ItemID       uuid.UUID
		Quantity     decimal.Decimal
		LineQuantity int
	}
	err := tx.Table("order_lines ol").
		Select("ol.recipe_id, ri.item_id, ri.quantity, ol.quantity AS line_quantity").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = ol.recipe_id").
		Where("ol.order_id = ?", orderID).
		Order("ol.recipe_id, ri.item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Requirement, 0, len(rows))
	for _, row := range rows {
		out = append(out, Requirement{
			RecipeID:           row.RecipeID,
			ItemID:             row.ItemID,
			IngredientQuantity: row.Quantity,
			LineQuantity:       row.LineQuantity,
		})
	}
	return out, nil
}

func (r *orderRepo) FindByID(ctx context.Context, owner, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Lines.Recipe").
		Where("owner_id = ? AND id = ?", owner, id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, owner uuid.UUID, filter OrderFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("owner_id = ?", owner)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	err := paginate(q, filter.Page, filter.Limit).
		Preload("Customer").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) IngredientItemIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Table("order_lines ol").
		Distinct("ri.item_id").
		Joins("JOIN recipe_ingredients ri ON ri.recipe_id = ol.recipe_id").
		Where("ol.order_id = ?", orderID).
		Pluck("ri.item_id", &ids).Error
	return ids, err
}
