package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/model"
)

// RecipeFilter narrows the recipe listing.
type RecipeFilter struct {
	Search   string
	Category string
	IsDraft  *bool
	Page     int
	Limit    int
}

// RecipePricing is the derived header written back by the cascade.
type RecipePricing struct {
	InventoryItemsCost decimal.Decimal
	LabourCost         decimal.Decimal
	CostPrice          decimal.Decimal
	SellingPrice       decimal.Decimal
}

// IngredientScope selects which ingredient rows a cost refresh touches:
// those referencing ItemIDs and those belonging to RecipeIDs.
type IngredientScope struct {
	ItemIDs   []uuid.UUID
	RecipeIDs []uuid.UUID
}

func (s IngredientScope) empty() bool { return len(s.ItemIDs) == 0 && len(s.RecipeIDs) == 0 }

type RecipeRepository interface {
	CreateTx(tx *gorm.DB, r *model.Recipe) error
	// ReplaceIngredientsTx deletes every ingredient of the recipe and inserts
	// the given list.
	ReplaceIngredientsTx(tx *gorm.DB, recipeID uuid.UUID, ingredients []model.RecipeIngredient) error
	UpdateHeaderTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	FindByIDTx(tx *gorm.DB, owner, id uuid.UUID) (*model.Recipe, error)
	FindByIDsTx(tx *gorm.DB, owner uuid.UUID, ids []uuid.UUID) ([]model.Recipe, error)

	FindByID(ctx context.Context, owner, id uuid.UUID) (*model.Recipe, error)
	List(ctx context.Context, owner uuid.UUID, filter RecipeFilter) ([]model.Recipe, int64, error)
	Deactivate(ctx context.Context, owner, id uuid.UUID) (int64, error)

	// Cascade support.
	RecomputeIngredientCostsTx(tx *gorm.DB, owner uuid.UUID, scope IngredientScope) (int64, error)
	RecipeIDsUsingItemsTx(tx *gorm.DB, owner uuid.UUID, itemIDs []uuid.UUID) ([]uuid.UUID, error)
	ItemsWithoutStockTx(tx *gorm.DB, owner uuid.UUID, recipeIDs []uuid.UUID) ([]uuid.UUID, error)
	UpdatePricingTx(tx *gorm.DB, id uuid.UUID, p RecipePricing) error
}

type recipeRepo struct{ db *gorm.DB }

func NewRecipeRepository(db *gorm.DB) RecipeRepository { return &recipeRepo{db: db} }

func (r *recipeRepo) CreateTx(tx *gorm.DB, rec *model.Recipe) error {
	return tx.Omit("Ingredients").Create(rec).Error
}

func (r *recipeRepo) ReplaceIngredientsTx(tx *gorm.DB, recipeID uuid.UUID, ingredients []model.RecipeIngredient) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&model.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(ingredients) == 0 {
		return nil
	}
	for i := range ingredients {
		ingredients[i].RecipeID = recipeID
	}
	return tx.Omit("Item").Create(&ingredients).Error
}

func (r *recipeRepo) UpdateHeaderTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return tx.Model(&model.Recipe{}).Where("id = ?", id).Updates(fields).Error
}

func (r *recipeRepo) FindByIDTx(tx *gorm.DB, owner, id uuid.UUID) (*model.Recipe, error) {
	var rec model.Recipe
	err := tx.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("Ingredients.Item").
		Where("owner_id = ? AND id = ?", owner, id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recipeRepo) FindByIDsTx(tx *gorm.DB, owner uuid.UUID, ids []uuid.UUID) ([]model.Recipe, error) {
	var recs []model.Recipe
	if len(ids) == 0 {
		return recs, nil
	}
	err := tx.Preload("Ingredients").
		Where("owner_id = ? AND id IN ?", owner, ids).
		Find(&recs).Error
	return recs, err
}

func (r *recipeRepo) FindByID(ctx context.Context, owner, id uuid.UUID) (*model.Recipe, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), owner, id)
}

func (r *recipeRepo) List(ctx context.Context, owner uuid.UUID, filter RecipeFilter) ([]model.Recipe, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("owner_id = ? AND is_active = ?", owner, true)
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.IsDraft != nil {
		q = q.Where("is_draft = ?", *filter.IsDraft)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []model.Recipe
	err := paginate(q, filter.Page, filter.Limit).Order("name ASC").Find(&recs).Error
	return recs, total, err
}

func (r *recipeRepo) Deactivate(ctx context.Context, owner, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("owner_id = ? AND id = ? AND is_active = ?", owner, id, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

// RecomputeIngredientCostsTx prices every ingredient in scope at the
// owner's current stock unit cost in a single UPDATE. Ingredients without a
// stock row are priced at zero.
func (r *recipeRepo) RecomputeIngredientCostsTx(tx *gorm.DB, owner uuid.UUID, scope IngredientScope) (int64, error) {
	if scope.empty() {
		return 0, nil
	}
	q := tx.Model(&model.RecipeIngredient{}).
		Where("recipe_id IN (?)", tx.Model(&model.Recipe{}).Select("id").Where("owner_id = ?", owner))
	switch {
	case len(scope.ItemIDs) > 0 && len(scope.RecipeIDs) > 0:
		q = q.Where("(item_id IN ? OR recipe_id IN ?)", scope.ItemIDs, scope.RecipeIDs)
	case len(scope.ItemIDs) > 0:
		q = q.Where("item_id IN ?", scope.ItemIDs)
	default:
		q = q.Where("recipe_id IN ?", scope.RecipeIDs)
	}
	res := q.Updates(map[string]interface{}{
		"cost": gorm.Expr(`quantity * COALESCE((
			SELECT s.cost_per_unit FROM stock_aggregates s
			WHERE s.item_id = recipe_ingredients.item_id AND s.owner_id = ?), 0)`, owner),
		"updated_at": time.Now(),
	})
	return res.RowsAffected, res.Error
}

func (r *recipeRepo) RecipeIDsUsingItemsTx(tx *gorm.DB, owner uuid.UUID, itemIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(itemIDs) == 0 {
		return ids, nil
	}
	err := tx.Model(&model.RecipeIngredient{}).
		Distinct("recipe_ingredients.recipe_id").
		Joins("JOIN recipes ON recipes.id = recipe_ingredients.recipe_id").
		Where("recipes.owner_id = ? AND recipe_ingredients.item_id IN ?", owner, itemIDs).
		Pluck("recipe_ingredients.recipe_id", &ids).Error
	return ids, err
}

func (r *recipeRepo) ItemsWithoutStockTx(tx *gorm.DB, owner uuid.UUID, recipeIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(recipeIDs) == 0 {
		return ids, nil
	}
	err := tx.Model(&model.RecipeIngredient{}).
		Distinct("item_id").
		Where("recipe_id IN ?", recipeIDs).
		Where("NOT EXISTS (SELECT 1 FROM stock_aggregates s WHERE s.item_id = recipe_ingredients.item_id AND s.owner_id = ?)", owner).
		Pluck("item_id", &ids).Error
	return ids, err
}

func (r *recipeRepo) UpdatePricingTx(tx *gorm.DB, id uuid.UUID, p RecipePricing) error {
	return tx.Model(&model.Recipe{}).Where("id = ?", id).Updates(map[string]interface{}{
		"inventory_items_cost": p.InventoryItemsCost,
		"labour_cost":          p.LabourCost,
		"cost_price":           p.CostPrice,
		"selling_price":        p.SellingPrice,
		"updated_at":           time.Now(),
	}).Error
}
