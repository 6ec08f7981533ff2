package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/dto"
	"github.com/JonathanM-A/costmate/internal/model"
	"github.com/JonathanM-A/costmate/internal/repository"
)

// RecipeService manages recipes and keeps their derived prices current by
// running the cascade after every header or ingredient change.
type RecipeService interface {
	Create(ctx context.Context, owner uuid.UUID, req dto.CreateRecipeRequest) (*dto.RecipeResponse, error)
	Update(ctx context.Context, owner, id uuid.UUID, req dto.UpdateRecipeRequest) (*dto.RecipeResponse, error)
	ReplaceIngredients(ctx context.Context, owner, id uuid.UUID, req dto.ReplaceIngredientsRequest) (*dto.RecipeResponse, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*dto.RecipeResponse, error)
	List(ctx context.Context, owner uuid.UUID, filter dto.RecipeFilter) (*dto.RecipeListResponse, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type recipeService struct {
	db      *gorm.DB
	recipes repository.RecipeRepository
	items   repository.InventoryItemRepository
	prefs   PreferenceStore
	cascade *Cascade
}

func NewRecipeService(
	db *gorm.DB,
	recipes repository.RecipeRepository,
	items repository.InventoryItemRepository,
	prefs PreferenceStore,
	cascade *Cascade,
) RecipeService {
	return &recipeService{db: db, recipes: recipes, items: items, prefs: prefs, cascade: cascade}
}

func (s *recipeService) Create(ctx context.Context, owner uuid.UUID, req dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "must not be blank")
	}
	labour, err := parseLabourTime(req.LabourTime)
	if err != nil {
		return nil, err
	}
	if req.PackagingCost.IsNegative() {
		return nil, invalid("packaging_cost", "must not be negative")
	}
	if req.OverheadCost.IsNegative() {
		return nil, invalid("overhead_cost", "must not be negative")
	}
	ingredients, itemIDs, err := buildIngredients(req.Ingredients)
	if err != nil {
		return nil, err
	}

	rec := &model.Recipe{
		OwnerID:       owner,
		Name:          name,
		Category:      req.Category,
		LabourTime:    labour,
		PackagingCost: req.PackagingCost,
		OverheadCost:  req.OverheadCost,
		IsDraft:       req.IsDraft,
		IsActive:      true,
	}
	if err := s.applyDefaults(ctx, owner, rec, req.ProfitMargin, req.LabourRate); err != nil {
		return nil, err
	}

	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := checkItemsVisible(tx, s.items, owner, itemIDs); err != nil {
			return err
		}
		if err := s.recipes.CreateTx(tx, rec); err != nil {
			return mapRepoErr(err, "recipe")
		}
		if err := s.recipes.ReplaceIngredientsTx(tx, rec.ID, ingredients); err != nil {
			return err
		}
		return s.cascade.Run(ctx, tx, Touch{Trigger: TriggerRecipeEdit, Owner: owner, RecipeIDs: []uuid.UUID{rec.ID}})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, owner, rec.ID)
}

// applyDefaults fills margin and labour rate from the owner's preferences
// when the caller left them out.
func (s *recipeService) applyDefaults(ctx context.Context, owner uuid.UUID, rec *model.Recipe, margin, rate *decimal.Decimal) error {
	if margin != nil && margin.IsNegative() {
		return invalid("profit_margin", "must not be negative")
	}
	if rate != nil && rate.IsNegative() {
		return invalid("labour_rate", "must not be negative")
	}
	if margin != nil && rate != nil {
		rec.ProfitMargin, rec.LabourRate = *margin, *rate
		return nil
	}
	prefs, err := s.prefs.Get(ctx, owner)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	rec.ProfitMargin, rec.LabourRate = prefs.ProfitMargin, prefs.LabourRate
	if margin != nil {
		rec.ProfitMargin = *margin
	}
	if rate != nil {
		rec.LabourRate = *rate
	}
	return nil
}

func (s *recipeService) Update(ctx context.Context, owner, id uuid.UUID, req dto.UpdateRecipeRequest) (*dto.RecipeResponse, error) {
	fields, err := headerChanges(req)
	if err != nil {
		return nil, err
	}
	var ingredients []model.RecipeIngredient
	var itemIDs []uuid.UUID
	if req.Ingredients != nil {
		if ingredients, itemIDs, err = buildIngredients(*req.Ingredients); err != nil {
			return nil, err
		}
	}

	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		rec, err := s.recipes.FindByIDTx(tx, owner, id)
		if err != nil {
			return mapRepoErr(err, "recipe")
		}
		if !rec.IsActive {
			return fmt.Errorf("recipe: %w", ErrNotFound)
		}
		if err := s.recipes.UpdateHeaderTx(tx, id, fields); err != nil {
			return mapRepoErr(err, "recipe")
		}
		if req.Ingredients != nil {
			if err := checkItemsVisible(tx, s.items, owner, itemIDs); err != nil {
				return err
			}
			if err := s.recipes.ReplaceIngredientsTx(tx, id, ingredients); err != nil {
				return err
			}
		}
		return s.cascade.Run(ctx, tx, Touch{Trigger: TriggerRecipeEdit, Owner: owner, RecipeIDs: []uuid.UUID{id}})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, owner, id)
}

// ReplaceIngredients swaps the full ingredient list; there is no merge.
func (s *recipeService) ReplaceIngredients(ctx context.Context, owner, id uuid.UUID, req dto.ReplaceIngredientsRequest) (*dto.RecipeResponse, error) {
	list := req.Ingredients
	return s.Update(ctx, owner, id, dto.UpdateRecipeRequest{Ingredients: &list})
}

func (s *recipeService) Get(ctx context.Context, owner, id uuid.UUID) (*dto.RecipeResponse, error) {
	rec, err := s.recipes.FindByID(ctx, owner, id)
	if err != nil {
		return nil, mapRepoErr(err, "recipe")
	}
	if !rec.IsActive {
		return nil, fmt.Errorf("recipe: %w", ErrNotFound)
	}
	resp := toRecipeResponse(*rec)
	return &resp, nil
}

func (s *recipeService) List(ctx context.Context, owner uuid.UUID, filter dto.RecipeFilter) (*dto.RecipeListResponse, error) {
	recs, total, err := s.recipes.List(ctx, owner, repository.RecipeFilter{
		Search:   filter.Search,
		Category: filter.Category,
		IsDraft:  filter.IsDraft,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.RecipeResponse, 0, len(recs))
	for _, r := range recs {
		data = append(data, toRecipeResponse(r))
	}
	return &dto.RecipeListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *recipeService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	n, err := s.recipes.Deactivate(ctx, owner, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("recipe: %w", ErrNotFound)
	}
	return nil
}

func parseLabourTime(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, invalid("labour_time", "must be a non-negative duration such as 1h30m")
	}
	return d, nil
}

// buildIngredients validates an ingredient list: known ids, positive
// quantities and each item at most once.
func buildIngredients(in []dto.IngredientInput) ([]model.RecipeIngredient, []uuid.UUID, error) {
	if len(in) == 0 {
		return nil, nil, invalid("ingredients", "at least one ingredient is required")
	}
	out := make([]model.RecipeIngredient, 0, len(in))
	ids := make([]uuid.UUID, 0, len(in))
	seen := make(map[uuid.UUID]bool, len(in))
	for i, ing := range in {
		id, err := parseID(fmt.Sprintf("ingredients[%d].item_id", i), ing.ItemID)
		if err != nil {
			return nil, nil, err
		}
		if seen[id] {
			return nil, nil, invalid(fmt.Sprintf("ingredients[%d].item_id", i), "item is listed more than once")
		}
		seen[id] = true
		if !ing.Quantity.IsPositive() {
			return nil, nil, invalid(fmt.Sprintf("ingredients[%d].quantity", i), "quantity must be greater than zero")
		}
		out = append(out, model.RecipeIngredient{ItemID: id, Quantity: ing.Quantity, Cost: decimal.Zero})
		ids = append(ids, id)
	}
	return out, ids, nil
}

func headerChanges(req dto.UpdateRecipeRequest) (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "must not be blank")
		}
		fields["name"] = name
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.LabourTime != nil {
		d, err := parseLabourTime(*req.LabourTime)
		if err != nil {
			return nil, err
		}
		fields["labour_time"] = d
	}
	nonNegative := []struct {
		column string
		value  *decimal.Decimal
	}{
		{"labour_rate", req.LabourRate},
		{"packaging_cost", req.PackagingCost},
		{"overhead_cost", req.OverheadCost},
		{"profit_margin", req.ProfitMargin},
	}
	for _, f := range nonNegative {
		if f.value == nil {
			continue
		}
		if f.value.IsNegative() {
			return nil, invalid(f.column, "must not be negative")
		}
		fields[f.column] = *f.value
	}
	if req.IsDraft != nil {
		fields["is_draft"] = *req.IsDraft
	}
	return fields, nil
}
