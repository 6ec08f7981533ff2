package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/costing"
	"github.com/JonathanM-A/costmate/internal/metrics"
	"github.com/JonathanM-A/costmate/internal/model"
	"github.com/JonathanM-A/costmate/internal/repository"
)

var tracer = otel.Tracer("github.com/JonathanM-A/costmate/internal/service")

// Trigger names the write path that started a cascade.
type Trigger string

const (
	TriggerPurchase        Trigger = "purchase"
	TriggerConsumption     Trigger = "consumption"
	TriggerOrderCompletion Trigger = "order_completion"
	TriggerRecipeEdit      Trigger = "recipe_edit"
)

// Touch is what a unit of work changed: stock rows whose valuation must be
// refreshed and recipes whose ingredient list was rewritten.
type Touch struct {
	Trigger   Trigger
	Owner     uuid.UUID
	ItemIDs   []uuid.UUID
	RecipeIDs []uuid.UUID
}

// Cascade propagates ledger and recipe changes through every derived value:
//
//	ledger -> stock quantity -> stock unit cost / total value
//	       -> ingredient cost -> recipe cost price / selling price
//
// Both entry points run inside the caller's transaction, so a failure
// anywhere in the unit of work discards the whole propagation.
type Cascade struct {
	ledger  repository.LedgerRepository
	stock   repository.StockRepository
	recipes repository.RecipeRepository
}

func NewCascade(ledger repository.LedgerRepository, stock repository.StockRepository, recipes repository.RecipeRepository) *Cascade {
	return &Cascade{ledger: ledger, stock: stock, recipes: recipes}
}

// Post appends entries for owner and runs the cascade over the items they
// touch. Removals are checked against the locked balance before anything is
// written. It returns the touched item ids in lock order.
func (c *Cascade) Post(ctx context.Context, tx *gorm.DB, trigger Trigger, owner uuid.UUID, entries []model.LedgerEntry) ([]uuid.UUID, error) {
	if len(entries) == 0 {
		return nil, invalid("entries", "at least one entry is required")
	}

	today := truncateDay(time.Now())
	deltas := make(map[uuid.UUID]decimal.Decimal)
	removals := make(map[uuid.UUID]decimal.Decimal)
	itemIDs := make([]uuid.UUID, 0, len(entries))

	for i := range entries {
		e := &entries[i]
		if e.ItemID == uuid.Nil {
			return nil, invalid(fmt.Sprintf("entries[%d].item_id", i), "is required")
		}
		if !e.Quantity.IsPositive() {
			return nil, invalid(fmt.Sprintf("entries[%d].quantity", i), "quantity must be greater than zero")
		}
		e.OwnerID = owner
		if e.IncidentDate.IsZero() {
			e.IncidentDate = today
		} else {
			e.IncidentDate = truncateDay(e.IncidentDate)
		}

		if e.IsAddition {
			if e.CostPrice.IsNegative() {
				return nil, invalid(fmt.Sprintf("entries[%d].cost_price", i), "must not be negative")
			}
			e.CostPerUnit = costing.EntryUnitCost(e.CostPrice, e.Quantity)
			deltas[e.ItemID] = deltas[e.ItemID].Add(e.Quantity)
		} else {
			e.CostPrice = decimal.Zero
			e.CostPerUnit = decimal.Zero
			deltas[e.ItemID] = deltas[e.ItemID].Sub(e.Quantity)
			removals[e.ItemID] = removals[e.ItemID].Add(e.Quantity)
		}
		itemIDs = append(itemIDs, e.ItemID)
	}
	itemIDs = uniqueIDs(itemIDs)

	locked, err := c.stock.LockTx(tx, owner, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("lock stock: %w", err)
	}
	for _, id := range itemIDs {
		need, ok := removals[id]
		if !ok {
			continue
		}
		have := locked[id].Available()
		if need.GreaterThan(have) {
			metrics.InsufficientStock.Inc()
			return nil, &InsufficientStockError{ItemID: id, Requested: need, Available: have}
		}
	}

	if err := c.ledger.AppendTx(tx, entries); err != nil {
		return nil, fmt.Errorf("append ledger: %w", err)
	}
	if err := c.stock.ApplyDeltasTx(tx, owner, deltas); err != nil {
		return nil, fmt.Errorf("apply stock deltas: %w", err)
	}

	if err := c.Run(ctx, tx, Touch{Trigger: trigger, Owner: owner, ItemIDs: itemIDs}); err != nil {
		return nil, err
	}
	return itemIDs, nil
}

// Run recomputes derived values in order: stock valuation for t.ItemIDs,
// ingredient costs for those items and for t.RecipeIDs, then the header of
// every recipe holding any of them. Re-running it on unchanged data writes
// the same values.
func (c *Cascade) Run(ctx context.Context, tx *gorm.DB, t Touch) (err error) {
	ctx, span := tracer.Start(ctx, "cascade.run", trace.WithAttributes(
		attribute.String("trigger", string(t.Trigger)),
		attribute.Int("items", len(t.ItemIDs)),
		attribute.Int("recipes", len(t.RecipeIDs)),
	))
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.CascadeRuns.WithLabelValues(string(t.Trigger), result).Inc()
		metrics.CascadeDuration.WithLabelValues(string(t.Trigger)).Observe(time.Since(start).Seconds())
		span.End()
	}()

	tx = tx.WithContext(ctx)

	if err = c.revalueStock(tx, t.Owner, t.ItemIDs); err != nil {
		return fmt.Errorf("revalue stock: %w", err)
	}
	recipeIDs, err := c.refreshIngredients(tx, t)
	if err != nil {
		return fmt.Errorf("refresh ingredient costs: %w", err)
	}
	if err = c.repriceRecipes(tx, t.Owner, recipeIDs); err != nil {
		return fmt.Errorf("reprice recipes: %w", err)
	}

	log.Debug().
		Str("trigger", string(t.Trigger)).
		Str("owner_id", t.Owner.String()).
		Int("items", len(t.ItemIDs)).
		Int("recipes", len(recipeIDs)).
		Dur("elapsed", time.Since(start)).
		Msg("cascade applied")
	return nil
}

func (c *Cascade) revalueStock(tx *gorm.DB, owner uuid.UUID, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	aggs, err := c.stock.FindByItemsTx(tx, owner, itemIDs)
	if err != nil {
		return err
	}
	recent, err := c.ledger.RecentAdditionsTx(tx, owner, itemIDs, costing.Window)
	if err != nil {
		return err
	}
	for _, agg := range aggs {
		entries := recent[agg.ItemID]
		adds := make([]costing.Addition, len(entries))
		for i, e := range entries {
			adds[i] = costing.Addition{
				Seq:          e.ID,
				CostPerUnit:  e.CostPerUnit,
				IncidentDate: e.IncidentDate,
				CreatedAt:    e.CreatedAt,
			}
		}
		unit := costing.UnitCost(adds)
		if err := c.stock.UpdateValuationTx(tx, agg.ID, unit, costing.TotalValue(agg.Quantity, unit)); err != nil {
			return err
		}
	}
	return nil
}

// refreshIngredients reprices ingredients in scope and returns every recipe
// whose header must follow.
func (c *Cascade) refreshIngredients(tx *gorm.DB, t Touch) ([]uuid.UUID, error) {
	if len(t.ItemIDs) == 0 && len(t.RecipeIDs) == 0 {
		return nil, nil
	}
	scope := repository.IngredientScope{ItemIDs: t.ItemIDs, RecipeIDs: t.RecipeIDs}
	if _, err := c.recipes.RecomputeIngredientCostsTx(tx, t.Owner, scope); err != nil {
		return nil, err
	}

	using, err := c.recipes.RecipeIDsUsingItemsTx(tx, t.Owner, t.ItemIDs)
	if err != nil {
		return nil, err
	}
	affected := uniqueIDs(using, t.RecipeIDs)

	missing, err := c.recipes.ItemsWithoutStockTx(tx, t.Owner, affected)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		metrics.MissingStockIngredients.Add(float64(len(missing)))
		log.Warn().
			Str("owner_id", t.Owner.String()).
			Strs("item_ids", idStrings(missing)).
			Msg("recipe ingredients have no stock row, priced at zero")
	}
	return affected, nil
}

func (c *Cascade) repriceRecipes(tx *gorm.DB, owner uuid.UUID, recipeIDs []uuid.UUID) error {
	if len(recipeIDs) == 0 {
		return nil
	}
	recs, err := c.recipes.FindByIDsTx(tx, owner, recipeIDs)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		totals := costing.PriceRecipe(recipeInputs(rec))
		if err := c.recipes.UpdatePricingTx(tx, rec.ID, repository.RecipePricing(totals)); err != nil {
			return err
		}
	}
	return nil
}

func recipeInputs(rec model.Recipe) costing.RecipeInputs {
	costs := make([]decimal.Decimal, len(rec.Ingredients))
	for i, ing := range rec.Ingredients {
		costs[i] = ing.Cost
	}
	return costing.RecipeInputs{
		IngredientCosts: costs,
		LabourTime:      rec.LabourTime,
		LabourRate:      rec.LabourRate,
		LabourCost:      rec.LabourCost,
		PackagingCost:   rec.PackagingCost,
		OverheadCost:    rec.OverheadCost,
		ProfitMargin:    rec.ProfitMargin,
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
