package service

import (
	"time"

	"github.com/JonathanM-A/costmate/internal/dto"
	"github.com/JonathanM-A/costmate/internal/model"
)

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func toStockResponse(s model.StockAggregate) dto.StockResponse {
	resp := dto.StockResponse{
		ID:           s.ID.String(),
		ItemID:       s.ItemID.String(),
		Quantity:     s.Quantity,
		ReorderLevel: s.ReorderLevel,
		CostPerUnit:  s.CostPerUnit,
		TotalValue:   s.TotalValue,
		BelowReorder: s.BelowReorder(),
		IsActive:     s.IsActive,
		UpdatedAt:    formatTime(s.UpdatedAt),
	}
	if s.Item != nil {
		resp.ItemName = s.Item.Name
		resp.Unit = s.Item.Unit
	}
	return resp
}

func toLedgerEntryResponse(e model.LedgerEntry) dto.LedgerEntryResponse {
	resp := dto.LedgerEntryResponse{
		ID:           e.ID,
		ItemID:       e.ItemID.String(),
		Action:       e.Action(),
		Quantity:     e.Quantity,
		CostPrice:    e.CostPrice,
		CostPerUnit:  e.CostPerUnit,
		IncidentDate: e.IncidentDate.Format(dateLayout),
		Reference:    e.Reference,
		CreatedAt:    formatTime(e.CreatedAt),
	}
	if e.Item != nil {
		resp.ItemName = e.Item.Name
	}
	if e.SupplierID != nil {
		id := e.SupplierID.String()
		resp.SupplierID = &id
	}
	if e.Supplier != nil {
		name := e.Supplier.Name
		resp.SupplierName = &name
	}
	return resp
}

func toRecipeResponse(r model.Recipe) dto.RecipeResponse {
	resp := dto.RecipeResponse{
		ID:                 r.ID.String(),
		Name:               r.Name,
		Category:           r.Category,
		LabourTime:         r.LabourTime.String(),
		LabourRate:         r.LabourRate,
		LabourCost:         r.LabourCost,
		PackagingCost:      r.PackagingCost,
		OverheadCost:       r.OverheadCost,
		ProfitMargin:       r.ProfitMargin,
		InventoryItemsCost: r.InventoryItemsCost,
		CostPrice:          r.CostPrice,
		SellingPrice:       r.SellingPrice,
		IsDraft:            r.IsDraft,
		UpdatedAt:          formatTime(r.UpdatedAt),
	}
	for _, ing := range r.Ingredients {
		ir := dto.IngredientResponse{
			ID:       ing.ID.String(),
			ItemID:   ing.ItemID.String(),
			Quantity: ing.Quantity,
			Cost:     ing.Cost,
		}
		if ing.Item != nil {
			ir.ItemName = ing.Item.Name
		}
		resp.Ingredients = append(resp.Ingredients, ir)
	}
	return resp
}

func toOrderResponse(o model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:               o.ID.String(),
		OrderNo:          o.OrderNo,
		CustomerID:       o.CustomerID.String(),
		Status:           string(o.Status),
		TotalValue:       o.TotalValue,
		TotalCost:        o.TotalCost,
		Profit:           o.Profit,
		ProfitPercentage: o.ProfitPercentage,
		CreatedAt:        formatTime(o.CreatedAt),
	}
	if o.Customer != nil {
		resp.CustomerName = o.Customer.FullName()
	}
	if o.DeliveryDate != nil {
		d := o.DeliveryDate.Format(dateLayout)
		resp.DeliveryDate = &d
	}
	if o.CompletedAt != nil {
		c := formatTime(*o.CompletedAt)
		resp.CompletedAt = &c
	}
	for _, l := range o.Lines {
		lr := dto.OrderLineResponse{
			ID:        l.ID.String(),
			RecipeID:  l.RecipeID.String(),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineValue: l.LineValue,
			LineCost:  l.LineCost,
		}
		if l.Recipe != nil {
			lr.RecipeName = l.Recipe.Name
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}

func toInventoryItemResponse(i model.InventoryItem) dto.InventoryItemResponse {
	return dto.InventoryItemResponse{ID: i.ID.String(), Name: i.Name, Unit: i.Unit, IsDefault: i.IsDefault}
}

func toSupplierResponse(s model.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{ID: s.ID.String(), Name: s.Name, Contact: s.Contact}
}

func toCustomerResponse(c model.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:        c.ID.String(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Contact:   c.Contact,
		Email:     c.Email,
		Address:   c.Address,
	}
}
