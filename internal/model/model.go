package model

// All lists every persisted model in dependency order. Tests AutoMigrate it;
// production schemas come from the SQL migrations.
func All() []interface{} {
	return []interface{}{
		&InventoryItem{},
		&Supplier{},
		&Customer{},
		&LedgerEntry{},
		&StockAggregate{},
		&Recipe{},
		&RecipeIngredient{},
		&Order{},
		&OrderLine{},
	}
}
