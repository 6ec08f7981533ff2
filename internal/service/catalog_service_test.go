package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonathanM-A/costmate/internal/dto"
)

func TestCatalog_ItemsAreOwnerScopedPlusDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateItem(ctx, f.owner, dto.CreateInventoryItemRequest{Name: "  Flour ", Unit: "kg"})
	require.NoError(t, err)
	_, err = f.catalog.CreateDefaultItem(ctx, dto.CreateInventoryItemRequest{Name: "Salt", Unit: "kg"})
	require.NoError(t, err)
	_, err = f.catalog.CreateItem(ctx, uuid.New(), dto.CreateInventoryItemRequest{Name: "Cocoa"})
	require.NoError(t, err)

	list, err := f.catalog.ListItems(ctx, f.owner, dto.CatalogFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Equal(t, int64(2), list.Total)
	assert.Equal(t, "Flour", list.Data[0].Name)
	assert.Equal(t, "Salt", list.Data[1].Name)
	assert.True(t, list.Data[1].IsDefault)
}

func TestCatalog_DuplicateItemNameConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateItem(ctx, f.owner, dto.CreateInventoryItemRequest{Name: "Flour"})
	require.NoError(t, err)
	_, err = f.catalog.CreateItem(ctx, f.owner, dto.CreateInventoryItemRequest{Name: "Flour"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = f.catalog.CreateItem(ctx, uuid.New(), dto.CreateInventoryItemRequest{Name: "Flour"})
	assert.NoError(t, err)
}

func TestCatalog_Customers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := dto.CreateCustomerRequest{FirstName: "Kofi", LastName: "Boateng", Contact: "0551234567", Email: ptr("  ")}

	c, err := f.catalog.CreateCustomer(ctx, f.owner, req)
	require.NoError(t, err)
	assert.Nil(t, c.Email)

	_, err = f.catalog.CreateCustomer(ctx, f.owner, req)
	assert.True(t, IsConflict(err))

	req.Contact = " "
	_, err = f.catalog.CreateCustomer(ctx, f.owner, req)
	assert.True(t, IsValidation(err))

	list, err := f.catalog.ListCustomers(ctx, f.owner, dto.CatalogFilter{Search: "kofi", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)
}

func TestCatalog_Suppliers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.catalog.CreateSupplier(ctx, f.owner, dto.CreateSupplierRequest{Name: "Mill Co", Contact: ptr("0200000000")})
	require.NoError(t, err)
	assert.Equal(t, "0200000000", *s.Contact)

	list, err := f.catalog.ListSuppliers(ctx, f.owner, dto.CatalogFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 1, list.TotalPages)
}
