// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JonathanM-A/costmate/internal/model"
)

// NewDB opens a private in-memory SQLite database with every table
// migrated. A single connection keeps the shared cache alive for the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// Item inserts an active inventory item owned by owner.
func Item(t *testing.T, db *gorm.DB, owner uuid.UUID, name string) model.InventoryItem {
	t.Helper()
	it := model.InventoryItem{OwnerID: owner, Name: name, Unit: "kg", IsActive: true}
	require.NoError(t, db.Create(&it).Error)
	return it
}

// DefaultItem inserts an item visible to every owner.
func DefaultItem(t *testing.T, db *gorm.DB, name string) model.InventoryItem {
	t.Helper()
	it := model.InventoryItem{OwnerID: uuid.Nil, Name: name, Unit: "kg", IsDefault: true, IsActive: true}
	require.NoError(t, db.Create(&it).Error)
	return it
}

func Supplier(t *testing.T, db *gorm.DB, owner uuid.UUID, name string) model.Supplier {
	t.Helper()
	s := model.Supplier{OwnerID: owner, Name: name, IsActive: true}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func Customer(t *testing.T, db *gorm.DB, owner uuid.UUID, contact string) model.Customer {
	t.Helper()
	c := model.Customer{OwnerID: owner, FirstName: "Ama", LastName: "Mensah", Contact: contact, IsActive: true}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// Stock reads the aggregate row for (owner, item).
func Stock(t *testing.T, db *gorm.DB, owner, itemID uuid.UUID) model.StockAggregate {
	t.Helper()
	var s model.StockAggregate
	require.NoError(t, db.Where("owner_id = ? AND item_id = ?", owner, itemID).First(&s).Error)
	return s
}

// LedgerCount counts ledger entries for owner.
func LedgerCount(t *testing.T, db *gorm.DB, owner uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.LedgerEntry{}).Where("owner_id = ?", owner).Count(&n).Error)
	return n
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DecEqual asserts numeric equality regardless of scale.
func DecEqual(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, Dec(want).Equal(got), "want %s, got %s %v", want, got.String(), fmt.Sprint(msgAndArgs...))
}
