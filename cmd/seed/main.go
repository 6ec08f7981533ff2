// cmd/seed registers the default inventory items every owner can stock.
// Existing items are left untouched, so the command can be re-run.
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/JonathanM-A/costmate/internal/config"
	"github.com/JonathanM-A/costmate/internal/dto"
	"github.com/JonathanM-A/costmate/internal/infra"
	"github.com/JonathanM-A/costmate/internal/repository"
	"github.com/JonathanM-A/costmate/internal/service"
)

var defaultItems = []dto.CreateInventoryItemRequest{
	{Name: "Flour", Unit: "kg"},
	{Name: "Sugar", Unit: "kg"},
	{Name: "Butter", Unit: "kg"},
	{Name: "Eggs", Unit: "pcs"},
	{Name: "Milk", Unit: "l"},
	{Name: "Salt", Unit: "kg"},
	{Name: "Yeast", Unit: "g"},
	{Name: "Baking powder", Unit: "g"},
	{Name: "Vanilla extract", Unit: "ml"},
	{Name: "Cocoa powder", Unit: "kg"},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	catalog := service.NewCatalogService(
		repository.NewInventoryItemRepository(db),
		repository.NewSupplierRepository(db),
		repository.NewCustomerRepository(db),
	)

	ctx := context.Background()
	created := 0
	for _, req := range defaultItems {
		_, err := catalog.CreateDefaultItem(ctx, req)
		switch {
		case err == nil:
			created++
		case service.IsConflict(err):
			log.Debug().Str("item", req.Name).Msg("already present")
		default:
			log.Fatal().Err(err).Str("item", req.Name).Msg("failed to seed item")
		}
	}
	log.Info().Int("created", created).Int("total", len(defaultItems)).Msg("default items seeded")
}
