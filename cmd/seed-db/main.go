package main

import (
	"context"
	"flag"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/store-admin/internal/domain/product"
	"github.com/xenking/store-admin/internal/domain/settings"
	"github.com/xenking/store-admin/internal/repository"
)

func main() {
	var (
		databaseURL string
		fixturePath string
	)
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&fixturePath, "fixture", "db/seed/store.json", "path to a JSON fixture, optionally .json.gz")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		if databaseURL == "" {
			return errors.New("database URL is required: set --database-url or DATABASE_URL")
		}
		if err := run(ctx, lg, databaseURL, fixturePath); err != nil {
			return errors.Wrap(err, "seed")
		}
		lg.Info("Seed completed")
		return nil
	})
}

func run(ctx context.Context, lg *zap.Logger, databaseURL, fixturePath string) error {
	lg.Info("Reading fixture", zap.String("path", fixturePath))
	fx, err := readFixture(fixturePath)
	if err != nil {
		return err
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg.Info("Running migrations")
	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if fx.Settings != nil {
		provider := settings.NewProvider(repository.NewSettingsRepository(pool))
		if err := provider.Save(ctx, fx.Settings); err != nil {
			return errors.Wrap(err, "seed settings")
		}
		lg.Info("Upserted settings", zap.String("store", fx.Settings.StoreName))
	}

	seeder := repository.NewSeeder(pool)
	products := make([]product.Product, 0, len(fx.Products))
	for _, p := range fx.Products {
		products = append(products, p.toProduct())
	}
	if err := seeder.UpsertProducts(ctx, products); err != nil {
		return errors.Wrap(err, "seed products")
	}
	lg.Info("Upserted products", zap.Int("count", len(products)))

	for i, raw := range fx.Orders {
		o, err := raw.toOrder()
		if err != nil {
			return errors.Wrapf(err, "order #%d", i)
		}
		if err := seeder.InsertOrder(ctx, o); err != nil {
			return errors.Wrap(err, "seed orders")
		}
		lg.Debug("Inserted order", zap.String("id", o.ID), zap.String("status", string(o.Status)))
	}
	lg.Info("Inserted orders", zap.Int("count", len(fx.Orders)))
	return nil
}
