package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/devsfood/backend/internal/storage/postgres"
)

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    struct {
		Thumbnail string `json:"thumbnail"`
		Mobile    string `json:"mobile"`
		Tablet    string `json:"tablet"`
		Desktop   string `json:"desktop"`
	} `json:"image"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&adminEmail, "admin-email", "", "email for the bootstrap admin account (or DEVSFOOD_ADMIN_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the bootstrap admin account (or DEVSFOOD_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("DEVSFOOD_ADMIN_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("DEVSFOOD_ADMIN_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if adminEmail != "" && adminPassword != "" {
		if err := seedAdmin(ctx, pool, adminEmail, adminPassword); err != nil {
			return errors.Wrap(err, "seed admin user")
		}
	} else {
		slog.Info("skipping admin bootstrap: admin email or password not set")
	}

	return nil
}

const upsertProductSQL = `
INSERT INTO products (id, name, price, category, image_thumbnail, image_mobile, image_tablet, image_desktop)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	price = EXCLUDED.price,
	category = EXCLUDED.category,
	image_thumbnail = EXCLUDED.image_thumbnail,
	image_mobile = EXCLUDED.image_mobile,
	image_tablet = EXCLUDED.image_tablet,
	image_desktop = EXCLUDED.image_desktop
`

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Price, p.Category,
			p.Image.Thumbnail, p.Image.Mobile, p.Image.Tablet, p.Image.Desktop,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

const upsertAdminSQL = `
INSERT INTO users (id, name, email, password, role, created_at)
VALUES ($1, $2, $3, $4, 'ADMIN', $5)
ON CONFLICT (email) DO UPDATE SET
	password = EXCLUDED.password,
	role = 'ADMIN'
`

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	slog.Info("seeding bootstrap admin", slog.String("email", email))

	if _, err := pool.Exec(ctx, upsertAdminSQL,
		uuid.New().String(), "Admin", email, password, time.Now().UTC(),
	); err != nil {
		return errors.Wrap(err, "upsert admin user")
	}

	return nil
}
