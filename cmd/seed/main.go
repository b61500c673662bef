package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orderdesk/api/internal/enum"
	"github.com/shopspring/decimal"
)

var (
	customers = []string{
		"Alice Johnson", "Bob Martinez", "Carol Chen", "David Okafor",
		"Eve Lindqvist", "Frank Romano", "Grace Tanaka", "Hank Douglas",
		"Ivy Nakamura", "Jack O'Brien", "Kara Svensson", "Liam Patel",
	}
	products = []string{
		"Standing Desk", "Ergonomic Chair", "Monitor Arm", "Laptop Stand",
		"Desk Lamp", "Cable Tray", "Footrest", "Keyboard Tray",
		"Whiteboard", "Desk Mat",
	}
)

func main() {
	count := flag.Int("count", 100, "number of orders to insert")
	truncate := flag.Bool("truncate", false, "delete existing orders first")
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback(ctx)

	if *truncate {
		if _, err := tx.Exec(ctx, "TRUNCATE orders RESTART IDENTITY CASCADE"); err != nil {
			log.Fatalf("truncate: %v", err)
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	for i := 0; i < *count; i++ {
		orderID := "ORD-" + strings.ToUpper(uuid.NewString()[:8])
		status := enum.OrderStatuses[rng.Intn(len(enum.OrderStatuses))]
		created := now.AddDate(0, 0, -rng.Intn(90)).Add(-time.Duration(rng.Intn(86400)) * time.Second)
		paid := rng.Intn(3) != 0

		itemCount := 1 + rng.Intn(4)
		total := decimal.Zero
		type item struct {
			name     string
			quantity int
			price    decimal.Decimal
		}
		items := make([]item, 0, itemCount)
		for j := 0; j < itemCount; j++ {
			price := decimal.NewFromInt(int64(5 + rng.Intn(300))).Add(decimal.New(int64(rng.Intn(100)), -2))
			quantity := 1 + rng.Intn(3)
			items = append(items, item{products[rng.Intn(len(products))], quantity, price})
			total = total.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
		}

		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO orders (order_id, customer_name, status, total, paid, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
			orderID, customers[rng.Intn(len(customers))], status, total.StringFixed(2), paid, created,
		).Scan(&id)
		if err != nil {
			log.Fatalf("insert order: %v", err)
		}

		batch := &pgx.Batch{}
		for _, it := range items {
			batch.Queue(
				`INSERT INTO order_items (order_id, product_name, quantity, price) VALUES ($1, $2, $3, $4)`,
				id, it.name, it.quantity, it.price.StringFixed(2),
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			log.Fatalf("insert items: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}
	log.Printf("Seeded %d orders", *count)
}
