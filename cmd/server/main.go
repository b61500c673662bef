package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orderdesk/api/internal/config"
	"github.com/orderdesk/api/internal/database"
	"github.com/orderdesk/api/internal/enum"
	"github.com/orderdesk/api/internal/router"
	"github.com/orderdesk/api/internal/ws"
	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var store database.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("create pool: %v", err)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatalf("ping database: %v", err)
		}
		store = database.New(pool)
		log.Println("Connected to database")
	} else {
		mem := database.NewMemStore()
		seedDemo(mem)
		store = mem
		log.Println("DATABASE_URL not set, running embedded store with demo data")
	}

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, store, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}

// seedDemo fills the embedded store with a plausible spread of orders so the
// dashboard has something to show out of the box.
func seedDemo(store *database.MemStore) {
	customers := []string{
		"Alice Johnson", "Bob Martinez", "Carol Chen", "David Okafor",
		"Eve Lindqvist", "Frank Romano", "Grace Tanaka", "Hank Douglas",
	}
	products := []string{
		"Standing Desk", "Ergonomic Chair", "Monitor Arm", "Laptop Stand",
		"Desk Lamp", "Cable Tray", "Footrest", "Keyboard Tray",
	}

	now := time.Now().UTC()
	for i := 0; i < 48; i++ {
		orderID := "ORD-" + strings.ToUpper(uuid.NewString()[:8])
		status := enum.OrderStatuses[i%len(enum.OrderStatuses)]
		total := decimal.NewFromInt(int64(20 + i*17%480)).Add(decimal.New(int64(i%100), -2))
		created := now.AddDate(0, 0, -(i % 45))

		o := store.InsertOrder(database.Order{
			OrderID:      orderID,
			CustomerName: customers[i%len(customers)],
			Status:       status,
			Total:        total,
			Paid:         i%3 != 0,
			CreatedAt:    created,
			UpdatedAt:    created,
		})

		for j := 0; j <= i%3; j++ {
			store.InsertOrderItem(database.OrderItem{
				OrderID:     o.ID,
				ProductName: products[(i+j)%len(products)],
				Quantity:    int32(1 + j),
				Price:       total.Div(decimal.NewFromInt(int64(1 + i%3))).Round(2),
			})
		}
	}
}
