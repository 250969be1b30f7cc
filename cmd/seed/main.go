package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-gin-order-service/internal/app"
	"go-gin-order-service/internal/core/auth"
	"go-gin-order-service/internal/core/config"
	"go-gin-order-service/internal/core/database"
	"go-gin-order-service/internal/core/logger"
	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/service"
)

// 演示商品，重复执行只会覆盖价格和库存
var demoProducts = []domain.Product{
	{ID: "6f1c1c7e-6b1e-4c55-9a52-0a1d6d1f0001", Name: "Mechanical Keyboard", PriceCents: 8999, Stock: 50},
	{ID: "6f1c1c7e-6b1e-4c55-9a52-0a1d6d1f0002", Name: "Wireless Mouse", PriceCents: 2999, Stock: 120},
	{ID: "6f1c1c7e-6b1e-4c55-9a52-0a1d6d1f0003", Name: "USB-C Hub", PriceCents: 4550, Stock: 30},
	{ID: "6f1c1c7e-6b1e-4c55-9a52-0a1d6d1f0004", Name: "27in Monitor", PriceCents: 27900, Stock: 10},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := app.OpenDB(cfg, log)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	a := app.New(app.Deps{DB: db, Tokens: &auth.TokenService{Secret: []byte(cfg.JWT.Secret)}, Log: log})
	if err := a.Seeder.EnsureDefaults(ctx, service.AdminAccount{
		Username: cfg.Seed.AdminUsername,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}); err != nil {
		log.Fatal("seed defaults", zap.Error(err))
	}

	for i := range demoProducts {
		p := demoProducts[i]
		if err := a.Products.Upsert(ctx, &p); err != nil {
			log.Fatal("upsert product", zap.String("id", p.ID), zap.Error(err))
		}
	}
	log.Info("seed done", zap.Int("products", len(demoProducts)))
}
