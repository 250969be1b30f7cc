package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"go-gin-order-service/internal/core/metrics"
	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/repo"
)

// InventoryGuard owns every stock check. Reservation is a single conditional
// UPDATE, so two callers can never both take the last unit.
type InventoryGuard struct {
	products *repo.ProductRepo
}

func NewInventoryGuard(products *repo.ProductRepo) *InventoryGuard {
	return &InventoryGuard{products: products}
}

// CheckAvailable loads the product and fails OutOfStock unless held+qty units
// fit into its stock. held is what the caller already has in its cart. It does
// not reserve anything.
func (g *InventoryGuard) CheckAvailable(ctx context.Context, tx *gorm.DB, productID string, held, qty int) (*domain.Product, error) {
	p, err := g.repoFor(tx).FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return nil, domain.NotFound("product not found: " + productID)
	}
	// 用减法比较，held+qty 可能溢出
	if qty > p.Stock-held {
		metrics.StockRejections.WithLabelValues("cart").Inc()
		return nil, domain.OutOfStock(fmt.Sprintf("not enough stock for product %s: requested %d more with %d in cart, available %d",
			p.ID, qty, held, p.Stock))
	}
	return p, nil
}

// CheckAndReserve decrements stock by qty or fails OutOfStock without touching it.
func (g *InventoryGuard) CheckAndReserve(ctx context.Context, tx *gorm.DB, productID string, qty int) error {
	if qty <= 0 {
		return domain.InvalidArgument("quantity must be positive")
	}
	products := g.repoFor(tx)
	ok, err := products.DecrementStock(ctx, productID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if ok {
		return nil
	}
	p, err := products.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return domain.NotFound("product not found: " + productID)
	}
	metrics.StockRejections.WithLabelValues("order").Inc()
	return domain.OutOfStock(fmt.Sprintf("not enough stock for product %s: requested %d, available %d", p.ID, qty, p.Stock))
}

func (g *InventoryGuard) repoFor(tx *gorm.DB) *repo.ProductRepo {
	if tx == nil {
		return g.products
	}
	return g.products.WithTx(tx)
}
