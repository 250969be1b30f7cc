package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-order-service/internal/core/metrics"
	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/repo"
	"go-gin-order-service/pkg/utils"
)

type OrderWorkflow struct {
	db     *gorm.DB
	carts  *repo.CartRepo
	orders *repo.OrderRepo
	guard  *InventoryGuard
	clock  Clock
	log    *zap.Logger
}

func NewOrderWorkflow(db *gorm.DB, carts *repo.CartRepo, orders *repo.OrderRepo, guard *InventoryGuard, clock Clock, log *zap.Logger) *OrderWorkflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderWorkflow{db: db, carts: carts, orders: orders, guard: guard, clock: clock, log: log}
}

// PlaceOrder turns the target user's cart into a PENDING order. Stock
// reservation, order insert and cart removal commit together or not at all.
// Callers may only order for themselves, admins included.
func (w *OrderWorkflow) PlaceOrder(ctx context.Context, caller *domain.User, targetUserID string) (*domain.Order, error) {
	if caller == nil {
		return nil, domain.Unauthorized("authentication required")
	}
	if caller.ID != targetUserID {
		return nil, domain.Forbidden("you can only place orders for yourself")
	}

	var order *domain.Order
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := w.carts.WithTx(tx)
		cart, err := carts.LockByUserID(ctx, targetUserID)
		if err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}
		if cart == nil {
			return domain.NotFound("cart not found")
		}
		if len(cart.Lines) == 0 {
			return domain.InvalidArgument("cart is empty")
		}

		lines := append([]domain.CartLine(nil), cart.Lines...)
		// 固定加锁顺序，避免两个订单交叉扣减同一批商品时死锁
		sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

		o := &domain.Order{
			ID:        utils.NewID(),
			UserID:    targetUserID,
			OrderDate: w.clock.now(),
			Status:    domain.OrderPending,
			Lines:     make([]domain.OrderLine, 0, len(lines)),
		}
		for _, l := range lines {
			if err := w.guard.CheckAndReserve(ctx, tx, l.ProductID, l.Quantity); err != nil {
				return err
			}
			ol := domain.OrderLine{
				OrderID:        o.ID,
				ProductID:      l.ProductID,
				Quantity:       l.Quantity,
				UnitPriceCents: l.UnitPriceCents,
			}
			o.TotalCents += ol.TotalCents()
			o.Lines = append(o.Lines, ol)
		}
		if err := w.orders.WithTx(tx).Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := carts.Delete(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.OrdersPlaced.Inc()
	w.log.Info("order placed", zap.String("order_id", order.ID), zap.String("user_id", order.UserID),
		zap.Int64("total_cents", order.TotalCents))
	return order, nil
}

func (w *OrderWorkflow) GetOrder(ctx context.Context, caller *domain.User, orderID string) (*domain.Order, error) {
	o, err := w.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if o == nil {
		return nil, domain.NotFound("order not found")
	}
	if err := ownerOrAdmin(caller, o.UserID, "order"); err != nil {
		return nil, err
	}
	return o, nil
}

func (w *OrderWorkflow) ListUserOrders(ctx context.Context, caller *domain.User, userID string) ([]domain.Order, error) {
	if err := ownerOrAdmin(caller, userID, "order list"); err != nil {
		return nil, err
	}
	out, err := w.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// UpdateStatus parses status first, so an unknown value fails InvalidArgument
// before anything is loaded.
func (w *OrderWorkflow) UpdateStatus(ctx context.Context, caller *domain.User, orderID, status string) (*domain.Order, error) {
	st, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	o, err := w.GetOrder(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}
	if err := w.orders.UpdateStatus(ctx, o.ID, st); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	o.Status = st
	return o, nil
}

func (w *OrderWorkflow) DeleteOrder(ctx context.Context, caller *domain.User, orderID string) error {
	o, err := w.GetOrder(ctx, caller, orderID)
	if err != nil {
		return err
	}
	if err := w.orders.Delete(ctx, o.ID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}
