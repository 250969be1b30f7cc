package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/repo"
	"go-gin-order-service/pkg/utils"
)

// CartLedger owns each user's single cart. Every mutation runs in a
// transaction that holds the cart row lock.
type CartLedger struct {
	db    *gorm.DB
	carts *repo.CartRepo
	guard *InventoryGuard
}

func NewCartLedger(db *gorm.DB, carts *repo.CartRepo, guard *InventoryGuard) *CartLedger {
	return &CartLedger{db: db, carts: carts, guard: guard}
}

// GetOrCreate returns the user's cart, creating an empty one on first use.
func (l *CartLedger) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	var out *domain.Cart
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := l.lockOrCreate(ctx, tx, userID)
		out = c
		return err
	})
	return out, err
}

// lockOrCreate locks the user's cart inside tx, creating it when missing.
// The insert runs under a savepoint so a lost creation race leaves tx usable.
func (l *CartLedger) lockOrCreate(ctx context.Context, tx *gorm.DB, userID string) (*domain.Cart, error) {
	carts := l.carts.WithTx(tx)
	c, err := carts.LockByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	if c != nil {
		return c, nil
	}
	c = &domain.Cart{ID: utils.NewID(), UserID: userID}
	err = tx.Transaction(func(sp *gorm.DB) error {
		return l.carts.WithTx(sp).Create(ctx, c)
	})
	if err == nil {
		return c, nil
	}
	if !repo.IsDuplicateKey(err) {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	// 并发创建：user_id 唯一约束保证只有一个，读回赢家
	c, err = carts.LockByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	if c == nil {
		return nil, domain.NotFound("cart not found")
	}
	return c, nil
}

// AddLine merges qty into the caller's line for productID, or opens a new
// line at the current price. Stock is checked against the merged quantity.
// The cart is created in the same transaction, so a failed add leaves no trace.
func (l *CartLedger) AddLine(ctx context.Context, caller *domain.User, productID string, qty int) (*domain.Cart, error) {
	if qty <= 0 {
		return nil, domain.InvalidArgument("quantity must be positive")
	}
	var out *domain.Cart
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := l.lockOrCreate(ctx, tx, caller.ID)
		if err != nil {
			return err
		}
		carts := l.carts.WithTx(tx)

		line, merge := cart.LinesByProduct()[productID]
		held := 0
		if merge {
			held = line.Quantity
		}
		p, err := l.guard.CheckAvailable(ctx, tx, productID, held, qty)
		if err != nil {
			return err
		}
		// 通过库存校验后 held+qty <= stock，不会溢出
		if merge {
			line.SetQuantity(held+qty, line.UnitPriceCents)
		} else {
			cart.Lines = append(cart.Lines, domain.CartLine{CartID: cart.ID, ProductID: p.ID})
			line = &cart.Lines[len(cart.Lines)-1]
			line.SetQuantity(qty, p.PriceCents)
		}
		if err := carts.SaveLine(ctx, line); err != nil {
			return fmt.Errorf("save cart line: %w", err)
		}
		cart.Recalculate()
		if err := carts.UpdateTotal(ctx, cart); err != nil {
			return fmt.Errorf("update cart total: %w", err)
		}
		out = cart
		return nil
	})
	return out, err
}

// UpdateLine sets the quantity of productID's line and re-prices it at the
// product's current price. Only the owner may do this.
func (l *CartLedger) UpdateLine(ctx context.Context, caller *domain.User, cartID, productID string, qty int) (*domain.Cart, error) {
	if qty <= 0 {
		return nil, domain.InvalidArgument("quantity must be positive")
	}
	return l.mutate(ctx, caller, cartID, func(tx *gorm.DB, carts *repo.CartRepo, cart *domain.Cart) error {
		line, ok := cart.LinesByProduct()[productID]
		if !ok {
			return domain.NotFound("item not found in cart")
		}
		p, err := l.guard.CheckAvailable(ctx, tx, productID, 0, qty)
		if err != nil {
			return err
		}
		line.SetQuantity(qty, p.PriceCents)
		if err := carts.SaveLine(ctx, line); err != nil {
			return fmt.Errorf("save cart line: %w", err)
		}
		return nil
	})
}

func (l *CartLedger) RemoveLine(ctx context.Context, caller *domain.User, cartID, productID string) (*domain.Cart, error) {
	return l.mutate(ctx, caller, cartID, func(_ *gorm.DB, carts *repo.CartRepo, cart *domain.Cart) error {
		idx := -1
		for i := range cart.Lines {
			if cart.Lines[i].ProductID == productID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return domain.NotFound("item not found in cart")
		}
		if err := carts.DeleteLine(ctx, cart.Lines[idx].ID); err != nil {
			return fmt.Errorf("delete cart line: %w", err)
		}
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
		return nil
	})
}

// mutate locks the cart, checks ownership, applies fn and stores the new total.
func (l *CartLedger) mutate(ctx context.Context, caller *domain.User, cartID string,
	fn func(tx *gorm.DB, carts *repo.CartRepo, cart *domain.Cart) error) (*domain.Cart, error) {
	var out *domain.Cart
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := l.carts.WithTx(tx)
		cart, err := carts.LockByID(ctx, cartID)
		if err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}
		if cart == nil {
			return domain.NotFound("cart not found")
		}
		if cart.UserID != caller.ID {
			return domain.Forbidden("you do not own this cart")
		}
		if err := fn(tx, carts, cart); err != nil {
			return err
		}
		cart.Recalculate()
		if err := carts.UpdateTotal(ctx, cart); err != nil {
			return fmt.Errorf("update cart total: %w", err)
		}
		out = cart
		return nil
	})
	return out, err
}

// Clear deletes the cart and its lines as one unit.
func (l *CartLedger) Clear(ctx context.Context, caller *domain.User, cartID string) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := l.carts.WithTx(tx)
		cart, err := carts.LockByID(ctx, cartID)
		if err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}
		if cart == nil {
			return domain.NotFound("cart not found")
		}
		if err := ownerOrAdmin(caller, cart.UserID, "cart"); err != nil {
			return err
		}
		if err := carts.Delete(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
}

// Get returns the cart if caller owns it or is an admin.
func (l *CartLedger) Get(ctx context.Context, caller *domain.User, cartID string) (*domain.Cart, error) {
	cart, err := l.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return nil, domain.NotFound("cart not found")
	}
	if err := ownerOrAdmin(caller, cart.UserID, "cart"); err != nil {
		return nil, err
	}
	return cart, nil
}

func (l *CartLedger) TotalPrice(ctx context.Context, caller *domain.User, cartID string) (int64, error) {
	cart, err := l.Get(ctx, caller, cartID)
	if err != nil {
		return 0, err
	}
	return cart.TotalCents, nil
}
