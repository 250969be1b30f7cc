package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-order-service/internal/domain"
)

type CartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) WithTx(tx *gorm.DB) *CartRepo { return &CartRepo{db: tx} }

func (r *CartRepo) Create(ctx context.Context, c *domain.Cart) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *CartRepo) FindByID(ctx context.Context, id string) (*domain.Cart, error) {
	return r.find(ctx, false, "id = ?", id)
}

func (r *CartRepo) FindByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.find(ctx, false, "user_id = ?", userID)
}

// LockByID / LockByUserID 在事务内对购物车行加 FOR UPDATE（sqlite 忽略，单写者天然串行）
func (r *CartRepo) LockByID(ctx context.Context, id string) (*domain.Cart, error) {
	return r.find(ctx, true, "id = ?", id)
}

func (r *CartRepo) LockByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.find(ctx, true, "user_id = ?", userID)
}

func (r *CartRepo) find(ctx context.Context, lock bool, query string, arg any) (*domain.Cart, error) {
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var c domain.Cart
	err := q.First(&c, query, arg).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("cart_id = ?", c.ID).Order("id").Find(&c.Lines).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CartRepo) SaveLine(ctx context.Context, l *domain.CartLine) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *CartRepo) DeleteLine(ctx context.Context, lineID uint) error {
	return r.db.WithContext(ctx).Delete(&domain.CartLine{}, lineID).Error
}

func (r *CartRepo) UpdateTotal(ctx context.Context, c *domain.Cart) error {
	return r.db.WithContext(ctx).Model(&domain.Cart{}).Where("id = ?", c.ID).Update("total_cents", c.TotalCents).Error
}

// Delete removes the lines and then the cart; callers run it inside a transaction.
func (r *CartRepo) Delete(ctx context.Context, cartID string) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&domain.CartLine{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", cartID).Delete(&domain.Cart{}).Error
}
