package repo

import (
	"context"

	"gorm.io/gorm"

	"go-gin-order-service/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) WithTx(tx *gorm.DB) *OrderRepo { return &OrderRepo{db: tx} }

// Create 连同订单行一起写入
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(&o, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Where("user_id = ?", userID).Order("order_date desc").Find(&out).Error
	return out, err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, st domain.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("status", st).Error
}

func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderLine{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Order{}).Error
	})
}
