package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-order-service/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) WithTx(tx *gorm.DB) *ProductRepo { return &ProductRepo{db: tx} }

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DecrementStock is a single conditional UPDATE; zero rows affected means the
// product is missing or short of stock.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ProductRepo) Upsert(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "price_cents", "stock", "updated_at"}),
	}).Create(p).Error
}

func (r *ProductRepo) SetPrice(ctx context.Context, id string, priceCents int64) error {
	return r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Update("price_cents", priceCents).Error
}
