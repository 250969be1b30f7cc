package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-order-service/internal/domain"
)

type RevokedTokenRepo struct{ db *gorm.DB }

func NewRevokedTokenRepo(db *gorm.DB) *RevokedTokenRepo { return &RevokedTokenRepo{db: db} }

// Insert 幂等：重复吊销同一个 jti 不报错
func (r *RevokedTokenRepo) Insert(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.RevokedToken{TokenID: tokenID, ExpiresAt: expiresAt}).Error
}

// ExistsActive reports an entry for tokenID that has not expired at now.
func (r *RevokedTokenRepo) ExistsActive(ctx context.Context, tokenID string, now time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.RevokedToken{}).
		Where("token_id = ? AND expires_at >= ?", tokenID, now).
		Count(&n).Error
	return n > 0, err
}

func (r *RevokedTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&domain.RevokedToken{})
	return res.RowsAffected, res.Error
}
