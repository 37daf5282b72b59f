package repository

import (
	"context"

	"tooltrack/internal/model"

	"gorm.io/gorm"
)

type DamageRepository interface {
	CreateTx(tx *gorm.DB, log *model.DamageLog) error
	List(ctx context.Context, limit, offset int) ([]model.DamageLog, int64, error)
}

type damageRepo struct {
	db *gorm.DB
}

func NewDamageRepo(db *gorm.DB) DamageRepository {
	return &damageRepo{db}
}

func (r *damageRepo) CreateTx(tx *gorm.DB, log *model.DamageLog) error {
	return tx.Create(log).Error
}

func (r *damageRepo) List(ctx context.Context, limit, offset int) ([]model.DamageLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.DamageLog{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []model.DamageLog
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	return logs, total, err
}
