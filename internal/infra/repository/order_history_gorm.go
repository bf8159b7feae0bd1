package repository

import (
	"context"

	"app/internal/domain/model"
	"gorm.io/gorm"
)

type OrderHistoryGormRepository struct {
	db *gorm.DB
}

func NewOrderHistoryGormRepository(db *gorm.DB) *OrderHistoryGormRepository {
	return &OrderHistoryGormRepository{db: db}
}

// 追記のみ
func (r *OrderHistoryGormRepository) Append(ctx context.Context, h model.OrderStatusHistory) error {
	if err := r.db.WithContext(ctx).Create(&h).Error; err != nil {
		return err
	}
	return nil
}

func (r *OrderHistoryGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error) {
	var items []model.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.OrderStatusHistory{}, err
	}
	return items, nil
}

// 注文の物理削除と一緒に呼ばれる
func (r *OrderHistoryGormRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderStatusHistory{}).Error
}
