package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// 決済コールバック用。未知のtran_idはエラーにしない
func (r *OrderGormRepository) FindByTransactionID(ctx context.Context, tranID string) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", tranID).
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

func (r *OrderGormRepository) ListVisibleToUser(ctx context.Context, userID int64) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND show_to_user = ?", userID, true).
		Order("created_at desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListVisibleToAdmin(ctx context.Context) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("show_to_admin = ?", true).
		Order("created_at desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	return r.updateColumn(ctx, orderID, "status", status)
}

func (r *OrderGormRepository) UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error {
	return r.updateColumn(ctx, orderID, "payment_status", status)
}

func (r *OrderGormRepository) SetShowToAdmin(ctx context.Context, orderID int64, show bool) error {
	return r.updateColumn(ctx, orderID, "show_to_admin", show)
}

func (r *OrderGormRepository) SetShowToUser(ctx context.Context, orderID int64, show bool) error {
	return r.updateColumn(ctx, orderID, "show_to_user", show)
}

func (r *OrderGormRepository) updateColumn(ctx context.Context, orderID int64, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update(column, value)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 物理削除。両表示フラグfalseが確定したときだけ呼ばれる
func (r *OrderGormRepository) Delete(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Order{}, orderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 対象商品を参照していて、Delivered/Cancelled以外の他注文の数。
// スマート削除は、これが0のときだけ商品を消す。
func (r *OrderGormRepository) CountActiveReferencing(ctx context.Context, productID int64, excludeOrderID int64) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Distinct("orders.id").
		Joins("join order_items on order_items.order_id = orders.id").
		Where("order_items.product_id = ?", productID).
		Where("orders.id <> ?", excludeOrderID).
		Where("orders.status NOT IN ?", []model.OrderStatus{
			model.OrderStatusDelivered,
			model.OrderStatusCancelled,
		}).
		Count(&count).Error

	if err != nil {
		return 0, err
	}
	return count, nil
}
