package repository

import (
	"context"

	"app/internal/domain/model"
)

// 履歴は追記のみ。更新系メソッドは置かない。
type OrderHistoryRepository interface {
	Append(ctx context.Context, h model.OrderStatusHistory) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
