package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//決済コールバック用。見つからないときはfound=falseでエラーにしない
	FindByTransactionID(ctx context.Context, tranID string) (model.Order, bool, error)

	//ユーザー画面用（show_to_user=trueのみ、新しい順）
	ListVisibleToUser(ctx context.Context, userID int64) ([]model.Order, error)

	//管理画面用（show_to_admin=trueのみ、新しい順）
	ListVisibleToAdmin(ctx context.Context) ([]model.Order, error)

	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error

	//表示フラグの片側だけを消す
	SetShowToAdmin(ctx context.Context, orderID int64, show bool) error
	SetShowToUser(ctx context.Context, orderID int64, show bool) error

	//両フラグfalseが確定したときだけ呼ぶ物理削除
	Delete(ctx context.Context, orderID int64) error

	//スマート削除の判定。対象商品を参照する、終端以外の他注文の数
	CountActiveReferencing(ctx context.Context, productID int64, excludeOrderID int64) (int64, error)
}
