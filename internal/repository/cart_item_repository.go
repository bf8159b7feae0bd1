package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)

	// 同一商品は数量を加算する
	UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64) error

	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	DeleteByCartAndProduct(ctx context.Context, cartID int64, productID int64) error
}
