package repository

import "context"

type InventoryRepository interface {
	// 在庫減算。0未満にはならない（注文確定は在庫不足でも落とさない方針）
	DecrementStockClamped(ctx context.Context, productID int64, qty int64) error

	// 在庫戻し（キャンセル）。上限クランプはしない
	IncreaseStock(ctx context.Context, productID int64, qty int64) error
}
