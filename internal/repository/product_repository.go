package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索。ShowAllがfalseなら在庫0の商品を隠す。
type ProductListQuery struct {
	Category string
	ShowAll  bool
}

// 商品の永続化（保存・取得・物理削除）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error

	//スマート削除・管理者削除で使う物理削除
	Delete(ctx context.Context, id int64) error
}
