package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)

	//注文確定後に呼ぶ。カート本体と明細をまとめて消す
	DeleteByUserID(ctx context.Context, userID int64) error
}
