package model

import "time"

// カートの明細。同一商品は行を増やさず数量を加算する。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;index;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID int64     `gorm:"not null;index;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int64     `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
