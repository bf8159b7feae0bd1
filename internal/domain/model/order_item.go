package model

import "time"

// 注文明細。名前・価格・画像は注文時点のスナップショット。
type OrderItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64     `gorm:"not null;index" json:"order_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"product_name"`
	UnitPriceSnapshot   int64     `gorm:"not null" json:"price"`
	Quantity            int64     `gorm:"not null" json:"qty"`
	ImageSnapshot       string    `gorm:"type:varchar(512)" json:"image"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
