package model

import "time"

// ステータス変更の履歴。追記のみで、過去の行は一切書き換えない。
type OrderStatusHistory struct {
	ID      int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64       `gorm:"not null;index" json:"order_id"`
	Status  OrderStatus `gorm:"type:varchar(20);not null" json:"status"`

	//操作した人の表示名。System / Admin がフォールバック。
	UpdatedBy string `gorm:"type:varchar(255);not null" json:"updated_by"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"timestamp"`
}
