package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// 注文ステータスと支払いステータスは独立した軸。
// Pendingの注文がPaidを持つことはあり得る。
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusPaid      PaymentStatus = "Paid"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusCancelled PaymentStatus = "Cancelled"
)

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodBkash  PaymentMethod = "bkash"
	PaymentMethodRocket PaymentMethod = "rocket"
)

// ValidOrderStatus は列挙に含まれるかだけを見る。
// 遷移の合法性はサーバー側では縛らない（管理画面が唯一のゲート）。
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func ValidPaymentMethod(s string) bool {
	switch PaymentMethod(s) {
	case PaymentMethodCOD, PaymentMethodBkash, PaymentMethodRocket:
		return true
	}
	return false
}

// 配送先。注文ごとのスナップショットとして埋め込む。
type ShippingAddress struct {
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Phone   string `gorm:"type:varchar(30);not null" json:"phone"`
	Address string `gorm:"type:varchar(255);not null" json:"address"`
	City    string `gorm:"type:varchar(100);not null" json:"city"`
}

type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	TotalAmount   int64         `gorm:"not null" json:"total_amount"`

	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"payment_status"`

	//ゲートウェイ決済のときだけ入る
	TransactionID string `gorm:"type:varchar(64);index" json:"transaction_id,omitempty"`

	//表示フラグ2つ。両方falseになったときだけ物理削除する。
	ShowToAdmin bool `gorm:"not null;default:true" json:"show_to_admin"`
	ShowToUser  bool `gorm:"not null;default:true" json:"show_to_user"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
