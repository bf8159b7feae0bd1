package model

import "time"

// 商品。在庫0でも一覧から隠れるだけで、削除はスマート削除か管理者操作のみ。
type Product struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Category string `gorm:"type:varchar(100);not null;index" json:"category"`

	//画像URLと削除用のアセットID
	Image         string `gorm:"type:varchar(512);not null" json:"image"`
	ImagePublicID string `gorm:"type:varchar(255)" json:"-"`

	//通常価格と特価（特価は任意、通常価格より安いこと）
	RegularPrice int64  `gorm:"not null" json:"regular_price"`
	OfferPrice   *int64 `json:"offer_price,omitempty"`

	Stock       int64  `gorm:"not null;default:0" json:"stock"`
	Description string `gorm:"type:text;not null" json:"description"`

	Materials string   `gorm:"type:varchar(255)" json:"materials"`
	Work      string   `gorm:"type:varchar(255)" json:"work"`
	Sizes     []string `gorm:"serializer:json;type:text" json:"sizes"`
	Lengths   []string `gorm:"serializer:json;type:text" json:"lengths"`

	//タイムセール終了日時（任意）
	Timer *time.Time `json:"timer,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
