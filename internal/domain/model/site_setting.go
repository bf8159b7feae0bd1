package model

import "time"

// サイト全体の設定。レコードは常に1件だけ使う。
type SiteSetting struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	SiteName string `gorm:"type:varchar(255);not null;default:'Girl''s Fashion'" json:"site_name"`

	LogoURL      string `gorm:"type:varchar(512)" json:"logo_url"`
	LogoPublicID string `gorm:"type:varchar(255)" json:"-"`

	BannerURL      string `gorm:"type:varchar(512)" json:"banner_url"`
	BannerPublicID string `gorm:"type:varchar(255)" json:"-"`

	AdminEmail   string `gorm:"type:varchar(255)" json:"admin_email"`
	FacebookURL  string `gorm:"type:varchar(512)" json:"facebook_url"`
	SupportEmail string `gorm:"type:varchar(255)" json:"support_email"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
