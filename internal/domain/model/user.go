package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	//Google連携だけのアカウントは空のまま
	PasswordHash string `gorm:"column:password_hash" json:"-"`

	Role               Role   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	ProfilePic         string `gorm:"type:varchar(512)" json:"profile_pic"`
	ProfilePicPublicID string `gorm:"type:varchar(255)" json:"-"`
	GoogleID           string `gorm:"type:varchar(64);index" json:"-"`

	//パスワード再設定用OTP（ハッシュと期限）
	ResetOTPHash      string     `json:"-"`
	ResetOTPExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
