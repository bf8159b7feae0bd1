package repository

import (
	"context"

	"app/internal/domain/model"
)

// 設定は常に1件。無ければ作って返す。
type SiteSettingRepository interface {
	GetOrCreate(ctx context.Context) (model.SiteSetting, error)
	Save(ctx context.Context, s model.SiteSetting) (model.SiteSetting, error)
}
