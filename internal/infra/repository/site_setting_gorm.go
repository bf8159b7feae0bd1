package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type SiteSettingGormRepository struct {
	db *gorm.DB
}

func NewSiteSettingGormRepository(db *gorm.DB) *SiteSettingGormRepository {
	return &SiteSettingGormRepository{db: db}
}

// 先頭の1件を使う。無ければデフォルト値で作る
func (r *SiteSettingGormRepository) GetOrCreate(ctx context.Context) (model.SiteSetting, error) {
	var s model.SiteSetting

	err := r.db.WithContext(ctx).Order("id asc").First(&s).Error
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SiteSetting{}, err
	}

	s = model.SiteSetting{}
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.SiteSetting{}, err
	}
	return s, nil
}

func (r *SiteSettingGormRepository) Save(ctx context.Context, s model.SiteSetting) (model.SiteSetting, error) {
	if err := r.db.WithContext(ctx).Save(&s).Error; err != nil {
		return model.SiteSetting{}, err
	}
	return s, nil
}
