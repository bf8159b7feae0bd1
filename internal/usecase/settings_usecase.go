package usecase

import (
	"context"
	"log"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// SettingsCache は設定1件ぶんの読み出しキャッシュ。
// キャッシュ側の失敗は常に無視してDBへ落ちる。
type SettingsCache interface {
	Get(ctx context.Context) (model.SiteSetting, bool)
	Set(ctx context.Context, s model.SiteSetting)
	Invalidate(ctx context.Context)
}

type SettingsUsecase struct {
	settingsRepo repo.SiteSettingRepository
	images       ImageStore
	cache        SettingsCache
}

func NewSettingsUsecase(
	settingsRepo repo.SiteSettingRepository,
	images ImageStore,
	cache SettingsCache,
) *SettingsUsecase {
	return &SettingsUsecase{
		settingsRepo: settingsRepo,
		images:       images,
		cache:        cache,
	}
}

// Get は公開API。毎ページ読み込みで叩かれるのでキャッシュを先に見る。
func (u *SettingsUsecase) Get(ctx context.Context) (model.SiteSetting, error) {
	if s, ok := u.cache.Get(ctx); ok {
		return s, nil
	}

	s, err := u.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return model.SiteSetting{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.cache.Set(ctx, s)
	return s, nil
}

// 更新の入力。ポインタのフィールドは「指定されたときだけ書く」
// （連絡先系は空文字でのクリアを許す）。
type UpdateSettingsInput struct {
	SiteName     string
	FacebookURL  *string
	SupportEmail *string
	AdminEmail   *string
	Logo         *ImageFile
	Banner       *ImageFile
}

func (u *SettingsUsecase) Update(ctx context.Context, in UpdateSettingsInput) (model.SiteSetting, error) {
	s, err := u.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return model.SiteSetting{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.SiteName != "" {
		s.SiteName = in.SiteName
	}
	if in.FacebookURL != nil {
		s.FacebookURL = *in.FacebookURL
	}
	if in.SupportEmail != nil {
		s.SupportEmail = *in.SupportEmail
	}
	if in.AdminEmail != nil {
		s.AdminEmail = *in.AdminEmail
	}

	if in.Logo != nil {
		//古いロゴの破棄はベストエフォート
		if s.LogoPublicID != "" {
			if err := u.images.Destroy(ctx, s.LogoPublicID); err != nil {
				log.Printf("failed to destroy old logo %s: %v", s.LogoPublicID, err)
			}
		}
		url, publicID, err := u.images.Upload(ctx, in.Logo.Reader, "settings")
		if err != nil {
			return model.SiteSetting{}, NewHTTPError(http.StatusInternalServerError, "logo upload failed")
		}
		s.LogoURL = url
		s.LogoPublicID = publicID
	}

	if in.Banner != nil {
		if s.BannerPublicID != "" {
			if err := u.images.Destroy(ctx, s.BannerPublicID); err != nil {
				log.Printf("failed to destroy old banner %s: %v", s.BannerPublicID, err)
			}
		}
		url, publicID, err := u.images.Upload(ctx, in.Banner.Reader, "settings")
		if err != nil {
			return model.SiteSetting{}, NewHTTPError(http.StatusInternalServerError, "banner upload failed")
		}
		s.BannerURL = url
		s.BannerPublicID = publicID
	}

	saved, err := u.settingsRepo.Save(ctx, s)
	if err != nil {
		return model.SiteSetting{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.cache.Invalidate(ctx)
	return saved, nil
}

// DeleteImage はロゴかバナーを外す。
func (u *SettingsUsecase) DeleteImage(ctx context.Context, imageType string) (model.SiteSetting, error) {
	if imageType != "logo" && imageType != "banner" {
		return model.SiteSetting{}, NewHTTPError(http.StatusBadRequest, "invalid image type")
	}

	s, err := u.settingsRepo.GetOrCreate(ctx)
	if err != nil {
		return model.SiteSetting{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	switch imageType {
	case "logo":
		if s.LogoPublicID != "" {
			if err := u.images.Destroy(ctx, s.LogoPublicID); err != nil {
				log.Printf("failed to destroy logo %s: %v", s.LogoPublicID, err)
			}
		}
		s.LogoURL = ""
		s.LogoPublicID = ""
	case "banner":
		if s.BannerPublicID != "" {
			if err := u.images.Destroy(ctx, s.BannerPublicID); err != nil {
				log.Printf("failed to destroy banner %s: %v", s.BannerPublicID, err)
			}
		}
		s.BannerURL = ""
		s.BannerPublicID = ""
	}

	saved, err := u.settingsRepo.Save(ctx, s)
	if err != nil {
		return model.SiteSetting{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.cache.Invalidate(ctx)
	return saved, nil
}
