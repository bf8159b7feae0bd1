package redisx

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"app/internal/domain/model"
)

const (
	settingsKey = "site_settings"
	settingsTTL = 10 * time.Minute
)

// SettingsCache はサイト設定のRedisキャッシュ。
// usecase.SettingsCacheを満たす。失敗はログだけ残してDB読みに落とす。
type SettingsCache struct {
	rdb *redis.Client
}

func NewSettingsCache(rdb *redis.Client) *SettingsCache {
	return &SettingsCache{rdb: rdb}
}

func (c *SettingsCache) Get(ctx context.Context) (model.SiteSetting, bool) {
	raw, err := c.rdb.Get(ctx, settingsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("settings cache get: %v", err)
		}
		return model.SiteSetting{}, false
	}

	var s model.SiteSetting
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Printf("settings cache decode: %v", err)
		return model.SiteSetting{}, false
	}
	return s, true
}

func (c *SettingsCache) Set(ctx context.Context, s model.SiteSetting) {
	raw, err := json.Marshal(s)
	if err != nil {
		log.Printf("settings cache encode: %v", err)
		return
	}
	if err := c.rdb.Set(ctx, settingsKey, raw, settingsTTL).Err(); err != nil {
		log.Printf("settings cache set: %v", err)
	}
}

func (c *SettingsCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, settingsKey).Err(); err != nil {
		log.Printf("settings cache invalidate: %v", err)
	}
}

// NoopCache はRedis未設定のときの代替。常にミスする。
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context) (model.SiteSetting, bool) {
	return model.SiteSetting{}, false
}

func (NoopCache) Set(ctx context.Context, s model.SiteSetting) {}

func (NoopCache) Invalidate(ctx context.Context) {}
