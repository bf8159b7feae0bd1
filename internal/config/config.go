package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）

	JWTSecret string // JWT署名シークレット

	GoEnv     string // dev/prod
	ServerURL string // このAPI自身のURL（決済コールバックで使う）
	FEURL     string // フロントURL（CORSやリダイレクトで使う）

	AppName string // サイト名のデフォルト

	// SSLCommerz
	StoreID   string
	StorePass string
	SSLCZLive bool

	// Cloudinary（CLOUDINARY_URL形式）
	CloudinaryURL string

	// SMTP（OTPメール送信用）
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	// Redis（設定キャッシュ用、空なら無効）
	RedisAddr string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string

	// マスター管理者（初回ログインで自動作成）
	AdminEmail    string
	AdminPassword string
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:     os.Getenv("GO_ENV"),
		ServerURL: os.Getenv("SERVER_URL"),
		FEURL:     os.Getenv("FE_URL"),

		AppName: os.Getenv("APP_NAME"),

		StoreID:   os.Getenv("SSLCZ_STORE_ID"),
		StorePass: os.Getenv("SSLCZ_STORE_PASS"),
		SSLCZLive: os.Getenv("SSLCZ_IS_LIVE") == "true",

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	//SMTPポートは任意（未設定なら587）
	if v := os.Getenv("SMTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("SMTP_PORT must be number: %w", err)
		}
		cfg.SMTPPort = p
	} else {
		cfg.SMTPPort = 587
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.ServerURL == "" {
		return Config{}, fmt.Errorf("SERVER_URL is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
