package main

import (
	"log"

	"github.com/joho/godotenv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cloudinary"
	"app/internal/infra/db"
	"app/internal/infra/mail"
	"app/internal/infra/redisx"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/sslcommerz"
	"app/internal/server"
	"app/internal/usecase"
)

func main() {
	//.envはローカル開発用。無ければ環境変数だけで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusHistory{},
		&model.SiteSetting{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	settingsRepo := infraRepo.NewSiteSettingGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービス
	imageStore, err := cloudinary.New(cfg.CloudinaryURL)
	if err != nil {
		log.Fatalf("cloudinary: %v", err)
	}
	gateway := sslcommerz.New(cfg.StoreID, cfg.StorePass, cfg.SSLCZLive, cfg.ServerURL)
	mailer := mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)

	//設定キャッシュ（REDIS_ADDR未設定なら無効）
	var settingsCache usecase.SettingsCache = redisx.NoopCache{}
	if cfg.RedisAddr != "" {
		settingsCache = redisx.NewSettingsCache(redisx.New(cfg.RedisAddr))
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, imageStore)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, imageStore)
	paymentUC := usecase.NewPaymentUsecase(txManager, gateway)
	settingsUC := usecase.NewSettingsUsecase(settingsRepo, imageStore, settingsCache)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, mailer, imageStore)

	//Handler生成
	h := server.Handlers{
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		Payment:      handler.NewPaymentHandler(paymentUC, authUC, cfg.FEURL),
		Settings:     handler.NewSettingsHandler(settingsUC),
		Auth:         handler.NewAuthHandler(authUC, cfg),
	}

	//Server起動
	e := server.New(cfg, h)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
