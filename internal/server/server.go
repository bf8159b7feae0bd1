package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/middleware"
)

// Handlers はルート登録に必要なhandler一式。
type Handlers struct {
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	Payment      *handler.PaymentHandler
	Settings     *handler.SettingsHandler
	Auth         *handler.AuthHandler
}

// New はrouterを組み立てて返す。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowCredentials: true,
	}))

	api := e.Group("/api")

	//公開
	h.Product.RegisterRoutes(api)
	h.Settings.RegisterPublicRoutes(api)
	h.Auth.RegisterPublicRoutes(api.Group("/auth"))
	h.Payment.RegisterCallbackRoutes(api.Group("/payment"))

	//認証必須
	authed := api.Group("", middleware.AuthJWT(cfg))
	h.Auth.RegisterAuthedRoutes(authed.Group("/auth"))
	h.Cart.RegisterRoutes(authed.Group("/cart"))
	h.Order.RegisterRoutes(authed.Group("/orders"))
	h.Payment.RegisterAuthedRoutes(authed.Group("/payment"))

	//admin専用
	admin := api.Group("/admin", middleware.AuthJWT(cfg), middleware.AdminRoleGuard())
	h.AdminProduct.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)
	h.Settings.RegisterAdminRoutes(admin)

	return e
}
