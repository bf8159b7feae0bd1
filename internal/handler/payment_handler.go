package handler

import (
	"net/http"
	"strings"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SSLCommerzの開始とコールバック
type PaymentHandler struct {
	uc     *usecase.PaymentUsecase
	authUC *usecase.AuthUsecase
	feURL  string
}

func NewPaymentHandler(uc *usecase.PaymentUsecase, authUC *usecase.AuthUsecase, feURL string) *PaymentHandler {
	return &PaymentHandler{
		uc:     uc,
		authUC: authUC,
		feURL:  strings.TrimRight(feURL, "/"),
	}
}

type InitPaymentResponse struct {
	URL string `json:"url"`
}

// initだけ認証必須。コールバックはゲートウェイが叩くので公開。
func (h *PaymentHandler) RegisterAuthedRoutes(g *echo.Group) {
	g.POST("/init", h.initPayment)
}

func (h *PaymentHandler) RegisterCallbackRoutes(g *echo.Group) {
	g.POST("/success/:tranId", h.success)
	g.POST("/fail/:tranId", h.fail)
	g.POST("/cancel/:tranId", h.cancel)
}

func (h *PaymentHandler) initPayment(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//ゲートウェイに渡す連絡先メール
	email := ""
	if user, err := h.authUC.GetUser(c.Request().Context(), userID); err == nil {
		email = user.Email
	}

	gatewayURL, err := h.uc.InitPayment(c.Request().Context(), userID, email, usecase.PlaceOrderInput{
		Items:         req.Items,
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   req.TotalAmount,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, InitPaymentResponse{URL: gatewayURL})
}

// 成功コールバック。処理後はフロントへ303で戻す。
// 不明なtranIdでも利用者はフロントに戻す。
func (h *PaymentHandler) success(c echo.Context) error {
	tranID := c.Param("tranId")
	if err := h.uc.HandleSuccess(c.Request().Context(), tranID); err != nil {
		return c.Redirect(http.StatusSeeOther, h.feURL+"/payment/fail")
	}
	return c.Redirect(http.StatusSeeOther, h.feURL+"/payment/success")
}

func (h *PaymentHandler) fail(c echo.Context) error {
	tranID := c.Param("tranId")
	_ = h.uc.HandleFail(c.Request().Context(), tranID)
	return c.Redirect(http.StatusSeeOther, h.feURL+"/payment/fail")
}

func (h *PaymentHandler) cancel(c echo.Context) error {
	tranID := c.Param("tranId")
	_ = h.uc.HandleCancel(c.Request().Context(), tranID)
	return c.Redirect(http.StatusSeeOther, h.feURL+"/payment/cancel")
}
