package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"app/internal/config"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// /api/authのHTTP
type AuthHandler struct {
	uc          *usecase.AuthUsecase
	oauthConfig *oauth2.Config
	feURL       string
}

func NewAuthHandler(uc *usecase.AuthUsecase, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		uc: uc,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.ServerURL + "/api/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleoauth.Endpoint,
		},
		feURL: cfg.FEURL,
	}
}

// 公開ルート
func (h *AuthHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/signup", h.signup)
	g.POST("/login", h.login)
	g.POST("/forgot-password", h.forgotPassword)
	g.POST("/reset-password", h.resetPassword)
	g.GET("/google", h.googleRedirect)
	g.GET("/google/callback", h.googleCallback)
}

// gはAuthJWT適用済みのグループ。
func (h *AuthHandler) RegisterAuthedRoutes(g *echo.Group) {
	g.GET("/me", h.me)
	g.PUT("/profile-pic", h.updateProfilePic)
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req usecase.SignupInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Signup(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req usecase.LoginInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Login(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "OTP sent to your email"})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req usecase.ResetPasswordInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.ResetPassword(c.Request().Context(), req); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Password has been reset"})
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	user, err := h.uc.GetUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) updateProfilePic(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read image"})
	}
	defer f.Close()

	user, err := h.uc.UpdateProfilePic(c.Request().Context(), userID, usecase.ImageFile{
		Reader:   f,
		Filename: fh.Filename,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Googleの認可画面へ飛ばす。stateはcookieに入れて往復で照合する。
func (h *AuthHandler) googleRedirect(c echo.Context) error {
	state, err := newOAuthState()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	c.SetCookie(&http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusTemporaryRedirect, h.oauthConfig.AuthCodeURL(state))
}

// Googleのプロフィール応答
type googleUserinfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (h *AuthHandler) googleCallback(c echo.Context) error {
	//state照合
	cookie, err := c.Cookie("oauth_state")
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid oauth state"})
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing code"})
	}

	ctx := c.Request().Context()

	tok, err := h.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "google login failed"})
	}

	//プロフィール取得
	res, err := h.oauthConfig.Client(ctx, tok).Get(googleUserinfoURL)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "google login failed"})
	}
	defer res.Body.Close()

	var info googleUserinfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "google login failed"})
	}

	out, err := h.uc.LoginWithGoogle(ctx, usecase.GoogleProfile{
		GoogleID: info.ID,
		Email:    info.Email,
		Name:     info.Name,
		Picture:  info.Picture,
	})
	if err != nil {
		return writeError(c, err)
	}

	//tokenを載せてフロントへ戻す
	return c.Redirect(http.StatusSeeOther, h.uc.FrontendRedirectURL(out.Token))
}

func newOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
