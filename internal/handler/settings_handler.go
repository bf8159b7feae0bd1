package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// サイト設定（公開取得と管理更新）
type SettingsHandler struct {
	uc *usecase.SettingsUsecase
}

func NewSettingsHandler(uc *usecase.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

// 公開の取得
func (h *SettingsHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/settings", h.get)
}

// gはAuthJWT+AdminRoleGuard適用済みのグループ。
func (h *SettingsHandler) RegisterAdminRoutes(g *echo.Group) {
	g.PUT("/settings", h.update)
	g.DELETE("/settings/image/:type", h.deleteImage)
}

func (h *SettingsHandler) get(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// multipartで受ける。logoとbannerは任意。
func (h *SettingsHandler) update(c echo.Context) error {
	in := usecase.UpdateSettingsInput{
		SiteName: c.FormValue("siteName"),
	}

	//空文字でのクリアを区別するため、フィールドの有無を見る
	if vs, ok := c.Request().Form["facebookUrl"]; ok && len(vs) > 0 {
		in.FacebookURL = &vs[0]
	}
	if vs, ok := c.Request().Form["supportEmail"]; ok && len(vs) > 0 {
		in.SupportEmail = &vs[0]
	}
	if vs, ok := c.Request().Form["adminEmail"]; ok && len(vs) > 0 {
		in.AdminEmail = &vs[0]
	}

	if fh, err := c.FormFile("logo"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read logo"})
		}
		defer f.Close()
		in.Logo = &usecase.ImageFile{Reader: f, Filename: fh.Filename}
	}
	if fh, err := c.FormFile("banner"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read banner"})
		}
		defer f.Close()
		in.Banner = &usecase.ImageFile{Reader: f, Filename: fh.Filename}
	}

	out, err := h.uc.Update(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SettingsHandler) deleteImage(c echo.Context) error {
	out, err := h.uc.DeleteImage(c.Request().Context(), c.Param("type"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
