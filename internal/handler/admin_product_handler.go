package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SuccessResponse は { message: string } の形に寄せます。
type SuccessResponse struct {
	Message string `json:"message"`
}

// 商品の管理API（登録と削除）
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録。gはAuthJWT+AdminRoleGuard適用済みのグループ。
func (h *AdminProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products/all", h.listAll)
	g.POST("/products", h.createProducts)
	g.DELETE("/products/:id", h.deleteProduct)
}

// 在庫0も含めた全商品
func (h *AdminProductHandler) listAll(c echo.Context) error {
	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Category: c.QueryParam("category"),
		ShowAll:  true,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// multipartで受ける。画像1枚につき商品を1つ作る。
func (h *AdminProductHandler) createProducts(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid multipart form"})
	}

	in := usecase.CreateProductsInput{
		Name:        c.FormValue("name"),
		Category:    c.FormValue("category"),
		Description: c.FormValue("description"),
		Materials:   c.FormValue("materials"),
		Work:        c.FormValue("work"),
		Sizes:       c.FormValue("sizes"),
		Lengths:     c.FormValue("lengths"),
	}

	if v := c.FormValue("regularPrice"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid regularPrice"})
		}
		in.RegularPrice = x
	}
	if v := c.FormValue("offerPrice"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offerPrice"})
		}
		in.OfferPrice = &x
	}
	if v := c.FormValue("stock"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid stock"})
		}
		in.Stock = x
	}
	if v := c.FormValue("timer"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid timer"})
		}
		in.Timer = &t
	}

	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read image"})
		}
		defer f.Close()
		in.Files = append(in.Files, usecase.ImageFile{Reader: f, Filename: fh.Filename})
	}

	out, err := h.uc.CreateProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "Product deleted"})
}

// contextからuser_idを取得する
func getUserIDFromContext(c echo.Context) (int64, bool) {
	raw := c.Get(middleware.CtxUserIDKey)
	id, ok := raw.(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// contextからroleを取得する
func getUserRoleFromContext(c echo.Context) string {
	raw := c.Get(middleware.CtxUserRoleKey)
	role, _ := raw.(string)
	return role
}

// contextから表示名を取得する
func getUserNameFromContext(c echo.Context) string {
	raw := c.Get(middleware.CtxUserNameKey)
	name, _ := raw.(string)
	return name
}
