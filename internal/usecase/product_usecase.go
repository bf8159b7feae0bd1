package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 画像ストレージの約束。削除は呼び出し側でベストエフォート扱いにする。
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, folder string) (url string, publicID string, err error)
	Destroy(ctx context.Context, publicID string) error
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	images      ImageStore
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, images ImageStore) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		images:      images,
	}
}

// GET /api/productsの入力DTO
type ListProductsInput struct {
	Category string
	ShowAll  bool
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) ([]model.Product, error) {
	items, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Category: strings.TrimSpace(in.Category),
		ShowAll:  in.ShowAll,
	})
	if err != nil {
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// アップロードされた1ファイル
type ImageFile struct {
	Reader   io.Reader
	Filename string
}

// 一括登録の入力。画像1枚につき商品を1つ作る
type CreateProductsInput struct {
	Name         string
	Category     string
	Description  string
	RegularPrice int64
	OfferPrice   *int64
	Stock        int64
	Materials    string
	Work         string
	Sizes        string // カンマ区切り
	Lengths      string // カンマ区切り
	Timer        *time.Time
	Files        []ImageFile
}

func (u *ProductUsecase) CreateProducts(ctx context.Context, in CreateProductsInput) ([]model.Product, error) {
	if len(in.Files) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "at least one image file is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "category is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "description is required")
	}
	if in.RegularPrice <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid regular price")
	}
	if in.OfferPrice != nil && *in.OfferPrice >= in.RegularPrice {
		return nil, NewHTTPError(http.StatusBadRequest, "offer price must be less than regular price")
	}
	if in.Stock < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid stock")
	}

	sizes := splitCSV(in.Sizes)
	lengths := splitCSV(in.Lengths)

	created := make([]model.Product, 0, len(in.Files))
	for _, f := range in.Files {
		url, publicID, err := u.images.Upload(ctx, f.Reader, "products")
		if err != nil {
			log.Printf("product image upload failed: %v", err)
			return nil, NewHTTPError(http.StatusInternalServerError, "image upload failed")
		}

		p, err := u.productRepo.Create(ctx, model.Product{
			Name:          strings.TrimSpace(in.Name),
			Category:      strings.TrimSpace(in.Category),
			Description:   in.Description,
			Image:         url,
			ImagePublicID: publicID,
			RegularPrice:  in.RegularPrice,
			OfferPrice:    in.OfferPrice,
			Stock:         in.Stock,
			Materials:     in.Materials,
			Work:          in.Work,
			Sizes:         sizes,
			Lengths:       lengths,
			Timer:         in.Timer,
		})
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		created = append(created, p)
	}

	return created, nil
}

// 管理者による手動削除。画像破棄はベストエフォート
func (u *ProductUsecase) DeleteProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if p.ImagePublicID != "" {
		if err := u.images.Destroy(ctx, p.ImagePublicID); err != nil {
			//画像が消せなくても商品削除は進める
			log.Printf("failed to destroy product image %s: %v", p.ImagePublicID, err)
		}
	}

	if err := u.productRepo.Delete(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
