package usecase

import (
	"context"
	"fmt"
	"net/http"

	repo "app/internal/repository"
)

// CartUsecase は /api/cart の業務ロジックです。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

type CartItemResponse struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	RegularPrice int64  `json:"regular_price"`
	OfferPrice   *int64 `json:"offer_price,omitempty"`
	Stock        int64  `json:"stock"`
	Quantity     int64  `json:"quantity"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

// GetCart はカート取得。カートが無ければ空を返す（404にしない）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return CartResponse{Items: []CartItemResponse{}}, nil
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddToCart はカートに追加（同一商品は数量加算）。
// 増加だけ在庫チェックする。減少（マイナス数量）はチェックしない。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if qty > 0 {
		//既存数量を調べて、加算後が在庫を超えるなら弾く
		items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
		if err != nil {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		var existingQty int64 = 0
		for _, it := range items {
			if it.ProductID == in.ProductID {
				existingQty = it.Quantity
				break
			}
		}

		if existingQty+qty > p.Stock {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("Out of Stock! Only %d available.", p.Stock))
		}
	}

	if err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, qty); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// RemoveFromCart は商品IDで明細を落とす。
func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.DeleteByCartAndProduct(ctx, cart.ID, productID); err != nil && err != repo.ErrNotFound {
		//明細が元々無いのは成功扱い
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// cartIDの明細をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))

	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			//消えた商品の明細は表示しない
			continue
		}

		respItems = append(respItems, CartItemResponse{
			ProductID:    it.ProductID,
			Name:         p.Name,
			Image:        p.Image,
			RegularPrice: p.RegularPrice,
			OfferPrice:   p.OfferPrice,
			Stock:        p.Stock,
			Quantity:     it.Quantity,
		})
	}

	return CartResponse{Items: respItems}, nil
}
