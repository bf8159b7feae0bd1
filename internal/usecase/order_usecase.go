package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderItemInput struct {
	ProductID int64  `json:"product"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Qty       int64  `json:"qty"`
	Image     string `json:"image"`
}

type ShippingInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type PlaceOrderInput struct {
	Items         []OrderItemInput
	Shipping      ShippingInput
	PaymentMethod string
	TotalAmount   int64
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Qty       int64  `json:"qty"`
	Image     string `json:"image"`
}

type OrderHistoryOutput struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedBy string    `json:"updated_by"`
}

type OrderOutput struct {
	ID              int64                 `json:"id"`
	UserID          int64                 `json:"user_id"`
	ShippingAddress model.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method"`
	TotalAmount     int64                 `json:"total_amount"`
	Status          string                `json:"status"`
	PaymentStatus   string                `json:"payment_status"`
	TransactionID   string                `json:"transaction_id,omitempty"`
	Items           []OrderItemOutput     `json:"items"`
	History         []OrderHistoryOutput  `json:"status_history"`
	CreatedAt       time.Time             `json:"created_at"`
}

// validatePlaceOrder は注文投入の共通バリデーション。
func validatePlaceOrder(in PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return NewHTTPError(http.StatusBadRequest, "no order items")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Qty <= 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid order item")
		}
	}
	if strings.TrimSpace(in.Shipping.Name) == "" ||
		strings.TrimSpace(in.Shipping.Phone) == "" ||
		strings.TrimSpace(in.Shipping.Address) == "" ||
		strings.TrimSpace(in.Shipping.City) == "" {
		return NewHTTPError(http.StatusBadRequest, "shipping address is incomplete")
	}
	if !model.ValidPaymentMethod(in.PaymentMethod) {
		return NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}
	return nil
}

// PlaceOrder は代引きなどの直接注文。
// 在庫は明細ぶん減らすが0で止める。ここでは在庫不足でも注文を落とさない
// （カート追加側だけが在庫を厳密に見る、という元仕様のままにしている）。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validatePlaceOrder(in); err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//在庫減算。消えた商品は黙って飛ばす
		for _, it := range in.Items {
			if err := r.Inventory().DecrementStockClamped(ctx, it.ProductID, it.Qty); err != nil {
				if err == repo.ErrNotFound {
					continue
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID: userID,
			ShippingAddress: model.ShippingAddress{
				Name:    in.Shipping.Name,
				Phone:   in.Shipping.Phone,
				Address: in.Shipping.Address,
				City:    in.Shipping.City,
			},
			PaymentMethod: model.PaymentMethod(in.PaymentMethod),
			TotalAmount:   in.TotalAmount,
			Status:        model.OrderStatusPending,
			PaymentStatus: model.PaymentStatusPending,
			ShowToAdmin:   true,
			ShowToUser:    true,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		orderItems := make([]model.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           it.ProductID,
				ProductNameSnapshot: it.Name,
				UnitPriceSnapshot:   it.Price,
				Quantity:            it.Qty,
				ImageSnapshot:       it.Image,
				CreatedAt:           now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//履歴はPending1件で始まる
		if err := r.History().Append(ctx, model.OrderStatusHistory{
			OrderID:   orderID,
			Status:    model.OrderStatusPending,
			UpdatedBy: "System",
			CreatedAt: now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文成功でカートを消す
		if err := r.Carts().DeleteByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created := model.Order{
			ID:            orderID,
			UserID:        userID,
			PaymentMethod: model.PaymentMethod(in.PaymentMethod),
			TotalAmount:   in.TotalAmount,
			Status:        model.OrderStatusPending,
			PaymentStatus: model.PaymentStatusPending,
			ShippingAddress: model.ShippingAddress{
				Name:    in.Shipping.Name,
				Phone:   in.Shipping.Phone,
				Address: in.Shipping.Address,
				City:    in.Shipping.City,
			},
			CreatedAt: now,
		}
		out = toOrderOutput(created, orderItems, []model.OrderStatusHistory{
			{OrderID: orderID, Status: model.OrderStatusPending, UpdatedBy: "System", CreatedAt: now},
		})
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ListMyOrders はユーザー側の履歴（show_to_user=trueのみ）。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListVisibleToUser(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			history, err := r.History().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items, history))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// GetOrder は管理者か注文の持ち主だけ見られる。
func (u *OrderUsecase) GetOrder(ctx context.Context, userID int64, isAdmin bool, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if !isAdmin && o.UserID != userID {
			return NewHTTPError(http.StatusForbidden, "not authorized to view this order")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		history, err := r.History().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items, history)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// DeleteMyOrder はユーザー側の削除。
// 管理者側がすでに消していれば物理削除、そうでなければ自分の画面から隠すだけ。
func (u *OrderUsecase) DeleteMyOrder(ctx context.Context, userID int64, orderID int64) (string, error) {
	if userID <= 0 {
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return "", NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var message string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//持ち主チェック
		if o.UserID != userID {
			return NewHTTPError(http.StatusForbidden, "not authorized to delete this order")
		}

		if !o.ShowToAdmin {
			//両側がfalseになるので物理削除
			if err := hardDeleteOrder(ctx, r, orderID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			message = "Order permanently deleted (Both sides removed)"
			return nil
		}

		if err := r.Orders().SetShowToUser(ctx, orderID, false); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		message = "Order removed from History"
		return nil
	})

	if err != nil {
		return "", err
	}
	return message, nil
}

// hardDeleteOrder は注文と明細と履歴をまとめて物理削除する。
// 両方の表示フラグがfalseになったときだけ呼ばれる。
func hardDeleteOrder(ctx context.Context, r repo.TxRepos, orderID int64) error {
	if err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
		return err
	}
	if err := r.History().DeleteByOrderID(ctx, orderID); err != nil {
		return err
	}
	return r.Orders().Delete(ctx, orderID)
}

func toOrderOutput(o model.Order, items []model.OrderItem, history []model.OrderStatusHistory) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Qty:       it.Quantity,
			Image:     it.ImageSnapshot,
		})
	}

	outHistory := make([]OrderHistoryOutput, 0, len(history))
	for _, h := range history {
		outHistory = append(outHistory, OrderHistoryOutput{
			Status:    string(h.Status),
			Timestamp: h.CreatedAt,
			UpdatedBy: h.UpdatedBy,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   string(o.PaymentMethod),
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		TransactionID:   o.TransactionID,
		Items:           outItems,
		History:         outHistory,
		CreatedAt:       o.CreatedAt,
	}
}
