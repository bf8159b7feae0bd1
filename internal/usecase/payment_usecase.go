package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

// GatewaySessionInput はゲートウェイのセッション作成に渡す中身。
type GatewaySessionInput struct {
	TransactionID string
	TotalAmount   int64
	ProductNames  []string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	City          string
}

// PaymentGateway はSSLCommerzのセッションAPIの約束。
// 成功時は利用者をリダイレクトさせるゲートウェイURLを返す。
type PaymentGateway interface {
	CreateSession(ctx context.Context, in GatewaySessionInput) (string, error)
}

type PaymentUsecase struct {
	tx      repo.TransactionManager
	gateway PaymentGateway
}

func NewPaymentUsecase(tx repo.TransactionManager, gateway PaymentGateway) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, gateway: gateway}
}

// InitPayment はゲートウェイ決済の開始。
// 注文はPending/Pendingで先に保存するが、在庫もカートもここでは触らない。
// ゲートウェイ注文の在庫は管理者のステータス操作だけが動かす。
func (u *PaymentUsecase) InitPayment(ctx context.Context, userID int64, userEmail string, in PlaceOrderInput) (string, error) {
	if userID <= 0 {
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validatePlaceOrder(in); err != nil {
		return "", err
	}

	tranID := uuid.NewString()

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
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
			TransactionID: tranID,
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
		return r.OrderItems().CreateBulk(ctx, orderID, orderItems)
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return "", err
		}
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if userEmail == "" {
		userEmail = "guest@girlsfashion.com"
	}

	names := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		names = append(names, it.Name)
	}

	url, err := u.gateway.CreateSession(ctx, GatewaySessionInput{
		TransactionID: tranID,
		TotalAmount:   in.TotalAmount,
		ProductNames:  names,
		CustomerName:  in.Shipping.Name,
		CustomerEmail: userEmail,
		CustomerPhone: in.Shipping.Phone,
		Address:       in.Shipping.Address,
		City:          in.Shipping.City,
	})
	if err != nil {
		return "", NewHTTPError(http.StatusBadRequest, "payment session was not successful")
	}

	return url, nil
}

// HandleSuccess は決済成功コールバック。
// 支払いをPaidにして、注文も自動でProcessingへ進める。
// 未知のtransaction idは何もしない（エラーにもしない）。
func (u *PaymentUsecase) HandleSuccess(ctx context.Context, tranID string) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, found, err := r.Orders().FindByTransactionID(ctx, tranID)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}

		if err := r.Orders().UpdatePaymentStatus(ctx, o.ID, model.PaymentStatusPaid); err != nil {
			return err
		}
		return r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusProcessing)
	})
}

// HandleFail は決済失敗コールバック。注文ステータスは触らない。
func (u *PaymentUsecase) HandleFail(ctx context.Context, tranID string) error {
	return u.setPaymentStatus(ctx, tranID, model.PaymentStatusFailed)
}

// HandleCancel は決済中断コールバック。注文ステータスは触らない。
func (u *PaymentUsecase) HandleCancel(ctx context.Context, tranID string) error {
	return u.setPaymentStatus(ctx, tranID, model.PaymentStatusCancelled)
}

func (u *PaymentUsecase) setPaymentStatus(ctx context.Context, tranID string, status model.PaymentStatus) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, found, err := r.Orders().FindByTransactionID(ctx, tranID)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		return r.Orders().UpdatePaymentStatus(ctx, o.ID, status)
	})
}
