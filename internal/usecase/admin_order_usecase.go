package usecase

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminOrderUsecase struct {
	tx     repo.TransactionManager
	images ImageStore
}

func NewAdminOrderUsecase(tx repo.TransactionManager, images ImageStore) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, images: images}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 注文一覧（show_to_admin=trueのみ）
func (u *AdminOrderUsecase) List(ctx context.Context) ([]OrderOutput, error) {
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListVisibleToAdmin(ctx)
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

// UpdateStatus はステータス更新。
// 列挙に含まれるかだけを見る。どの状態からどこへ動かすかは管理画面が決める
// （サーバー側で遷移表は持たない。縛るならここに置く）。
// Cancelledへの遷移は在庫戻し、Deliveredはスマート削除が走る。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, orderID int64, actorName string, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := strings.TrimSpace(in.Status)
	if !model.ValidOrderStatus(newStatus) {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	updatedBy := strings.TrimSpace(actorName)
	if updatedBy == "" {
		updatedBy = "Admin"
	}

	var out OrderOutput
	var orderItems []model.OrderItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		oldStatus := o.Status

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatus(newStatus)); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := time.Now()
		if err := r.History().Append(ctx, model.OrderStatusHistory{
			OrderID:   orderID,
			Status:    model.OrderStatus(newStatus),
			UpdatedBy: updatedBy,
			CreatedAt: now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		orderItems = items

		//キャンセルへの遷移だけ在庫を戻す。二重キャンセルで二重に戻さないためのガード
		if model.OrderStatus(newStatus) == model.OrderStatusCancelled && oldStatus != model.OrderStatusCancelled {
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					if err == repo.ErrNotFound {
						//商品がもう無いなら戻しようがない
						continue
					}
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		history, err := r.History().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = model.OrderStatus(newStatus)
		out = toOrderOutput(o, items, history)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//スマート削除はトランザクションの外。失敗してもレスポンスは成功のまま
	if model.OrderStatus(newStatus) == model.OrderStatusDelivered {
		u.smartDeleteProducts(ctx, orderID, orderItems)
	}

	return out, nil
}

// smartDeleteProducts は配達完了後の後始末。
// 在庫0で、かつ終端以外の他注文から参照されていない商品を画像ごと消す。
// ここでの失敗はすべてログだけ残して飲み込む。
func (u *AdminOrderUsecase) smartDeleteProducts(ctx context.Context, orderID int64, items []model.OrderItem) {
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		for _, it := range items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if err == repo.ErrNotFound {
				continue
			}
			if err != nil {
				log.Printf("[smart deletion] product %d lookup failed: %v", it.ProductID, err)
				continue
			}
			if p.Stock > 0 {
				continue
			}

			active, err := r.Orders().CountActiveReferencing(ctx, it.ProductID, orderID)
			if err != nil {
				log.Printf("[smart deletion] active order scan failed for product %d: %v", it.ProductID, err)
				continue
			}
			if active > 0 {
				log.Printf("[smart deletion] skipped product %d: %d active orders", it.ProductID, active)
				continue
			}

			if p.ImagePublicID != "" {
				if err := u.images.Destroy(ctx, p.ImagePublicID); err != nil {
					log.Printf("[smart deletion] image destroy failed for product %d: %v", it.ProductID, err)
				}
			}

			if err := r.Products().Delete(ctx, it.ProductID); err != nil {
				log.Printf("[smart deletion] product %d delete failed: %v", it.ProductID, err)
				continue
			}
			log.Printf("[smart deletion] product %d (%s) deleted: zero stock, no active orders", it.ProductID, p.Name)
		}
		return nil
	})
	if err != nil {
		log.Printf("[smart deletion] tx failed for order %d: %v", orderID, err)
	}
}

// DeleteOrder は管理者側の削除。
// ユーザー側がすでに消していれば物理削除、そうでなければ管理画面から隠すだけ。
func (u *AdminOrderUsecase) DeleteOrder(ctx context.Context, orderID int64) (string, error) {
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

		if !o.ShowToUser {
			if err := hardDeleteOrder(ctx, r, orderID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			message = "Order permanently deleted (Both sides removed)"
			return nil
		}

		if err := r.Orders().SetShowToAdmin(ctx, orderID, false); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		message = "Order removed from Admin View"
		return nil
	})

	if err != nil {
		return "", err
	}
	return message, nil
}
