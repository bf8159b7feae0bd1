package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"
)

func validPlaceOrderInput() usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		Items: []usecase.OrderItemInput{
			{ProductID: 1, Name: "Silk Saree", Price: 150000, Qty: 2, Image: "https://img/1.jpg"},
		},
		Shipping: usecase.ShippingInput{
			Name:    "Rahima Akter",
			Phone:   "01711111111",
			Address: "House 12, Road 3",
			City:    "Dhaka",
		},
		PaymentMethod: "cod",
		TotalAmount:   300000,
	}
}

// =====================
// PlaceOrder tests
// =====================

func TestOrderUsecase_PlaceOrder_Unauthorized(t *testing.T) {
	uc := usecase.NewOrderUsecase(new(TxManagerMock))

	_, err := uc.PlaceOrder(context.Background(), 0, validPlaceOrderInput())
	assertErrContains(t, err, "unauthorized")
}

func TestOrderUsecase_PlaceOrder_NoItems(t *testing.T) {
	uc := usecase.NewOrderUsecase(new(TxManagerMock))

	in := validPlaceOrderInput()
	in.Items = nil

	_, err := uc.PlaceOrder(context.Background(), 1, in)
	assertErrContains(t, err, "no order items")
}

func TestOrderUsecase_PlaceOrder_InvalidItem(t *testing.T) {
	uc := usecase.NewOrderUsecase(new(TxManagerMock))

	in := validPlaceOrderInput()
	in.Items[0].Qty = 0

	_, err := uc.PlaceOrder(context.Background(), 1, in)
	assertErrContains(t, err, "invalid order item")
}

func TestOrderUsecase_PlaceOrder_IncompleteShipping(t *testing.T) {
	uc := usecase.NewOrderUsecase(new(TxManagerMock))

	in := validPlaceOrderInput()
	in.Shipping.City = "  "

	_, err := uc.PlaceOrder(context.Background(), 1, in)
	assertErrContains(t, err, "shipping address is incomplete")
}

func TestOrderUsecase_PlaceOrder_InvalidPaymentMethod(t *testing.T) {
	uc := usecase.NewOrderUsecase(new(TxManagerMock))

	in := validPlaceOrderInput()
	in.PaymentMethod = "paypal"

	_, err := uc.PlaceOrder(context.Background(), 1, in)
	assertErrContains(t, err, "invalid payment method")
}

func TestOrderUsecase_PlaceOrder_Success(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	historyRepo := new(HistoryRepoMock)
	cartsRepo := new(CartRepoMock)
	invRepo := new(InventoryRepoMock)

	tx.Repos = &TxReposMock{
		orders:     ordersRepo,
		orderItems: itemsRepo,
		history:    historyRepo,
		carts:      cartsRepo,
		inventory:  invRepo,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	invRepo.On("DecrementStockClamped", mock.Anything, int64(1), int64(2)).Return(nil)
	ordersRepo.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(10), nil)
	itemsRepo.On("CreateBulk", mock.Anything, int64(10), mock.Anything).Return(nil)
	historyRepo.On("Append", mock.Anything, mock.MatchedBy(func(h model.OrderStatusHistory) bool {
		return h.OrderID == 10 && h.Status == model.OrderStatusPending && h.UpdatedBy == "System"
	})).Return(nil)
	cartsRepo.On("DeleteByUserID", mock.Anything, int64(7)).Return(nil)

	uc := usecase.NewOrderUsecase(tx)

	out, err := uc.PlaceOrder(ctx, 7, validPlaceOrderInput())
	assert.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.Equal(t, string(model.PaymentStatusPending), out.PaymentStatus)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, 1, len(out.History))

	tx.AssertExpectations(t)
	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
	historyRepo.AssertExpectations(t)
	cartsRepo.AssertExpectations(t)
	invRepo.AssertExpectations(t)
}

// 消えた商品の在庫減算は黙って飛ばし、注文自体は通る
func TestOrderUsecase_PlaceOrder_MissingProductSkipped(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	historyRepo := new(HistoryRepoMock)
	cartsRepo := new(CartRepoMock)
	invRepo := new(InventoryRepoMock)

	tx.Repos = &TxReposMock{
		orders:     ordersRepo,
		orderItems: itemsRepo,
		history:    historyRepo,
		carts:      cartsRepo,
		inventory:  invRepo,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	invRepo.On("DecrementStockClamped", mock.Anything, int64(1), int64(2)).Return(repo.ErrNotFound)
	ordersRepo.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(11), nil)
	itemsRepo.On("CreateBulk", mock.Anything, int64(11), mock.Anything).Return(nil)
	historyRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
	cartsRepo.On("DeleteByUserID", mock.Anything, int64(7)).Return(nil)

	uc := usecase.NewOrderUsecase(tx)

	out, err := uc.PlaceOrder(ctx, 7, validPlaceOrderInput())
	assert.NoError(t, err)
	assert.Equal(t, int64(11), out.ID)
}

// =====================
// GetOrder tests
// =====================

func TestOrderUsecase_GetOrder_ForbiddenForOtherUser(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Order{ID: 5, UserID: 99}, nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.GetOrder(ctx, 1, false, 5)
	assertErrContains(t, err, "not authorized")
}

func TestOrderUsecase_GetOrder_AdminCanViewAnyOrder(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	historyRepo := new(HistoryRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo, history: historyRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Order{ID: 5, UserID: 99}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderItem{}, nil)
	historyRepo.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderStatusHistory{}, nil)

	uc := usecase.NewOrderUsecase(tx)

	out, err := uc.GetOrder(ctx, 1, true, 5)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), out.ID)
}

func TestOrderUsecase_GetOrder_NotFound(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Order{}, repo.ErrNotFound)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.GetOrder(ctx, 1, false, 5)
	assertErrContains(t, err, "order not found")
}

// =====================
// DeleteMyOrder tests
// =====================

func TestOrderUsecase_DeleteMyOrder_Forbidden(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Order{ID: 5, UserID: 99, ShowToAdmin: true, ShowToUser: true}, nil)

	uc := usecase.NewOrderUsecase(tx)

	_, err := uc.DeleteMyOrder(ctx, 1, 5)
	assertErrContains(t, err, "not authorized")
}

// 管理者がまだ見えている間はユーザー側のフラグだけ消す
func TestOrderUsecase_DeleteMyOrder_HidesFromUserOnly(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Order{ID: 5, UserID: 1, ShowToAdmin: true, ShowToUser: true}, nil)
	ordersRepo.On("SetShowToUser", mock.Anything, int64(5), false).Return(nil)

	uc := usecase.NewOrderUsecase(tx)

	msg, err := uc.DeleteMyOrder(ctx, 1, 5)
	assert.NoError(t, err)
	assert.Equal(t, "Order removed from History", msg)

	ordersRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// 管理者側がすでに消していれば両フラグfalseになるので物理削除
func TestOrderUsecase_DeleteMyOrder_HardDeleteWhenAdminAlreadyRemoved(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	historyRepo := new(HistoryRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo, history: historyRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByID", mock.Anything, int64(5)).Return(model.Order{ID: 5, UserID: 1, ShowToAdmin: false, ShowToUser: true}, nil)
	itemsRepo.On("DeleteByOrderID", mock.Anything, int64(5)).Return(nil)
	historyRepo.On("DeleteByOrderID", mock.Anything, int64(5)).Return(nil)
	ordersRepo.On("Delete", mock.Anything, int64(5)).Return(nil)

	uc := usecase.NewOrderUsecase(tx)

	msg, err := uc.DeleteMyOrder(ctx, 1, 5)
	assert.NoError(t, err)
	assert.Equal(t, "Order permanently deleted (Both sides removed)", msg)

	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
	historyRepo.AssertExpectations(t)
}

// =====================
// ListMyOrders tests
// =====================

func TestOrderUsecase_ListMyOrders_BuildsFullOutput(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	ordersRepo := new(OrderRepoMock)
	itemsRepo := new(OrderItemRepoMock)
	historyRepo := new(HistoryRepoMock)

	tx.Repos = &TxReposMock{orders: ordersRepo, orderItems: itemsRepo, history: historyRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders := []model.Order{
		{ID: 1, UserID: 7, Status: model.OrderStatusPending},
		{ID: 2, UserID: 7, Status: model.OrderStatusDelivered},
	}
	ordersRepo.On("ListVisibleToUser", mock.Anything, int64(7)).Return(orders, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(2)).Return([]model.OrderItem{}, nil)
	historyRepo.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderStatusHistory{}, nil)
	historyRepo.On("ListByOrderID", mock.Anything, int64(2)).Return([]model.OrderStatusHistory{}, nil)

	uc := usecase.NewOrderUsecase(tx)

	outs, err := uc.ListMyOrders(ctx, 7)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(outs))

	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
	historyRepo.AssertExpectations(t)
}
