// Copyright 2023 ecodeclub
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ecodeclub/emall/internal/order"
	"github.com/ecodeclub/emall/internal/payment/internal/domain"
	"github.com/ecodeclub/emall/internal/payment/internal/service/paypal"
	"github.com/ecodeclub/emall/internal/pkg/sequencenumber"
	paypalsdk "github.com/plutov/paypal/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	createErr     error
	captureErr    error
	captureStatus string
	captured      []string
}

func (f *fakeGateway) GetAccessToken(_ context.Context) (*paypalsdk.TokenResponse, error) {
	return &paypalsdk.TokenResponse{Token: "test-token"}, nil
}

func (f *fakeGateway) CreateOrder(_ context.Context, _ string, _ []paypalsdk.PurchaseUnitRequest, _ *paypalsdk.CreateOrderPayer, _ *paypalsdk.ApplicationContext) (*paypalsdk.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &paypalsdk.Order{
		ID:     "PP-123",
		Status: "CREATED",
		Links: []paypalsdk.Link{
			{Rel: "self", Href: "https://api.sandbox.paypal.com/v2/checkout/orders/PP-123"},
			{Rel: "approve", Href: "https://www.sandbox.paypal.com/checkoutnow?token=PP-123"},
		},
	}, nil
}

func (f *fakeGateway) CaptureOrder(_ context.Context, orderID string, _ paypalsdk.CaptureOrderRequest) (*paypalsdk.CaptureOrderResponse, error) {
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	f.captured = append(f.captured, orderID)
	return &paypalsdk.CaptureOrderResponse{ID: orderID, Status: f.captureStatus}, nil
}

// fakeOrderService 只支撑支付流程用到的方法
type fakeOrderService struct {
	order.Service

	order      order.Order
	paypalRefs map[int64]string
	markedPaid []string
}

func newFakeOrderService(o order.Order) *fakeOrderService {
	return &fakeOrderService{order: o, paypalRefs: make(map[int64]string)}
}

func (f *fakeOrderService) FindByID(_ context.Context, id int64) (order.Order, error) {
	if id != f.order.ID {
		return order.Order{}, order.ErrOrderNotFound
	}
	return f.order, nil
}

func (f *fakeOrderService) FindByPayPalOrderID(_ context.Context, ref string) (order.Order, error) {
	if ref != f.order.PayPalOrderID {
		return order.Order{}, order.ErrOrderNotFound
	}
	return f.order, nil
}

func (f *fakeOrderService) UpdatePayPalOrderID(_ context.Context, orderID int64, ref string) error {
	f.paypalRefs[orderID] = ref
	f.order.PayPalOrderID = ref
	return nil
}

func (f *fakeOrderService) MarkPaidByPayPalOrderID(_ context.Context, ref string) (order.Order, error) {
	f.markedPaid = append(f.markedPaid, ref)
	f.order.Status = order.StatusPaid
	return f.order, nil
}

type fakePaymentRepo struct {
	saved []domain.Payment
	paid  []string
}

func (f *fakePaymentRepo) Save(_ context.Context, p domain.Payment) (int64, error) {
	f.saved = append(f.saved, p)
	return int64(len(f.saved)), nil
}

func (f *fakePaymentRepo) FindByOrderID(_ context.Context, orderID int64) (domain.Payment, error) {
	for _, p := range f.saved {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return domain.Payment{}, ErrPaymentNotFound
}

func (f *fakePaymentRepo) FindByPayPalOrderID(_ context.Context, ref string) (domain.Payment, error) {
	for _, p := range f.saved {
		if p.PayPalOrderID == ref {
			return p, nil
		}
	}
	return domain.Payment{}, ErrPaymentNotFound
}

func (f *fakePaymentRepo) MarkPaidByPayPalOrderID(_ context.Context, ref string, _ int64) error {
	f.paid = append(f.paid, ref)
	return nil
}

func newTestService(gw *fakeGateway, orderSvc *fakeOrderService, repo *fakePaymentRepo) Service {
	gateway := paypal.NewPayPalPaymentService(gw, paypal.Config{
		ClientID:  "client-id",
		BrandName: "emall",
		ReturnURL: "https://emall.test/checkout/return",
		CancelURL: "https://emall.test/checkout/cancel",
	})
	return NewService(repo, gateway, orderSvc, sequencenumber.NewGenerator("PMT"))
}

func pendingOrder() order.Order {
	return order.Order{
		ID:       1,
		SN:       "EM-TEST1",
		BuyerID:  7,
		Subtotal: 3000,
		Shipping: 599,
		Total:    3599,
		Status:   order.StatusPending,
		Items: []order.OrderItem{
			{ProductID: 11, Name: "商品A", Price: 1500, Quantity: 2},
		},
	}
}

func TestCreatePayPalOrder(t *testing.T) {
	t.Parallel()
	t.Run("待支付订单创建成功", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{}
		orderSvc := newFakeOrderService(pendingOrder())
		repo := &fakePaymentRepo{}
		svc := newTestService(gw, orderSvc, repo)

		po, err := svc.CreatePayPalOrder(context.Background(), 7, 1)
		require.NoError(t, err)
		assert.Equal(t, "PP-123", po.ID)
		assert.Contains(t, po.ApprovalURL, "checkoutnow")
		require.Len(t, repo.saved, 1)
		assert.Equal(t, domain.PaymentStatusUnpaid, repo.saved[0].Status)
		assert.Equal(t, int64(3599), repo.saved[0].TotalAmount)
		assert.Equal(t, "PP-123", orderSvc.paypalRefs[1])
	})

	t.Run("非所有者拒绝", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(&fakeGateway{}, newFakeOrderService(pendingOrder()), &fakePaymentRepo{})

		_, err := svc.CreatePayPalOrder(context.Background(), 8, 1)
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("非待支付状态拒绝", func(t *testing.T) {
		t.Parallel()
		o := pendingOrder()
		o.Status = order.StatusPaid
		svc := newTestService(&fakeGateway{}, newFakeOrderService(o), &fakePaymentRepo{})

		_, err := svc.CreatePayPalOrder(context.Background(), 7, 1)
		assert.ErrorIs(t, err, ErrOrderNotPending)
	})

	t.Run("网关失败时不落任何记录", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{createErr: errors.New("gateway down")}
		orderSvc := newFakeOrderService(pendingOrder())
		repo := &fakePaymentRepo{}
		svc := newTestService(gw, orderSvc, repo)

		_, err := svc.CreatePayPalOrder(context.Background(), 7, 1)
		require.Error(t, err)
		assert.Empty(t, repo.saved)
		assert.Empty(t, orderSvc.paypalRefs)
	})
}

func TestCapturePayPalOrder(t *testing.T) {
	t.Parallel()
	t.Run("COMPLETED才推进订单", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{captureStatus: "COMPLETED"}
		o := pendingOrder()
		o.PayPalOrderID = "PP-123"
		orderSvc := newFakeOrderService(o)
		repo := &fakePaymentRepo{}
		svc := newTestService(gw, orderSvc, repo)

		updated, err := svc.CapturePayPalOrder(context.Background(), 7, "PP-123")
		require.NoError(t, err)
		assert.Equal(t, order.StatusPaid, updated.Status)
		assert.Equal(t, []string{"PP-123"}, orderSvc.markedPaid)
		assert.Equal(t, []string{"PP-123"}, repo.paid)
	})

	t.Run("未完成状态不动本地订单", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{captureStatus: "PENDING"}
		o := pendingOrder()
		o.PayPalOrderID = "PP-123"
		orderSvc := newFakeOrderService(o)
		repo := &fakePaymentRepo{}
		svc := newTestService(gw, orderSvc, repo)

		_, err := svc.CapturePayPalOrder(context.Background(), 7, "PP-123")
		require.Error(t, err)
		assert.Empty(t, orderSvc.markedPaid)
		assert.Empty(t, repo.paid)
	})

	t.Run("网关调用失败时原样返回错误", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{captureErr: errors.New("timeout")}
		o := pendingOrder()
		o.PayPalOrderID = "PP-123"
		orderSvc := newFakeOrderService(o)
		svc := newTestService(gw, orderSvc, &fakePaymentRepo{})

		_, err := svc.CapturePayPalOrder(context.Background(), 7, "PP-123")
		require.Error(t, err)
		assert.Empty(t, orderSvc.markedPaid)
	})

	t.Run("非所有者拒绝", func(t *testing.T) {
		t.Parallel()
		o := pendingOrder()
		o.PayPalOrderID = "PP-123"
		svc := newTestService(&fakeGateway{captureStatus: "COMPLETED"}, newFakeOrderService(o), &fakePaymentRepo{})

		_, err := svc.CapturePayPalOrder(context.Background(), 99, "PP-123")
		assert.ErrorIs(t, err, ErrNotOwner)
	})
}
