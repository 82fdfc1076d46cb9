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

package paypal

import (
	"context"
	"testing"

	"github.com/ecodeclub/emall/internal/order"
	"github.com/plutov/paypal/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	gotUnits      []paypal.PurchaseUnitRequest
	gotAppContext *paypal.ApplicationContext
	captureStatus string
}

func (f *fakeGateway) GetAccessToken(_ context.Context) (*paypal.TokenResponse, error) {
	return &paypal.TokenResponse{Token: "fake-token"}, nil
}

func (f *fakeGateway) CreateOrder(_ context.Context, _ string, units []paypal.PurchaseUnitRequest, _ *paypal.CreateOrderPayer, appContext *paypal.ApplicationContext) (*paypal.Order, error) {
	f.gotUnits = units
	f.gotAppContext = appContext
	return &paypal.Order{
		ID:     "PP-123",
		Status: "CREATED",
		Links: []paypal.Link{
			{Href: "https://api.sandbox.paypal.com/v2/checkout/orders/PP-123", Rel: "self"},
			{Href: "https://www.sandbox.paypal.com/checkoutnow?token=PP-123", Rel: "approve"},
		},
	}, nil
}

func (f *fakeGateway) CaptureOrder(_ context.Context, _ string, _ paypal.CaptureOrderRequest) (*paypal.CaptureOrderResponse, error) {
	return &paypal.CaptureOrderResponse{ID: "PP-123", Status: f.captureStatus}, nil
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()
	gateway := &fakeGateway{}
	svc := NewPayPalPaymentService(gateway, Config{
		BrandName: "emall",
		ReturnURL: "https://emall.dev/paypal/return",
		CancelURL: "https://emall.dev/paypal/cancel",
	})

	id, approvalURL, err := svc.CreateOrder(context.Background(), order.Order{
		SN:       "EM-TEST-001",
		Subtotal: 3000,
		Shipping: 599,
		Total:    3599,
		Items: []order.OrderItem{
			{ProductID: 1, Name: "机械键盘", Price: 1000, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PP-123", id)
	assert.Equal(t, "https://www.sandbox.paypal.com/checkoutnow?token=PP-123", approvalURL)

	require.Len(t, gateway.gotUnits, 1)
	unit := gateway.gotUnits[0]
	assert.Equal(t, "EM-TEST-001", unit.ReferenceID)
	// 金额明细必须和订单一致, 否则网关会拒单
	assert.Equal(t, "35.99", unit.Amount.Value)
	assert.Equal(t, "EUR", unit.Amount.Currency)
	assert.Equal(t, "30.00", unit.Amount.Breakdown.ItemTotal.Value)
	assert.Equal(t, "5.99", unit.Amount.Breakdown.Shipping.Value)
	require.Len(t, unit.Items, 1)
	assert.Equal(t, "10.00", unit.Items[0].UnitAmount.Value)
	assert.Equal(t, "3", unit.Items[0].Quantity)

	assert.Equal(t, "emall", gateway.gotAppContext.BrandName)
	assert.Equal(t, "https://emall.dev/paypal/return", gateway.gotAppContext.ReturnURL)
}

func TestCaptureOrder(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{name: "捕获完成", status: "COMPLETED"},
		{name: "等待批准", status: "PENDING", wantErr: true},
		{name: "已拒绝", status: "DECLINED", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewPayPalPaymentService(&fakeGateway{captureStatus: tc.status}, Config{})
			err := svc.CaptureOrder(context.Background(), "PP-123")
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCentsToAmount(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		cents int64
		want  string
	}{
		{cents: 999, want: "9.99"},
		{cents: 3599, want: "35.99"},
		{cents: 5000, want: "50.00"},
		{cents: 50, want: "0.50"},
		{cents: 0, want: "0.00"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, centsToAmount(tc.cents))
	}
}
