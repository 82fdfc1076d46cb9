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

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{name: "待支付到已支付", from: StatusPending, to: StatusPaid, want: true},
		{name: "已支付到处理中", from: StatusPaid, to: StatusProcessing, want: true},
		{name: "处理中到已发货", from: StatusProcessing, to: StatusShipped, want: true},
		{name: "已发货到已送达", from: StatusShipped, to: StatusDelivered, want: true},
		{name: "待支付可取消", from: StatusPending, to: StatusCancelled, want: true},
		{name: "已支付可取消", from: StatusPaid, to: StatusCancelled, want: true},
		{name: "处理中不可取消", from: StatusProcessing, to: StatusCancelled, want: false},
		{name: "已发货不可取消", from: StatusShipped, to: StatusCancelled, want: false},
		{name: "处理中可退款", from: StatusProcessing, to: StatusRefunded, want: true},
		{name: "已发货可退款", from: StatusShipped, to: StatusRefunded, want: true},
		{name: "不可跳级到已发货", from: StatusPending, to: StatusShipped, want: false},
		{name: "不可逆向回待支付", from: StatusPaid, to: StatusPending, want: false},
		{name: "已取消是终态", from: StatusCancelled, to: StatusPending, want: false},
		{name: "已取消不可退款", from: StatusCancelled, to: StatusRefunded, want: false},
		{name: "已送达是终态", from: StatusDelivered, to: StatusRefunded, want: false},
		{name: "已退款是终态", from: StatusRefunded, to: StatusPaid, want: false},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.from.CanTransition(tc.to))
		})
	}
}

func TestOrderStatus_Compensating(t *testing.T) {
	t.Parallel()
	assert.True(t, StatusCancelled.Compensating())
	assert.True(t, StatusRefunded.Compensating())
	assert.False(t, StatusPending.Compensating())
	assert.False(t, StatusPaid.Compensating())
	assert.False(t, StatusDelivered.Compensating())
}

func TestOrderStatus_Valid(t *testing.T) {
	t.Parallel()
	for s := StatusPending; s <= StatusRefunded; s++ {
		assert.True(t, s.Valid())
	}
	assert.False(t, OrderStatus(0).Valid())
	assert.False(t, OrderStatus(8).Valid())
}

func TestSubtotal(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		items []OrderItem
		want  int64
	}{
		{
			name: "多件商品",
			items: []OrderItem{
				{ProductID: 1, Price: 1000, Quantity: 2},
				{ProductID: 2, Price: 1000, Quantity: 1},
			},
			want: 3000,
		},
		{
			name:  "空订单",
			items: nil,
			want:  0,
		},
		{
			name: "单件",
			items: []OrderItem{
				{ProductID: 3, Price: 999, Quantity: 1},
			},
			want: 999,
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Subtotal(tc.items))
		})
	}
}

func TestShippingFee(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{name: "低于包邮门槛", subtotal: 3000, want: 599},
		{name: "刚好到门槛", subtotal: 5000, want: 0},
		{name: "超过门槛", subtotal: 9999, want: 0},
		{name: "差一分", subtotal: 4999, want: 599},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ShippingFee(tc.subtotal))
		})
	}
}
