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

type OrderStatus uint8

const (
	StatusPending    OrderStatus = 1
	StatusPaid       OrderStatus = 2
	StatusProcessing OrderStatus = 3
	StatusShipped    OrderStatus = 4
	StatusDelivered  OrderStatus = 5
	StatusCancelled  OrderStatus = 6
	StatusRefunded   OrderStatus = 7
)

// 运费规则: 单位为分, 满50欧免运费, 否则固定5.99欧
const (
	FreeShippingThreshold int64 = 5000
	FlatShippingFee       int64 = 599
)

func (s OrderStatus) ToUint8() uint8 {
	return uint8(s)
}

func (s OrderStatus) Valid() bool {
	return s >= StatusPending && s <= StatusRefunded
}

// Terminal 终态订单不允许再变更
func (s OrderStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusDelivered || s == StatusRefunded
}

// Compensating 进入该状态时需要把订单项的库存加回去
func (s OrderStatus) Compensating() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// CanTransition 订单状态机
// 正向: 待支付 -> 已支付 -> 处理中 -> 已发货 -> 已送达
// 取消: 仅限待支付/已支付; 退款: 任意非终态
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case StatusPaid:
		return s == StatusPending
	case StatusProcessing:
		return s == StatusPaid
	case StatusShipped:
		return s == StatusProcessing
	case StatusDelivered:
		return s == StatusShipped
	case StatusCancelled:
		return s == StatusPending || s == StatusPaid
	case StatusRefunded:
		return true
	default:
		return false
	}
}

type Order struct {
	ID            int64
	SN            string
	BuyerID       int64
	AddressID     int64
	PayPalOrderID string
	// 金额单位为分, 999表示9.99欧
	Subtotal int64
	Shipping int64
	Total    int64
	Status   OrderStatus
	Items    []OrderItem
	Ctime    int64
	Utime    int64
}

// OrderItem 下单时的商品快照, 之后商品改价改名不影响已有订单
type OrderItem struct {
	ProductID int64
	Name      string
	Price     int64
	Quantity  int64
}

// CheckoutItem 用户提交的购买请求项
type CheckoutItem struct {
	ProductID int64
	Quantity  int64
}

// Subtotal 商品小计
func Subtotal(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * it.Quantity
	}
	return total
}

func ShippingFee(subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}
