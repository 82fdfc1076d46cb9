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

package web

import (
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/emall/internal/order"
)

// Order 捕获成功后返回给前端的订单快照, 和订单接口的出参保持同一形状
type Order struct {
	ID            int64       `json:"id"`
	SN            string      `json:"sn"`
	AddressID     int64       `json:"addressId"`
	PayPalOrderID string      `json:"paypalOrderId,omitempty"`
	Subtotal      int64       `json:"subtotal"`
	Shipping      int64       `json:"shipping"`
	Total         int64       `json:"total"`
	Status        uint8       `json:"status"`
	Items         []OrderItem `json:"items"`
	Ctime         int64       `json:"ctime"`
	Utime         int64       `json:"utime"`
}

type OrderItem struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

func toOrderVO(o order.Order) Order {
	return Order{
		ID:            o.ID,
		SN:            o.SN,
		AddressID:     o.AddressID,
		PayPalOrderID: o.PayPalOrderID,
		Subtotal:      o.Subtotal,
		Shipping:      o.Shipping,
		Total:         o.Total,
		Status:        o.Status.ToUint8(),
		Items: slice.Map(o.Items, func(idx int, src order.OrderItem) OrderItem {
			return OrderItem{
				ProductID: src.ProductID,
				Name:      src.Name,
				Price:     src.Price,
				Quantity:  src.Quantity,
			}
		}),
		Ctime: o.Ctime,
		Utime: o.Utime,
	}
}
