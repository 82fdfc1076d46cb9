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

type PaymentStatus uint8

const (
	PaymentStatusUnpaid PaymentStatus = 1
	PaymentStatusPaid   PaymentStatus = 2
	PaymentStatusFailed PaymentStatus = 3
)

func (s PaymentStatus) ToUint8() uint8 {
	return uint8(s)
}

type Payment struct {
	ID      int64
	SN      string
	OrderID int64
	OrderSN string
	BuyerID int64
	// TotalAmount 单位为分, 999表示9.99欧
	TotalAmount   int64
	PayPalOrderID string
	Status        PaymentStatus
	PaidAt        int64
	Ctime         int64
	Utime         int64
}

// PayPalOrder 网关侧授权结果, ApprovalURL是用户批准支付的跳转地址
type PayPalOrder struct {
	ID          string
	ApprovalURL string
}
