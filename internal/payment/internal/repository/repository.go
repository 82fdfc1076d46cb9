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

package repository

import (
	"context"

	"github.com/ecodeclub/emall/internal/payment/internal/domain"
	"github.com/ecodeclub/emall/internal/payment/internal/repository/dao"
)

var ErrPaymentNotFound = dao.ErrPaymentNotFound

type PaymentRepository interface {
	Save(ctx context.Context, p domain.Payment) (int64, error)
	FindByOrderID(ctx context.Context, orderID int64) (domain.Payment, error)
	FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (domain.Payment, error)
	MarkPaidByPayPalOrderID(ctx context.Context, paypalOrderID string, paidAt int64) error
}

func NewPaymentRepository(d dao.PaymentDAO) PaymentRepository {
	return &paymentRepository{dao: d}
}

type paymentRepository struct {
	dao dao.PaymentDAO
}

func (r *paymentRepository) Save(ctx context.Context, p domain.Payment) (int64, error) {
	return r.dao.Upsert(ctx, r.toEntity(p))
}

func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID int64) (domain.Payment, error) {
	p, err := r.dao.FindByOrderID(ctx, orderID)
	if err != nil {
		return domain.Payment{}, err
	}
	return r.toDomain(p), nil
}

func (r *paymentRepository) FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (domain.Payment, error) {
	p, err := r.dao.FindByPayPalOrderID(ctx, paypalOrderID)
	if err != nil {
		return domain.Payment{}, err
	}
	return r.toDomain(p), nil
}

func (r *paymentRepository) MarkPaidByPayPalOrderID(ctx context.Context, paypalOrderID string, paidAt int64) error {
	return r.dao.MarkPaidByPayPalOrderID(ctx, paypalOrderID, paidAt)
}

func (r *paymentRepository) toEntity(p domain.Payment) dao.Payment {
	return dao.Payment{
		Id:            p.ID,
		SN:            p.SN,
		OrderId:       p.OrderID,
		OrderSn:       p.OrderSN,
		BuyerId:       p.BuyerID,
		TotalAmount:   p.TotalAmount,
		PayPalOrderId: p.PayPalOrderID,
		Status:        int64(p.Status.ToUint8()),
		PaidAt:        p.PaidAt,
	}
}

func (r *paymentRepository) toDomain(p dao.Payment) domain.Payment {
	return domain.Payment{
		ID:            p.Id,
		SN:            p.SN,
		OrderID:       p.OrderId,
		OrderSN:       p.OrderSn,
		BuyerID:       p.BuyerId,
		TotalAmount:   p.TotalAmount,
		PayPalOrderID: p.PayPalOrderId,
		Status:        domain.PaymentStatus(p.Status),
		PaidAt:        p.PaidAt,
		Ctime:         p.Ctime,
		Utime:         p.Utime,
	}
}
