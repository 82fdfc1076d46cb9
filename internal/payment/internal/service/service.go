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
	"fmt"
	"time"

	"github.com/ecodeclub/emall/internal/order"
	"github.com/ecodeclub/emall/internal/payment/internal/domain"
	"github.com/ecodeclub/emall/internal/payment/internal/repository"
	"github.com/ecodeclub/emall/internal/payment/internal/service/paypal"
	"github.com/ecodeclub/emall/internal/pkg/sequencenumber"
	"github.com/gotomicro/ego/core/elog"
)

var (
	ErrPaymentNotFound = repository.ErrPaymentNotFound
	ErrOrderNotFound   = order.ErrOrderNotFound
	ErrNotOwner        = errors.New("无权操作该订单")
	ErrOrderNotPending = errors.New("订单不是待支付状态")
)

type Service interface {
	// CreatePayPalOrder 在网关侧创建支付, 只允许订单所有者对待支付订单发起,
	// 网关失败时本地订单不变
	CreatePayPalOrder(ctx context.Context, uid, orderID int64) (domain.PayPalOrder, error)
	// CapturePayPalOrder 捕获支付, 网关是支付状态的唯一事实来源,
	// 本地只有待支付到已支付的单向边, 重复捕获等价于确认
	CapturePayPalOrder(ctx context.Context, uid int64, paypalOrderID string) (order.Order, error)
	FindByOrderID(ctx context.Context, orderID int64) (domain.Payment, error)
}

func NewService(repo repository.PaymentRepository,
	gateway *paypal.PayPalPaymentService,
	orderSvc order.Service,
	snGenerator *sequencenumber.Generator) Service {
	return &paymentService{
		repo:        repo,
		gateway:     gateway,
		orderSvc:    orderSvc,
		snGenerator: snGenerator,
		logger:      elog.DefaultLogger,
	}
}

type paymentService struct {
	repo        repository.PaymentRepository
	gateway     *paypal.PayPalPaymentService
	orderSvc    order.Service
	snGenerator *sequencenumber.Generator
	logger      *elog.Component
}

func (s *paymentService) CreatePayPalOrder(ctx context.Context, uid, orderID int64) (domain.PayPalOrder, error) {
	o, err := s.orderSvc.FindByID(ctx, orderID)
	if err != nil {
		return domain.PayPalOrder{}, err
	}
	if o.BuyerID != uid {
		return domain.PayPalOrder{}, ErrNotOwner
	}
	if o.Status != order.StatusPending {
		return domain.PayPalOrder{}, ErrOrderNotPending
	}
	paypalOrderID, approvalURL, err := s.gateway.CreateOrder(ctx, o)
	if err != nil {
		return domain.PayPalOrder{}, err
	}
	sn, err := s.snGenerator.Generate(uid)
	if err != nil {
		return domain.PayPalOrder{}, fmt.Errorf("生成支付序列号失败: %w", err)
	}
	_, err = s.repo.Save(ctx, domain.Payment{
		SN:            sn,
		OrderID:       o.ID,
		OrderSN:       o.SN,
		BuyerID:       o.BuyerID,
		TotalAmount:   o.Total,
		PayPalOrderID: paypalOrderID,
		Status:        domain.PaymentStatusUnpaid,
	})
	if err != nil {
		return domain.PayPalOrder{}, fmt.Errorf("保存支付记录失败: %w", err)
	}
	err = s.orderSvc.UpdatePayPalOrderID(ctx, o.ID, paypalOrderID)
	if err != nil {
		return domain.PayPalOrder{}, fmt.Errorf("订单冗余PayPal订单号失败: %w", err)
	}
	return domain.PayPalOrder{ID: paypalOrderID, ApprovalURL: approvalURL}, nil
}

func (s *paymentService) CapturePayPalOrder(ctx context.Context, uid int64, paypalOrderID string) (order.Order, error) {
	o, err := s.orderSvc.FindByPayPalOrderID(ctx, paypalOrderID)
	if err != nil {
		return order.Order{}, err
	}
	if o.BuyerID != uid {
		return order.Order{}, ErrNotOwner
	}
	if err := s.gateway.CaptureOrder(ctx, paypalOrderID); err != nil {
		return order.Order{}, err
	}
	updated, err := s.orderSvc.MarkPaidByPayPalOrderID(ctx, paypalOrderID)
	if err != nil {
		return order.Order{}, fmt.Errorf("标记订单已支付失败: %w", err)
	}
	err = s.repo.MarkPaidByPayPalOrderID(ctx, paypalOrderID, time.Now().UnixMilli())
	if err != nil {
		// 订单已推进, 支付记录标记失败只记日志
		s.logger.Error("标记支付记录已支付失败",
			elog.String("paypalOrderID", paypalOrderID),
			elog.FieldErr(err))
	}
	return updated, nil
}

func (s *paymentService) FindByOrderID(ctx context.Context, orderID int64) (domain.Payment, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}
