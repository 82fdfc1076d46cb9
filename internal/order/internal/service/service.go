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

	"github.com/ecodeclub/emall/internal/order/internal/domain"
	"github.com/ecodeclub/emall/internal/order/internal/repository"
	"github.com/ecodeclub/emall/internal/pkg/sequencenumber"
	"github.com/ecodeclub/emall/internal/product"
	"github.com/ecodeclub/emall/internal/user"
	"github.com/gotomicro/ego/core/elog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrOrderNotFound     = repository.ErrOrderNotFound
	ErrInsufficientStock = repository.ErrInsufficientStock
	ErrInvalidOrderInfo  = errors.New("订单信息非法")
	ErrCannotCancel      = errors.New("当前状态不可取消")
	ErrInvalidStatus     = errors.New("订单状态非法")
	ErrNotOwner          = errors.New("无权操作该订单")
)

type Service interface {
	// CreateOrder 下单: 校验地址归属和商品上架状态, 快照商品名称价格,
	// 计算总价并在一个事务里扣减库存
	CreateOrder(ctx context.Context, uid, addressID int64, items []domain.CheckoutItem) (domain.Order, error)
	FindByID(ctx context.Context, id int64) (domain.Order, error)
	FindBySN(ctx context.Context, sn string) (domain.Order, error)
	FindByUIDAndSN(ctx context.Context, uid int64, sn string) (domain.Order, error)
	FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (domain.Order, error)
	ListByUID(ctx context.Context, uid int64, offset, limit int) ([]domain.Order, int64, error)
	List(ctx context.Context, offset, limit int) ([]domain.Order, int64, error)
	// Cancel 用户取消自己的订单, 只允许待支付/已支付, 库存恰好还一次
	Cancel(ctx context.Context, uid, orderID int64) error
	// UpdateStatus 后台调整订单状态, 不限制方向, 首次进入已取消/已退款时还库存
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	// MarkPaidByPayPalOrderID 支付捕获成功后的单向边, 重复确认幂等
	MarkPaidByPayPalOrderID(ctx context.Context, paypalOrderID string) (domain.Order, error)
	UpdatePayPalOrderID(ctx context.Context, orderID int64, paypalOrderID string) error
}

func NewService(repo repository.OrderRepository,
	productSvc product.Service,
	userSvc user.UserService,
	snGenerator *sequencenumber.Generator) Service {
	return &service{
		repo:        repo,
		productSvc:  productSvc,
		userSvc:     userSvc,
		snGenerator: snGenerator,
		logger:      elog.DefaultLogger,
	}
}

type service struct {
	repo        repository.OrderRepository
	productSvc  product.Service
	userSvc     user.UserService
	snGenerator *sequencenumber.Generator
	logger      *elog.Component
}

func (s *service) CreateOrder(ctx context.Context, uid, addressID int64, items []domain.CheckoutItem) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: 订单中没有商品", ErrInvalidOrderInfo)
	}
	_, err := s.userSvc.FindAddress(ctx, addressID, uid)
	if errors.Is(err, user.ErrAddressNotFound) {
		return domain.Order{}, fmt.Errorf("%w: 收货地址不存在", ErrInvalidOrderInfo)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("校验收货地址失败: %w", err)
	}

	orderItems, err := s.buildOrderItems(ctx, items)
	if err != nil {
		return domain.Order{}, err
	}

	sn, err := s.snGenerator.Generate(uid)
	if err != nil {
		return domain.Order{}, fmt.Errorf("生成订单序列号失败: %w", err)
	}

	subtotal := domain.Subtotal(orderItems)
	shipping := domain.ShippingFee(subtotal)
	order := domain.Order{
		SN:        sn,
		BuyerID:   uid,
		AddressID: addressID,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Total:     subtotal + shipping,
		Status:    domain.StatusPending,
		Items:     orderItems,
	}
	id, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}
	order.ID = id
	return order, nil
}

// buildOrderItems 先整体校验所有商品存在且在售, 再逐个比对库存并生成快照,
// 库存在这里只做预检, 真正的并发保证靠落库事务里的条件扣减
func (s *service) buildOrderItems(ctx context.Context, items []domain.CheckoutItem) ([]domain.OrderItem, error) {
	products := make([]product.Product, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: 商品数量非法, 商品ID=%d", ErrInvalidOrderInfo, it.ProductID)
		}
		p, err := s.productSvc.FindByID(ctx, it.ProductID)
		if errors.Is(err, product.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: 商品不存在或已下架, 商品ID=%d", ErrInvalidOrderInfo, it.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("查询商品失败: %w", err)
		}
		products = append(products, p)
	}
	orderItems := make([]domain.OrderItem, 0, len(items))
	for i, it := range items {
		p := products[i]
		if it.Quantity > p.Stock {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
		}
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
		})
	}
	return orderItems, nil
}

func (s *service) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) FindBySN(ctx context.Context, sn string) (domain.Order, error) {
	return s.repo.FindBySN(ctx, sn)
}

func (s *service) FindByUIDAndSN(ctx context.Context, uid int64, sn string) (domain.Order, error) {
	return s.repo.FindByUIDAndSN(ctx, uid, sn)
}

func (s *service) FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (domain.Order, error) {
	return s.repo.FindByPayPalOrderID(ctx, paypalOrderID)
}

func (s *service) ListByUID(ctx context.Context, uid int64, offset, limit int) ([]domain.Order, int64, error) {
	var (
		eg    errgroup.Group
		os    []domain.Order
		total int64
	)
	eg.Go(func() error {
		var err error
		os, err = s.repo.ListByUID(ctx, uid, offset, limit)
		return err
	})
	eg.Go(func() error {
		var err error
		total, err = s.repo.TotalByUID(ctx, uid)
		return err
	})
	return os, total, eg.Wait()
}

func (s *service) List(ctx context.Context, offset, limit int) ([]domain.Order, int64, error) {
	var (
		eg    errgroup.Group
		os    []domain.Order
		total int64
	)
	eg.Go(func() error {
		var err error
		os, err = s.repo.List(ctx, offset, limit)
		return err
	})
	eg.Go(func() error {
		var err error
		total, err = s.repo.Total(ctx)
		return err
	})
	return os, total, eg.Wait()
}

func (s *service) Cancel(ctx context.Context, uid, orderID int64) error {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.BuyerID != uid {
		return ErrNotOwner
	}
	if !o.Status.CanTransition(domain.StatusCancelled) {
		return ErrCannotCancel
	}
	err = s.repo.UpdateStatus(ctx, orderID,
		[]domain.OrderStatus{domain.StatusPending, domain.StatusPaid},
		domain.StatusCancelled, true)
	if errors.Is(err, repository.ErrConcurrentStatusChange) {
		// 并发下先到的取消/发货赢了, 这里不再还库存
		return ErrCannotCancel
	}
	return err
}

func (s *service) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status == status {
		// 重复设置同一状态不产生任何副作用
		return nil
	}
	// 只有从非补偿态进入已取消/已退款才还库存,
	// CAS以读到的旧状态为前提, 并发下至多成功一次
	restock := status.Compensating() && !o.Status.Compensating()
	err = s.repo.UpdateStatus(ctx, orderID, []domain.OrderStatus{o.Status}, status, restock)
	if errors.Is(err, repository.ErrConcurrentStatusChange) {
		return ErrInvalidStatus
	}
	return err
}

func (s *service) MarkPaidByPayPalOrderID(ctx context.Context, paypalOrderID string) (domain.Order, error) {
	o, err := s.repo.MarkPaidByPayPalOrderID(ctx, paypalOrderID)
	if errors.Is(err, repository.ErrConcurrentStatusChange) {
		return domain.Order{}, ErrInvalidStatus
	}
	return o, err
}

func (s *service) UpdatePayPalOrderID(ctx context.Context, orderID int64, paypalOrderID string) error {
	return s.repo.UpdatePayPalOrderID(ctx, orderID, paypalOrderID)
}
