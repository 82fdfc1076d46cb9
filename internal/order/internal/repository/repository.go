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

	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/emall/internal/order/internal/domain"
	"github.com/ecodeclub/emall/internal/order/internal/repository/dao"
)

var (
	ErrOrderNotFound          = dao.ErrOrderNotFound
	ErrInsufficientStock      = dao.ErrInsufficientStock
	ErrConcurrentStatusChange = dao.ErrConcurrentStatusChange
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order domain.Order) (int64, error)
	FindByID(ctx context.Context, id int64) (domain.Order, error)
	FindBySN(ctx context.Context, sn string) (domain.Order, error)
	FindByUIDAndSN(ctx context.Context, uid int64, sn string) (domain.Order, error)
	FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (domain.Order, error)
	ListByUID(ctx context.Context, uid int64, offset, limit int) ([]domain.Order, error)
	TotalByUID(ctx context.Context, uid int64) (int64, error)
	List(ctx context.Context, offset, limit int) ([]domain.Order, error)
	Total(ctx context.Context) (int64, error)
	UpdatePayPalOrderID(ctx context.Context, orderID int64, paypalOrderID string) error
	// UpdateStatus CAS推进状态, restock为真时同事务还库存
	UpdateStatus(ctx context.Context, orderID int64, from []domain.OrderStatus, to domain.OrderStatus, restock bool) error
	MarkPaidByPayPalOrderID(ctx context.Context, paypalOrderID string) (domain.Order, error)
}

func NewOrderRepository(d dao.OrderDAO) OrderRepository {
	return &orderRepository{dao: d}
}

type orderRepository struct {
	dao dao.OrderDAO
}

func (r *orderRepository) CreateOrder(ctx context.Context, order domain.Order) (int64, error) {
	items := slice.Map(order.Items, func(idx int, src domain.OrderItem) dao.OrderItem {
		return dao.OrderItem{
			ProductId: src.ProductID,
			Name:      src.Name,
			Price:     src.Price,
			Quantity:  src.Quantity,
		}
	})
	return r.dao.Create(ctx, r.toEntity(order), items)
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	o, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return r.withItems(ctx, o)
}

func (r *orderRepository) FindBySN(ctx context.Context, sn string) (domain.Order, error) {
	o, err := r.dao.FindBySN(ctx, sn)
	if err != nil {
		return domain.Order{}, err
	}
	return r.withItems(ctx, o)
}

func (r *orderRepository) FindByUIDAndSN(ctx context.Context, uid int64, sn string) (domain.Order, error) {
	o, err := r.dao.FindBySNAndBuyerID(ctx, sn, uid)
	if err != nil {
		return domain.Order{}, err
	}
	return r.withItems(ctx, o)
}

func (r *orderRepository) FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (domain.Order, error) {
	o, err := r.dao.FindByPayPalOrderID(ctx, paypalOrderID)
	if err != nil {
		return domain.Order{}, err
	}
	return r.withItems(ctx, o)
}

func (r *orderRepository) ListByUID(ctx context.Context, uid int64, offset, limit int) ([]domain.Order, error) {
	os, err := r.dao.ListByUID(ctx, uid, offset, limit)
	if err != nil {
		return nil, err
	}
	return r.batchWithItems(ctx, os)
}

func (r *orderRepository) TotalByUID(ctx context.Context, uid int64) (int64, error) {
	return r.dao.CountByUID(ctx, uid)
}

func (r *orderRepository) List(ctx context.Context, offset, limit int) ([]domain.Order, error) {
	os, err := r.dao.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return r.batchWithItems(ctx, os)
}

func (r *orderRepository) Total(ctx context.Context) (int64, error) {
	return r.dao.Count(ctx)
}

func (r *orderRepository) UpdatePayPalOrderID(ctx context.Context, orderID int64, paypalOrderID string) error {
	return r.dao.UpdatePayPalOrderID(ctx, orderID, paypalOrderID)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, from []domain.OrderStatus, to domain.OrderStatus, restock bool) error {
	return r.dao.UpdateStatus(ctx, orderID,
		slice.Map(from, func(idx int, src domain.OrderStatus) uint8 {
			return src.ToUint8()
		}),
		to.ToUint8(), restock)
}

func (r *orderRepository) MarkPaidByPayPalOrderID(ctx context.Context, paypalOrderID string) (domain.Order, error) {
	o, err := r.dao.MarkPaidByPayPalOrderID(ctx, paypalOrderID)
	if err != nil {
		return domain.Order{}, err
	}
	return r.toDomain(o, nil), nil
}

// withItems 补全单个订单的订单项
func (r *orderRepository) withItems(ctx context.Context, o dao.Order) (domain.Order, error) {
	items, err := r.dao.FindItemsByOrderID(ctx, o.Id)
	if err != nil {
		return domain.Order{}, err
	}
	return r.toDomain(o, items), nil
}

// batchWithItems 一次查出所有订单项再按订单分组, 避免N+1
func (r *orderRepository) batchWithItems(ctx context.Context, os []dao.Order) ([]domain.Order, error) {
	if len(os) == 0 {
		return []domain.Order{}, nil
	}
	ids := slice.Map(os, func(idx int, src dao.Order) int64 {
		return src.Id
	})
	items, err := r.dao.FindItemsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	grouped := make(map[int64][]dao.OrderItem, len(os))
	for _, it := range items {
		grouped[it.OrderId] = append(grouped[it.OrderId], it)
	}
	return slice.Map(os, func(idx int, src dao.Order) domain.Order {
		return r.toDomain(src, grouped[src.Id])
	}), nil
}

func (r *orderRepository) toEntity(o domain.Order) dao.Order {
	return dao.Order{
		Id:            o.ID,
		SN:            o.SN,
		BuyerId:       o.BuyerID,
		AddressId:     o.AddressID,
		PayPalOrderId: o.PayPalOrderID,
		Subtotal:      o.Subtotal,
		Shipping:      o.Shipping,
		Total:         o.Total,
		Status:        int64(o.Status.ToUint8()),
	}
}

func (r *orderRepository) toDomain(o dao.Order, items []dao.OrderItem) domain.Order {
	return domain.Order{
		ID:            o.Id,
		SN:            o.SN,
		BuyerID:       o.BuyerId,
		AddressID:     o.AddressId,
		PayPalOrderID: o.PayPalOrderId,
		Subtotal:      o.Subtotal,
		Shipping:      o.Shipping,
		Total:         o.Total,
		Status:        domain.OrderStatus(o.Status),
		Items: slice.Map(items, func(idx int, src dao.OrderItem) domain.OrderItem {
			return domain.OrderItem{
				ProductID: src.ProductId,
				Name:      src.Name,
				Price:     src.Price,
				Quantity:  src.Quantity,
			}
		}),
		Ctime: o.Ctime,
		Utime: o.Utime,
	}
}
