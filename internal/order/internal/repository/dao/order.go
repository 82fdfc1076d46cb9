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

package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecodeclub/emall/internal/order/internal/domain"
	"github.com/ego-component/egorm"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = gorm.ErrRecordNotFound
	// ErrInsufficientStock 条件扣减一行都没更新, 说明库存不够, 整个事务回滚
	ErrInsufficientStock = errors.New("商品库存不足")
	// ErrConcurrentStatusChange CAS更新状态失败, 说明有并发变更抢先了
	ErrConcurrentStatusChange = errors.New("订单状态已被并发修改")
)

type OrderDAO interface {
	// Create 在同一事务里条件扣减库存并写入订单及订单项
	Create(ctx context.Context, o Order, items []OrderItem) (int64, error)
	FindByID(ctx context.Context, id int64) (Order, error)
	FindBySN(ctx context.Context, sn string) (Order, error)
	FindBySNAndBuyerID(ctx context.Context, sn string, buyerID int64) (Order, error)
	FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (Order, error)
	FindItemsByOrderID(ctx context.Context, orderID int64) ([]OrderItem, error)
	FindItemsByOrderIDs(ctx context.Context, orderIDs []int64) ([]OrderItem, error)
	ListByUID(ctx context.Context, uid int64, offset, limit int) ([]Order, error)
	CountByUID(ctx context.Context, uid int64) (int64, error)
	List(ctx context.Context, offset, limit int) ([]Order, error)
	Count(ctx context.Context) (int64, error)
	UpdatePayPalOrderID(ctx context.Context, id int64, paypalOrderID string) error
	// UpdateStatus CAS推进状态, from不匹配时返回 ErrConcurrentStatusChange;
	// restock为真时在同一事务里把订单项数量加回库存, CAS保证只还一次
	UpdateStatus(ctx context.Context, id int64, from []uint8, to uint8, restock bool) error
	// MarkPaidByPayPalOrderID 待支付到已支付的单向边, 已经是已支付时幂等返回成功
	MarkPaidByPayPalOrderID(ctx context.Context, paypalOrderID string) (Order, error)
}

func NewOrderGORMDAO(db *egorm.Component) OrderDAO {
	return &gormOrderDAO{db: db}
}

type gormOrderDAO struct {
	db *egorm.Component
}

func (d *gormOrderDAO) Create(ctx context.Context, o Order, items []OrderItem) (int64, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UnixMilli()
		for _, it := range items {
			res := tx.Exec(
				"UPDATE `products` SET `stock` = `stock` - ?, `utime` = ? WHERE `id` = ? AND `stock` >= ?",
				it.Quantity, now, it.ProductId, it.Quantity)
			if res.Error != nil {
				return fmt.Errorf("扣减库存失败: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: 商品ID=%d", ErrInsufficientStock, it.ProductId)
			}
		}
		o.Ctime, o.Utime = now, now
		if err := tx.Create(&o).Error; err != nil {
			return fmt.Errorf("创建订单失败: %w", err)
		}
		for i := range items {
			items[i].OrderId = o.Id
			items[i].Ctime, items[i].Utime = now, now
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("创建订单项失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return o.Id, nil
}

func (d *gormOrderDAO) FindByID(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	return o, err
}

func (d *gormOrderDAO) FindBySN(ctx context.Context, sn string) (Order, error) {
	var o Order
	err := d.db.WithContext(ctx).Where("sn = ?", sn).First(&o).Error
	return o, err
}

func (d *gormOrderDAO) FindBySNAndBuyerID(ctx context.Context, sn string, buyerID int64) (Order, error) {
	var o Order
	err := d.db.WithContext(ctx).Where("sn = ? AND buyer_id = ?", sn, buyerID).First(&o).Error
	return o, err
}

func (d *gormOrderDAO) FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (Order, error) {
	var o Order
	err := d.db.WithContext(ctx).Where("paypal_order_id = ?", paypalOrderID).First(&o).Error
	return o, err
}

func (d *gormOrderDAO) FindItemsByOrderID(ctx context.Context, orderID int64) ([]OrderItem, error) {
	var items []OrderItem
	err := d.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

func (d *gormOrderDAO) FindItemsByOrderIDs(ctx context.Context, orderIDs []int64) ([]OrderItem, error) {
	var items []OrderItem
	err := d.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Find(&items).Error
	return items, err
}

func (d *gormOrderDAO) ListByUID(ctx context.Context, uid int64, offset, limit int) ([]Order, error) {
	var os []Order
	err := d.db.WithContext(ctx).Where("buyer_id = ?", uid).
		Order("id DESC").Offset(offset).Limit(limit).Find(&os).Error
	return os, err
}

func (d *gormOrderDAO) CountByUID(ctx context.Context, uid int64) (int64, error) {
	var total int64
	err := d.db.WithContext(ctx).Model(&Order{}).Where("buyer_id = ?", uid).Count(&total).Error
	return total, err
}

func (d *gormOrderDAO) List(ctx context.Context, offset, limit int) ([]Order, error) {
	var os []Order
	err := d.db.WithContext(ctx).Order("id DESC").Offset(offset).Limit(limit).Find(&os).Error
	return os, err
}

func (d *gormOrderDAO) Count(ctx context.Context) (int64, error) {
	var total int64
	err := d.db.WithContext(ctx).Model(&Order{}).Count(&total).Error
	return total, err
}

func (d *gormOrderDAO) UpdatePayPalOrderID(ctx context.Context, id int64, paypalOrderID string) error {
	res := d.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).
		Updates(map[string]any{
			"paypal_order_id": paypalOrderID,
			"utime":           time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (d *gormOrderDAO) UpdateStatus(ctx context.Context, id int64, from []uint8, to uint8, restock bool) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UnixMilli()
		res := tx.Model(&Order{}).Where("id = ? AND status IN ?", id, from).
			Updates(map[string]any{
				"status": to,
				"utime":  now,
			})
		if res.Error != nil {
			return fmt.Errorf("更新订单状态失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentStatusChange
		}
		if !restock {
			return nil
		}
		var items []OrderItem
		if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
			return fmt.Errorf("查询订单项失败: %w", err)
		}
		for _, it := range items {
			err := tx.Exec(
				"UPDATE `products` SET `stock` = `stock` + ?, `utime` = ? WHERE `id` = ?",
				it.Quantity, now, it.ProductId).Error
			if err != nil {
				return fmt.Errorf("恢复库存失败: %w", err)
			}
		}
		return nil
	})
}

func (d *gormOrderDAO) MarkPaidByPayPalOrderID(ctx context.Context, paypalOrderID string) (Order, error) {
	var o Order
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("paypal_order_id = ?", paypalOrderID).First(&o).Error; err != nil {
			return err
		}
		res := tx.Model(&Order{}).
			Where("id = ? AND status = ?", o.Id, domain.StatusPending.ToUint8()).
			Updates(map[string]any{
				"status": domain.StatusPaid.ToUint8(),
				"utime":  time.Now().UnixMilli(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 已经是已支付则视为重复确认
			if o.Status == int64(domain.StatusPaid.ToUint8()) {
				return nil
			}
			return ErrConcurrentStatusChange
		}
		o.Status = int64(domain.StatusPaid.ToUint8())
		return nil
	})
	return o, err
}

type Order struct {
	Id            int64  `gorm:"primaryKey;autoIncrement;comment:订单自增ID"`
	SN            string `gorm:"column:sn;type:varchar(255);not null;uniqueIndex:uniq_order_sn;comment:订单序列号"`
	BuyerId       int64  `gorm:"not null;index:idx_buyer_id;comment:购买者ID"`
	AddressId     int64  `gorm:"not null;comment:收货地址ID"`
	PayPalOrderId string `gorm:"column:paypal_order_id;type:varchar(255);index:idx_paypal_order_id;comment:PayPal订单号"`
	Subtotal      int64  `gorm:"not null;comment:商品小计 单位为分 999表示9.99欧"`
	Shipping      int64  `gorm:"not null;comment:运费 单位为分"`
	Total         int64  `gorm:"not null;comment:应付总额 单位为分"`
	Status        int64  `gorm:"type:tinyint unsigned;not null;default:1;comment:订单状态 1=待支付 2=已支付 3=处理中 4=已发货 5=已送达 6=已取消 7=已退款"`
	Ctime         int64
	Utime         int64
}

type OrderItem struct {
	Id        int64  `gorm:"primaryKey;autoIncrement;comment:订单项自增ID"`
	OrderId   int64  `gorm:"not null;index:idx_order_id;comment:订单自增ID"`
	ProductId int64  `gorm:"not null;index:idx_product_id;comment:商品自增ID"`
	Name      string `gorm:"type:varchar(255);not null;comment:下单时商品名称快照"`
	Price     int64  `gorm:"not null;comment:下单时商品单价快照 单位为分"`
	Quantity  int64  `gorm:"not null;comment:购买数量"`
	Ctime     int64
	Utime     int64
}

func InitTables(db *egorm.Component) error {
	return db.AutoMigrate(&Order{}, &OrderItem{})
}
