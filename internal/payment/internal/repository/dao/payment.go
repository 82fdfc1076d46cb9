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
	"time"

	"github.com/ecodeclub/emall/internal/payment/internal/domain"
	"github.com/ego-component/egorm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPaymentNotFound = gorm.ErrRecordNotFound

type PaymentDAO interface {
	// Upsert 一个订单最多一条支付记录, 重复发起授权时覆盖网关引用
	Upsert(ctx context.Context, p Payment) (int64, error)
	FindByOrderID(ctx context.Context, orderID int64) (Payment, error)
	FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (Payment, error)
	// MarkPaidByPayPalOrderID 标记已支付, 重复标记幂等
	MarkPaidByPayPalOrderID(ctx context.Context, paypalOrderID string, paidAt int64) error
}

func NewPaymentGORMDAO(db *egorm.Component) PaymentDAO {
	return &gormPaymentDAO{db: db}
}

type gormPaymentDAO struct {
	db *egorm.Component
}

func (d *gormPaymentDAO) Upsert(ctx context.Context, p Payment) (int64, error) {
	now := time.Now().UnixMilli()
	p.Ctime, p.Utime = now, now
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"paypal_order_id", "total_amount", "status", "utime",
		}),
	}).Create(&p).Error
	if err != nil {
		return 0, err
	}
	return p.Id, nil
}

func (d *gormPaymentDAO) FindByOrderID(ctx context.Context, orderID int64) (Payment, error) {
	var p Payment
	err := d.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error
	return p, err
}

func (d *gormPaymentDAO) FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (Payment, error) {
	var p Payment
	err := d.db.WithContext(ctx).Where("paypal_order_id = ?", paypalOrderID).First(&p).Error
	return p, err
}

func (d *gormPaymentDAO) MarkPaidByPayPalOrderID(ctx context.Context, paypalOrderID string, paidAt int64) error {
	res := d.db.WithContext(ctx).Model(&Payment{}).
		Where("paypal_order_id = ? AND status <> ?", paypalOrderID, domain.PaymentStatusPaid.ToUint8()).
		Updates(map[string]any{
			"status":  domain.PaymentStatusPaid.ToUint8(),
			"paid_at": paidAt,
			"utime":   time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 要么已是已支付(重复确认), 要么记录不存在
		_, err := d.FindByPayPalOrderID(ctx, paypalOrderID)
		return err
	}
	return nil
}

type Payment struct {
	Id            int64  `gorm:"primaryKey;autoIncrement;comment:支付自增ID"`
	SN            string `gorm:"column:sn;type:varchar(255);not null;uniqueIndex:uniq_payment_sn;comment:支付序列号"`
	OrderId       int64  `gorm:"not null;uniqueIndex:uniq_order_id;comment:订单自增ID"`
	OrderSn       string `gorm:"type:varchar(255);not null;comment:订单序列号"`
	BuyerId       int64  `gorm:"not null;index:idx_buyer_id;comment:购买者ID"`
	TotalAmount   int64  `gorm:"not null;comment:支付总额 单位为分 999表示9.99欧"`
	PayPalOrderId string `gorm:"column:paypal_order_id;type:varchar(255);index:idx_paypal_order_id;comment:PayPal订单号"`
	Status        int64  `gorm:"type:tinyint unsigned;not null;default:1;comment:支付状态 1=未支付 2=已支付 3=失败"`
	PaidAt        int64  `gorm:"comment:支付完成时间"`
	Ctime         int64
	Utime         int64
}

func InitTables(db *egorm.Component) error {
	return db.AutoMigrate(&Payment{})
}
