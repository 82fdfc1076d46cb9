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

	"github.com/ecodeclub/emall/internal/product/internal/domain"
	"github.com/ego-component/egorm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProductNotFound = gorm.ErrRecordNotFound

type ProductDAO interface {
	FindByID(ctx context.Context, id int64) (Product, error)
	FindBySN(ctx context.Context, sn string) (Product, error)
	List(ctx context.Context, offset, limit int, categoryID int64) ([]Product, error)
	Total(ctx context.Context, categoryID int64) (int64, error)
	Save(ctx context.Context, p Product) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status uint8) error
	FindLowStock(ctx context.Context) ([]Product, error)
	CategoryList(ctx context.Context) ([]Category, error)
	SaveCategory(ctx context.Context, c Category) (int64, error)
}

type ProductGORMDAO struct {
	db *egorm.Component
}

func NewProductGORMDAO(db *egorm.Component) ProductDAO {
	return &ProductGORMDAO{db: db}
}

func (d *ProductGORMDAO) FindByID(ctx context.Context, id int64) (Product, error) {
	var res Product
	err := d.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.StatusOnShelf.ToUint8()).
		First(&res).Error
	return res, err
}

func (d *ProductGORMDAO) FindBySN(ctx context.Context, sn string) (Product, error) {
	var res Product
	err := d.db.WithContext(ctx).
		Where("sn = ? AND status = ?", sn, domain.StatusOnShelf.ToUint8()).
		First(&res).Error
	return res, err
}

func (d *ProductGORMDAO) List(ctx context.Context, offset, limit int, categoryID int64) ([]Product, error) {
	var res []Product
	query := d.db.WithContext(ctx).Where("status = ?", domain.StatusOnShelf.ToUint8())
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	err := query.Order("ctime DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

func (d *ProductGORMDAO) Total(ctx context.Context, categoryID int64) (int64, error) {
	var res int64
	query := d.db.WithContext(ctx).Model(&Product{}).
		Where("status = ?", domain.StatusOnShelf.ToUint8())
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	err := query.Count(&res).Error
	return res, err
}

func (d *ProductGORMDAO) Save(ctx context.Context, p Product) (int64, error) {
	now := time.Now().UnixMilli()
	p.Utime = now
	if p.Id == 0 {
		p.Ctime = now
		err := d.db.WithContext(ctx).Create(&p).Error
		return p.Id, err
	}
	// 更新时不写stock, 库存只由订单流程的条件SQL增减,
	// 否则后台用过期表单保存会覆盖并发扣减
	err := d.db.WithContext(ctx).Model(&Product{}).Where("id = ?", p.Id).
		Updates(map[string]any{
			"category_id":         p.CategoryID,
			"name":                p.Name,
			"description":         p.Description,
			"image":               p.Image,
			"price":               p.Price,
			"low_stock_threshold": p.LowStockThreshold,
			"utime":               p.Utime,
		}).Error
	return p.Id, err
}

func (d *ProductGORMDAO) UpdateStatus(ctx context.Context, id int64, status uint8) error {
	return d.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).
		Updates(map[string]any{
			"status": status,
			"utime":  time.Now().UnixMilli(),
		}).Error
}

// FindLowStock 直接用查询谓词筛选低库存商品
func (d *ProductGORMDAO) FindLowStock(ctx context.Context) ([]Product, error) {
	var res []Product
	err := d.db.WithContext(ctx).
		Where("status = ? AND stock <= low_stock_threshold", domain.StatusOnShelf.ToUint8()).
		Order("stock ASC").
		Find(&res).Error
	return res, err
}

func (d *ProductGORMDAO) CategoryList(ctx context.Context) ([]Category, error) {
	var res []Category
	err := d.db.WithContext(ctx).Order("id ASC").Find(&res).Error
	return res, err
}

func (d *ProductGORMDAO) SaveCategory(ctx context.Context, c Category) (int64, error) {
	now := time.Now().UnixMilli()
	c.Ctime, c.Utime = now, now
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sn"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "utime"}),
	}).Create(&c).Error
	return c.Id, err
}

func InitTables(db *egorm.Component) error {
	return db.AutoMigrate(&Product{}, &Category{})
}

type Product struct {
	Id                int64  `gorm:"primaryKey;autoIncrement;comment:商品自增ID"`
	SN                string `gorm:"type:varchar(255);not null;uniqueIndex:uniq_product_sn;comment:商品序列号"`
	CategoryID        int64  `gorm:"column:category_id;not null;index:idx_category_id;comment:类目自增ID"`
	Name              string `gorm:"type:varchar(255);not null;comment:商品名称"`
	Description       string `gorm:"not null;comment:商品描述"`
	Image             string `gorm:"type:varchar(512);not null;comment:商品缩略图,CDN绝对路径"`
	Price             int64  `gorm:"not null;comment:商品单价 单位为分 999表示9.99"`
	Stock             int64  `gorm:"not null;comment:库存数量, 只由订单流程增减"`
	LowStockThreshold int64  `gorm:"not null;default:5;comment:低库存阈值"`
	Status            uint8  `gorm:"type:tinyint unsigned;not null;default:1;comment:状态 1=下架 2=上架"`
	Ctime             int64
	Utime             int64
}

type Category struct {
	Id          int64  `gorm:"primaryKey;autoIncrement;comment:类目自增ID"`
	SN          string `gorm:"type:varchar(255);not null;uniqueIndex:uniq_category_sn;comment:类目序列号"`
	Name        string `gorm:"type:varchar(255);not null;comment:类目名称"`
	Description string `gorm:"not null;comment:类目描述"`
	Ctime       int64
	Utime       int64
}
