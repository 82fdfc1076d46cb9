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
	"github.com/ecodeclub/emall/internal/product/internal/domain"
	"github.com/ecodeclub/emall/internal/product/internal/repository/dao"
	"github.com/gotomicro/ego/core/elog"
)

var ErrProductNotFound = dao.ErrProductNotFound

type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Product, error)
	FindBySN(ctx context.Context, sn string) (domain.Product, error)
	List(ctx context.Context, offset, limit int, categoryID int64) ([]domain.Product, error)
	Total(ctx context.Context, categoryID int64) (int64, error)
	Save(ctx context.Context, p domain.Product) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
	FindLowStock(ctx context.Context) ([]domain.Product, error)
	CategoryList(ctx context.Context) ([]domain.Category, error)
	SaveCategory(ctx context.Context, c domain.Category) (int64, error)
}

func NewProductRepository(d dao.ProductDAO) ProductRepository {
	return &productRepository{
		dao:    d,
		logger: elog.DefaultLogger,
	}
}

type productRepository struct {
	dao    dao.ProductDAO
	logger *elog.Component
}

func (p *productRepository) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	res, err := p.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return p.toDomain(res), nil
}

func (p *productRepository) FindBySN(ctx context.Context, sn string) (domain.Product, error) {
	res, err := p.dao.FindBySN(ctx, sn)
	if err != nil {
		return domain.Product{}, err
	}
	return p.toDomain(res), nil
}

func (p *productRepository) List(ctx context.Context, offset, limit int, categoryID int64) ([]domain.Product, error) {
	res, err := p.dao.List(ctx, offset, limit, categoryID)
	if err != nil {
		return nil, err
	}
	return slice.Map(res, func(idx int, src dao.Product) domain.Product {
		return p.toDomain(src)
	}), nil
}

func (p *productRepository) Total(ctx context.Context, categoryID int64) (int64, error) {
	return p.dao.Total(ctx, categoryID)
}

func (p *productRepository) Save(ctx context.Context, product domain.Product) (int64, error) {
	return p.dao.Save(ctx, p.toEntity(product))
}

func (p *productRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	return p.dao.UpdateStatus(ctx, id, status.ToUint8())
}

func (p *productRepository) FindLowStock(ctx context.Context) ([]domain.Product, error) {
	res, err := p.dao.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return slice.Map(res, func(idx int, src dao.Product) domain.Product {
		return p.toDomain(src)
	}), nil
}

func (p *productRepository) CategoryList(ctx context.Context) ([]domain.Category, error) {
	res, err := p.dao.CategoryList(ctx)
	if err != nil {
		return nil, err
	}
	return slice.Map(res, func(idx int, src dao.Category) domain.Category {
		return domain.Category{
			ID:   src.Id,
			SN:   src.SN,
			Name: src.Name,
			Desc: src.Description,
		}
	}), nil
}

func (p *productRepository) SaveCategory(ctx context.Context, c domain.Category) (int64, error) {
	return p.dao.SaveCategory(ctx, dao.Category{
		Id:          c.ID,
		SN:          c.SN,
		Name:        c.Name,
		Description: c.Desc,
	})
}

func (p *productRepository) toDomain(src dao.Product) domain.Product {
	return domain.Product{
		ID:                src.Id,
		SN:                src.SN,
		CategoryID:        src.CategoryID,
		Name:              src.Name,
		Desc:              src.Description,
		Image:             src.Image,
		Price:             src.Price,
		Stock:             src.Stock,
		LowStockThreshold: src.LowStockThreshold,
		Status:            domain.Status(src.Status),
		Ctime:             src.Ctime,
		Utime:             src.Utime,
	}
}

func (p *productRepository) toEntity(src domain.Product) dao.Product {
	return dao.Product{
		Id:                src.ID,
		SN:                src.SN,
		CategoryID:        src.CategoryID,
		Name:              src.Name,
		Description:       src.Desc,
		Image:             src.Image,
		Price:             src.Price,
		Stock:             src.Stock,
		LowStockThreshold: src.LowStockThreshold,
		Status:            src.Status.ToUint8(),
	}
}
