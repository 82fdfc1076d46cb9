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

	"github.com/ecodeclub/emall/internal/product/internal/domain"
	"github.com/ecodeclub/emall/internal/product/internal/repository"
	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/sync/errgroup"
)

type Service interface {
	FindByID(ctx context.Context, id int64) (domain.Product, error)
	FindBySN(ctx context.Context, sn string) (domain.Product, error)
	List(ctx context.Context, offset, limit int, categoryID int64) ([]domain.Product, int64, error)
	// Save 创建或更新商品, 创建时生成序列号。库存的日常增减走订单流程, 这里只负责后台录入
	Save(ctx context.Context, product domain.Product) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
	FindLowStock(ctx context.Context) ([]domain.Product, error)
	CategoryList(ctx context.Context) ([]domain.Category, error)
	SaveCategory(ctx context.Context, c domain.Category) (int64, error)
}

func NewService(repo repository.ProductRepository) Service {
	return &service{repo: repo}
}

type service struct {
	repo repository.ProductRepository
}

func (s *service) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) FindBySN(ctx context.Context, sn string) (domain.Product, error) {
	return s.repo.FindBySN(ctx, sn)
}

func (s *service) List(ctx context.Context, offset, limit int, categoryID int64) ([]domain.Product, int64, error) {
	var (
		eg    errgroup.Group
		ps    []domain.Product
		total int64
	)
	eg.Go(func() error {
		var err error
		ps, err = s.repo.List(ctx, offset, limit, categoryID)
		return err
	})
	eg.Go(func() error {
		var err error
		total, err = s.repo.Total(ctx, categoryID)
		return err
	})
	return ps, total, eg.Wait()
}

func (s *service) Save(ctx context.Context, product domain.Product) (int64, error) {
	if product.ID == 0 {
		product.SN = shortuuid.New()
	}
	return s.repo.Save(ctx, product)
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *service) FindLowStock(ctx context.Context) ([]domain.Product, error) {
	return s.repo.FindLowStock(ctx)
}

func (s *service) CategoryList(ctx context.Context) ([]domain.Category, error) {
	return s.repo.CategoryList(ctx)
}

func (s *service) SaveCategory(ctx context.Context, c domain.Category) (int64, error) {
	if c.ID == 0 && c.SN == "" {
		c.SN = shortuuid.New()
	}
	return s.repo.SaveCategory(ctx, c)
}
