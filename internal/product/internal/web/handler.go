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

package web

import (
	"errors"
	"fmt"

	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/emall/internal/product/internal/domain"
	"github.com/ecodeclub/emall/internal/product/internal/repository"
	"github.com/ecodeclub/emall/internal/product/internal/service"
	"github.com/ecodeclub/ginx"
	"github.com/gin-gonic/gin"
)

var _ ginx.Handler = &Handler{}

type Handler struct {
	svc service.Service
}

func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PublicRoutes(server *gin.Engine) {
	g := server.Group("/product")
	g.POST("/list", ginx.B[ListProductsReq](h.List))
	g.POST("/detail", ginx.B[DetailReq](h.Detail))
	g.POST("/category/list", ginx.W(h.CategoryList))
}

func (h *Handler) PrivateRoutes(_ *gin.Engine) {}

// List 分页查询上架商品, 顾客侧只能看到上架的
func (h *Handler) List(ctx *ginx.Context, req ListProductsReq) (ginx.Result, error) {
	products, total, err := h.svc.List(ctx.Request.Context(), req.Offset, req.Limit, req.CategoryID)
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: ListProductsResp{
			Total: total,
			Products: slice.Map(products, func(idx int, src domain.Product) Product {
				return toProductVO(src)
			}),
		},
	}, nil
}

func (h *Handler) Detail(ctx *ginx.Context, req DetailReq) (ginx.Result, error) {
	p, err := h.svc.FindBySN(ctx.Request.Context(), req.SN)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return productNotFoundResult, nil
		}
		return systemErrorResult, fmt.Errorf("查询商品详情失败: %w", err)
	}
	return ginx.Result{
		Data: DetailResp{Product: toProductVO(p)},
	}, nil
}

func (h *Handler) CategoryList(ctx *ginx.Context) (ginx.Result, error) {
	cs, err := h.svc.CategoryList(ctx.Request.Context())
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: CategoryListResp{
			Categories: slice.Map(cs, func(idx int, src domain.Category) Category {
				return Category{ID: src.ID, SN: src.SN, Name: src.Name, Desc: src.Desc}
			}),
		},
	}, nil
}

func toProductVO(p domain.Product) Product {
	return Product{
		ID:         p.ID,
		SN:         p.SN,
		CategoryID: p.CategoryID,
		Name:       p.Name,
		Desc:       p.Desc,
		Image:      p.Image,
		Price:      p.Price,
		Stock:      p.Stock,
		Status:     p.Status.ToUint8(),
	}
}
