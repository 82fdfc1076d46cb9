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
	"fmt"

	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/emall/internal/product/internal/domain"
	"github.com/ecodeclub/emall/internal/product/internal/errs"
	"github.com/ecodeclub/emall/internal/product/internal/service"
	"github.com/ecodeclub/ginx"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	svc service.Service
}

func NewAdminHandler(svc service.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) PrivateRoutes(server *gin.Engine) {
	g := server.Group("/product")
	g.POST("/save", ginx.B[SaveProductReq](h.Save))
	g.POST("/status", ginx.B[UpdateStatusReq](h.UpdateStatus))
	g.POST("/low-stock", ginx.W(h.LowStock))
	g.POST("/category/save", ginx.B[SaveCategoryReq](h.SaveCategory))
}

func (h *AdminHandler) PublicRoutes(_ *gin.Engine) {}

func (h *AdminHandler) Save(ctx *ginx.Context, req SaveProductReq) (ginx.Result, error) {
	if req.Product.Name == "" || req.Product.Price <= 0 || req.Product.Stock < 0 {
		return ginx.Result{Code: errs.InvalidProductInfo.Code, Msg: errs.InvalidProductInfo.Msg}, nil
	}
	id, err := h.svc.Save(ctx.Request.Context(), domain.Product{
		ID:                req.Product.ID,
		CategoryID:        req.Product.CategoryID,
		Name:              req.Product.Name,
		Desc:              req.Product.Desc,
		Image:             req.Product.Image,
		Price:             req.Product.Price,
		Stock:             req.Product.Stock,
		LowStockThreshold: req.Product.LowStockThreshold,
		Status:            domain.StatusOnShelf,
	})
	if err != nil {
		return systemErrorResult, fmt.Errorf("保存商品失败: %w", err)
	}
	return ginx.Result{Data: SaveProductResp{ID: id}}, nil
}

// UpdateStatus 上下架, 下架即软删除
func (h *AdminHandler) UpdateStatus(ctx *ginx.Context, req UpdateStatusReq) (ginx.Result, error) {
	status := domain.Status(req.Status)
	if status != domain.StatusOnShelf && status != domain.StatusOffShelf {
		return ginx.Result{Code: errs.InvalidProductInfo.Code, Msg: "商品状态非法"}, nil
	}
	err := h.svc.UpdateStatus(ctx.Request.Context(), req.ID, status)
	if err != nil {
		return systemErrorResult, fmt.Errorf("更新商品状态失败: %w", err)
	}
	return ginx.Result{Msg: "OK"}, nil
}

func (h *AdminHandler) LowStock(ctx *ginx.Context) (ginx.Result, error) {
	products, err := h.svc.FindLowStock(ctx.Request.Context())
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: LowStockResp{
			Products: slice.Map(products, func(idx int, src domain.Product) Product {
				vo := toProductVO(src)
				vo.LowStockThreshold = src.LowStockThreshold
				return vo
			}),
		},
	}, nil
}

func (h *AdminHandler) SaveCategory(ctx *ginx.Context, req SaveCategoryReq) (ginx.Result, error) {
	id, err := h.svc.SaveCategory(ctx.Request.Context(), domain.Category{
		ID:   req.Category.ID,
		SN:   req.Category.SN,
		Name: req.Category.Name,
		Desc: req.Category.Desc,
	})
	if err != nil {
		return systemErrorResult, fmt.Errorf("保存类目失败: %w", err)
	}
	return ginx.Result{Data: SaveProductResp{ID: id}}, nil
}
