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
	"net/http"
	"strconv"

	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/emall/internal/order/internal/domain"
	"github.com/ecodeclub/emall/internal/order/internal/service"
	"github.com/ecodeclub/ginx"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
)

type AdminHandler struct {
	svc    service.Service
	logger *elog.Component
}

func NewAdminHandler(svc service.Service) *AdminHandler {
	return &AdminHandler{
		svc:    svc,
		logger: elog.DefaultLogger,
	}
}

func (h *AdminHandler) PublicRoutes(_ *gin.Engine) {}

func (h *AdminHandler) PrivateRoutes(server *gin.Engine) {
	g := server.Group("/order")
	g.POST("/list", ginx.B[ListOrdersReq](h.List))
	g.POST("/detail", ginx.B[RetrieveOrderDetailReq](h.Detail))
	server.PUT("/orders/:id/status", h.UpdateStatus)
}

func (h *AdminHandler) List(ctx *ginx.Context, req ListOrdersReq) (ginx.Result, error) {
	orders, total, err := h.svc.List(ctx.Request.Context(), req.Offset, req.Limit)
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: ListOrdersResp{
			Total: total,
			Orders: slice.Map(orders, func(idx int, src domain.Order) Order {
				return toOrderVO(src)
			}),
		},
	}, nil
}

func (h *AdminHandler) Detail(ctx *ginx.Context, req RetrieveOrderDetailReq) (ginx.Result, error) {
	order, err := h.svc.FindBySN(ctx.Request.Context(), req.SN)
	if errors.Is(err, service.ErrOrderNotFound) {
		return orderNotFoundResult, nil
	}
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: RetrieveOrderDetailResp{Order: toOrderVO(order)},
	}, nil
}

// UpdateStatus 推进订单状态, 进入已取消/已退款时恰好还一次库存
func (h *AdminHandler) UpdateStatus(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "订单ID非法"})
		return
	}
	var req UpdateOrderStatusReq
	if err := ctx.Bind(&req); err != nil {
		return
	}
	err = h.svc.UpdateStatus(ctx.Request.Context(), id, domain.OrderStatus(req.Status))
	switch {
	case errors.Is(err, service.ErrInvalidStatus):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "订单状态非法"})
		return
	case errors.Is(err, service.ErrOrderNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单未找到"})
		return
	case err != nil:
		h.logger.Error("更新订单状态失败", elog.FieldErr(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "系统错误"})
		return
	}
	order, err := h.svc.FindByID(ctx.Request.Context(), id)
	if err != nil {
		h.logger.Error("查找订单失败", elog.FieldErr(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "系统错误"})
		return
	}
	ctx.JSON(http.StatusOK, toOrderVO(order))
}
