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
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
)

var _ ginx.Handler = &RestHandler{}

// RestHandler 面向SPA的REST形式接口, 用语义化的HTTP状态码
// 和 {error: string} 错误体, 和 /order 下的接口共用同一套服务
type RestHandler struct {
	svc    service.Service
	logger *elog.Component
}

func NewRestHandler(svc service.Service) *RestHandler {
	return &RestHandler{
		svc:    svc,
		logger: elog.DefaultLogger,
	}
}

func (h *RestHandler) PublicRoutes(_ *gin.Engine) {}

func (h *RestHandler) PrivateRoutes(server *gin.Engine) {
	server.POST("/orders", h.Create)
	server.POST("/orders/:id/cancel", h.Cancel)
}

func (h *RestHandler) Create(ctx *gin.Context) {
	sess, err := session.Get(&ginx.Context{Context: ctx})
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
		return
	}
	type createReq struct {
		Items     []CheckoutItem `json:"items"`
		AddressID int64          `json:"addressId"`
	}
	var req createReq
	if err := ctx.Bind(&req); err != nil {
		return
	}
	order, err := h.svc.CreateOrder(ctx.Request.Context(), sess.Claims().Uid, req.AddressID,
		slice.Map(req.Items, func(idx int, src CheckoutItem) domain.CheckoutItem {
			return domain.CheckoutItem{
				ProductID: src.ProductID,
				Quantity:  src.Quantity,
			}
		}))
	switch {
	case errors.Is(err, service.ErrInvalidOrderInfo),
		errors.Is(err, service.ErrInsufficientStock):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("创建订单失败", elog.FieldErr(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "系统错误"})
	default:
		ctx.JSON(http.StatusCreated, toOrderVO(order))
	}
}

func (h *RestHandler) Cancel(ctx *gin.Context) {
	sess, err := session.Get(&ginx.Context{Context: ctx})
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
		return
	}
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "订单ID非法"})
		return
	}
	uid := sess.Claims().Uid
	err = h.svc.Cancel(ctx.Request.Context(), uid, id)
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单未找到"})
		return
	case errors.Is(err, service.ErrNotOwner):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "无权操作该订单"})
		return
	case errors.Is(err, service.ErrCannotCancel):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "当前状态不可取消"})
		return
	case err != nil:
		h.logger.Error("取消订单失败", elog.FieldErr(err))
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
