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

	"github.com/ecodeclub/emall/internal/payment/internal/errs"
	"github.com/ecodeclub/emall/internal/payment/internal/service"
	"github.com/ecodeclub/emall/internal/payment/internal/service/paypal"
	"github.com/ecodeclub/ginx"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
)

var _ ginx.Handler = &Handler{}

// Handler 面向SPA的支付接口, 网关错误以5xx透出, 前端可安全重试
type Handler struct {
	svc    service.Service
	cfg    paypal.Config
	logger *elog.Component
}

func NewHandler(svc service.Service, cfg paypal.Config) *Handler {
	return &Handler{
		svc:    svc,
		cfg:    cfg,
		logger: elog.DefaultLogger,
	}
}

func (h *Handler) PublicRoutes(server *gin.Engine) {
	// 前端初始化PayPal SDK用, 只暴露clientID, 密钥永不出后端
	server.GET("/paypal/client-id", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"clientId": h.cfg.ClientID})
	})
}

func (h *Handler) PrivateRoutes(server *gin.Engine) {
	server.POST("/paypal/create-order", h.CreateOrder)
	server.POST("/paypal/capture-order", h.CaptureOrder)
}

func (h *Handler) CreateOrder(ctx *gin.Context) {
	sess, err := session.Get(&ginx.Context{Context: ctx})
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
		return
	}
	type createReq struct {
		OrderID int64 `json:"orderId"`
	}
	var req createReq
	if err := ctx.Bind(&req); err != nil {
		return
	}
	po, err := h.svc.CreatePayPalOrder(ctx.Request.Context(), sess.Claims().Uid, req.OrderID)
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单未找到"})
	case errors.Is(err, service.ErrNotOwner):
		ctx.JSON(http.StatusForbidden, gin.H{"error": errs.NotOwner.Msg})
	case errors.Is(err, service.ErrOrderNotPending):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errs.OrderNotPending.Msg})
	case err != nil:
		h.logger.Error("创建PayPal订单失败", elog.FieldErr(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errs.SystemError.Msg})
	default:
		ctx.JSON(http.StatusOK, gin.H{
			"paypalOrderId": po.ID,
			"approvalUrl":   po.ApprovalURL,
		})
	}
}

func (h *Handler) CaptureOrder(ctx *gin.Context) {
	sess, err := session.Get(&ginx.Context{Context: ctx})
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "未登录"})
		return
	}
	type captureReq struct {
		PayPalOrderID string `json:"paypalOrderId"`
	}
	var req captureReq
	if err := ctx.Bind(&req); err != nil {
		return
	}
	o, err := h.svc.CapturePayPalOrder(ctx.Request.Context(), sess.Claims().Uid, req.PayPalOrderID)
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "订单未找到"})
	case errors.Is(err, service.ErrNotOwner):
		ctx.JSON(http.StatusForbidden, gin.H{"error": errs.NotOwner.Msg})
	case err != nil:
		h.logger.Error("捕获PayPal支付失败", elog.FieldErr(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errs.SystemError.Msg})
	default:
		// 捕获成功后把最新的订单整体回给前端, 省一次detail查询
		ctx.JSON(http.StatusOK, gin.H{
			"success": true,
			"order":   toOrderVO(o),
		})
	}
}
