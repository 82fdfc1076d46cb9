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

package order

import (
	"github.com/ecodeclub/emall/internal/order/internal/domain"
	"github.com/ecodeclub/emall/internal/order/internal/service"
	"github.com/ecodeclub/emall/internal/order/internal/web"
)

type (
	Handler      = web.Handler
	RestHandler  = web.RestHandler
	AdminHandler = web.AdminHandler
	Service      = service.Service
	Order        = domain.Order
	OrderItem    = domain.OrderItem
	CheckoutItem = domain.CheckoutItem
	OrderStatus  = domain.OrderStatus
)

const (
	StatusPending    = domain.StatusPending
	StatusPaid       = domain.StatusPaid
	StatusProcessing = domain.StatusProcessing
	StatusShipped    = domain.StatusShipped
	StatusDelivered  = domain.StatusDelivered
	StatusCancelled  = domain.StatusCancelled
	StatusRefunded   = domain.StatusRefunded
)

var (
	ErrOrderNotFound     = service.ErrOrderNotFound
	ErrInsufficientStock = service.ErrInsufficientStock
	ErrInvalidStatus     = service.ErrInvalidStatus
	ErrNotOwner          = service.ErrNotOwner
)

type Module struct {
	Svc      Service
	Hdl      *Handler
	RestHdl  *RestHandler
	AdminHdl *AdminHandler
}
