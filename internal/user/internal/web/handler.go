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
	"strconv"

	regexp "github.com/dlclark/regexp2"
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/emall/internal/user/internal/domain"
	"github.com/ecodeclub/emall/internal/user/internal/errs"
	"github.com/ecodeclub/emall/internal/user/internal/service"
	"github.com/ecodeclub/ginx"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
)

// 密码规则: 长度至少 6 位
const passwordRegexPattern = `^.{6,}$`

var _ ginx.Handler = &Handler{}

type Handler struct {
	svc              service.UserService
	passwordRegexExp *regexp.Regexp
}

func NewHandler(svc service.UserService) *Handler {
	return &Handler{
		svc:              svc,
		passwordRegexExp: regexp.MustCompile(passwordRegexPattern, regexp.None),
	}
}

func (h *Handler) PublicRoutes(server *gin.Engine) {
	users := server.Group("/users")
	users.POST("/signup", ginx.B[SignUpReq](h.SignUp))
	users.POST("/login", ginx.B[LoginReq](h.Login))
}

func (h *Handler) PrivateRoutes(server *gin.Engine) {
	users := server.Group("/users")
	users.GET("/profile", ginx.S(h.Profile))
	users.POST("/profile", ginx.BS[EditReq](h.Edit))

	addr := server.Group("/users/address")
	addr.GET("/list", ginx.S(h.ListAddresses))
	addr.POST("/save", ginx.BS[SaveAddressReq](h.SaveAddress))
	addr.POST("/delete", ginx.BS[AddressIDReq](h.DeleteAddress))
	addr.POST("/default", ginx.BS[AddressIDReq](h.SetDefaultAddress))
}

func (h *Handler) SignUp(ctx *ginx.Context, req SignUpReq) (ginx.Result, error) {
	if req.Password != req.ConfirmPassword {
		return ginx.Result{Code: errs.InvalidEmailOrPasswd.Code, Msg: "两次密码不相同"}, nil
	}
	ok, err := h.passwordRegexExp.MatchString(req.Password)
	if err != nil {
		return systemErrorResult, err
	}
	if !ok {
		return ginx.Result{Code: errs.InvalidEmailOrPasswd.Code, Msg: "密码格式不正确, 长度不能小于 6 位"}, nil
	}
	u, err := h.svc.SignUp(ctx.Request.Context(), domain.User{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if errors.Is(err, service.ErrUserDuplicate) {
		return ginx.Result{Code: errs.DuplicateEmail.Code, Msg: errs.DuplicateEmail.Msg}, nil
	}
	if err != nil {
		return systemErrorResult, fmt.Errorf("注册失败: %w", err)
	}
	return h.buildSession(ctx, u)
}

func (h *Handler) Login(ctx *ginx.Context, req LoginReq) (ginx.Result, error) {
	u, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidEmailOrPasswd) {
		return ginx.Result{Code: errs.InvalidEmailOrPasswd.Code, Msg: errs.InvalidEmailOrPasswd.Msg}, nil
	}
	if err != nil {
		return systemErrorResult, fmt.Errorf("登录失败: %w", err)
	}
	return h.buildSession(ctx, u)
}

// buildSession 把角色写进JWT声明, admin服务器的权限校验靠它
func (h *Handler) buildSession(ctx *ginx.Context, u domain.User) (ginx.Result, error) {
	isAdmin := u.Role == domain.RoleAdmin
	_, err := session.NewSessionBuilder(ctx, u.ID).
		SetJwtData(map[string]string{
			"admin": strconv.FormatBool(isAdmin),
		}).Build()
	if err != nil {
		return systemErrorResult, fmt.Errorf("建立会话失败: %w", err)
	}
	return ginx.Result{
		Data: Profile{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Phone:     u.Phone,
			IsAdmin:   isAdmin,
		},
	}, nil
}

func (h *Handler) Profile(ctx *ginx.Context, sess session.Session) (ginx.Result, error) {
	u, err := h.svc.Profile(ctx.Request.Context(), sess.Claims().Uid)
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: Profile{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Phone:     u.Phone,
			IsAdmin:   u.Role == domain.RoleAdmin,
		},
	}, nil
}

func (h *Handler) Edit(ctx *ginx.Context, req EditReq, sess session.Session) (ginx.Result, error) {
	err := h.svc.UpdateProfile(ctx.Request.Context(), domain.User{
		ID:        sess.Claims().Uid,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{Msg: "OK"}, nil
}

func (h *Handler) ListAddresses(ctx *ginx.Context, sess session.Session) (ginx.Result, error) {
	as, err := h.svc.ListAddresses(ctx.Request.Context(), sess.Claims().Uid)
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{
		Data: ListAddressesResp{
			Addresses: slice.Map(as, func(idx int, src domain.Address) Address {
				return toAddressVO(src)
			}),
		},
	}, nil
}

func (h *Handler) SaveAddress(ctx *ginx.Context, req SaveAddressReq, sess session.Session) (ginx.Result, error) {
	id, err := h.svc.SaveAddress(ctx.Request.Context(), domain.Address{
		ID:         req.Address.ID,
		UID:        sess.Claims().Uid,
		FirstName:  req.Address.FirstName,
		LastName:   req.Address.LastName,
		Street:     req.Address.Street,
		Complement: req.Address.Complement,
		City:       req.Address.City,
		PostalCode: req.Address.PostalCode,
		Country:    req.Address.Country,
		Phone:      req.Address.Phone,
		IsDefault:  req.Address.IsDefault,
	})
	if errors.Is(err, service.ErrAddressNotFound) {
		return ginx.Result{Code: errs.AddressNotFound.Code, Msg: errs.AddressNotFound.Msg}, nil
	}
	if err != nil {
		return systemErrorResult, fmt.Errorf("保存地址失败: %w", err)
	}
	return ginx.Result{Data: SaveAddressResp{ID: id}}, nil
}

func (h *Handler) DeleteAddress(ctx *ginx.Context, req AddressIDReq, sess session.Session) (ginx.Result, error) {
	err := h.svc.DeleteAddress(ctx.Request.Context(), req.ID, sess.Claims().Uid)
	if errors.Is(err, service.ErrAddressNotFound) {
		return ginx.Result{Code: errs.AddressNotFound.Code, Msg: errs.AddressNotFound.Msg}, nil
	}
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{Msg: "OK"}, nil
}

func (h *Handler) SetDefaultAddress(ctx *ginx.Context, req AddressIDReq, sess session.Session) (ginx.Result, error) {
	err := h.svc.SetDefaultAddress(ctx.Request.Context(), req.ID, sess.Claims().Uid)
	if errors.Is(err, service.ErrAddressNotFound) {
		return ginx.Result{Code: errs.AddressNotFound.Code, Msg: errs.AddressNotFound.Msg}, nil
	}
	if err != nil {
		return systemErrorResult, err
	}
	return ginx.Result{Msg: "OK"}, nil
}

func toAddressVO(a domain.Address) Address {
	return Address{
		ID:         a.ID,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Street:     a.Street,
		Complement: a.Complement,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
		IsDefault:  a.IsDefault,
	}
}
