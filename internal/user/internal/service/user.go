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
	"errors"

	"github.com/ecodeclub/emall/internal/user/internal/domain"
	"github.com/ecodeclub/emall/internal/user/internal/repository"
	"github.com/gotomicro/ego/core/elog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserDuplicate        = repository.ErrUserDuplicate
	ErrInvalidEmailOrPasswd = errors.New("邮箱或密码错误")
	ErrAddressNotFound      = repository.ErrAddressNotFound
)

type UserService interface {
	SignUp(ctx context.Context, u domain.User) (domain.User, error)
	// Login 校验邮箱密码, 成功返回用户信息, 会话由web层建立
	Login(ctx context.Context, email, password string) (domain.User, error)
	Profile(ctx context.Context, id int64) (domain.User, error)
	UpdateProfile(ctx context.Context, u domain.User) error

	SaveAddress(ctx context.Context, a domain.Address) (int64, error)
	DeleteAddress(ctx context.Context, id, uid int64) error
	// FindAddress 带归属校验, 地址不属于uid时返回 ErrAddressNotFound
	FindAddress(ctx context.Context, id, uid int64) (domain.Address, error)
	ListAddresses(ctx context.Context, uid int64) ([]domain.Address, error)
	SetDefaultAddress(ctx context.Context, id, uid int64) error
}

type userService struct {
	repo   repository.UserRepository
	logger *elog.Component
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{
		repo:   repo,
		logger: elog.DefaultLogger,
	}
}

func (svc *userService) SignUp(ctx context.Context, u domain.User) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	u.Password = string(hash)
	u.Role = domain.RoleCustomer
	id, err := svc.repo.Create(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	u.ID = id
	u.Password = ""
	return u, nil
}

func (svc *userService) Login(ctx context.Context, email, password string) (domain.User, error) {
	u, err := svc.repo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return domain.User{}, ErrInvalidEmailOrPasswd
	}
	if err != nil {
		return domain.User{}, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	if err != nil {
		// 不区分"用户不存在"和"密码错误", 防止撞库探测
		return domain.User{}, ErrInvalidEmailOrPasswd
	}
	u.Password = ""
	return u, nil
}

func (svc *userService) Profile(ctx context.Context, id int64) (domain.User, error) {
	u, err := svc.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	u.Password = ""
	return u, nil
}

func (svc *userService) UpdateProfile(ctx context.Context, u domain.User) error {
	return svc.repo.Update(ctx, u)
}

func (svc *userService) SaveAddress(ctx context.Context, a domain.Address) (int64, error) {
	if a.ID == 0 {
		return svc.repo.CreateAddress(ctx, a)
	}
	return a.ID, svc.repo.UpdateAddress(ctx, a)
}

func (svc *userService) DeleteAddress(ctx context.Context, id, uid int64) error {
	return svc.repo.DeleteAddress(ctx, id, uid)
}

func (svc *userService) FindAddress(ctx context.Context, id, uid int64) (domain.Address, error) {
	return svc.repo.FindAddress(ctx, id, uid)
}

func (svc *userService) ListAddresses(ctx context.Context, uid int64) ([]domain.Address, error) {
	return svc.repo.FindAddressesByUID(ctx, uid)
}

func (svc *userService) SetDefaultAddress(ctx context.Context, id, uid int64) error {
	return svc.repo.SetDefaultAddress(ctx, id, uid)
}
