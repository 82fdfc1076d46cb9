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
	"github.com/ecodeclub/emall/internal/user/internal/domain"
	"github.com/ecodeclub/emall/internal/user/internal/repository/dao"
)

var (
	ErrUserDuplicate   = dao.ErrUserDuplicate
	ErrUserNotFound    = dao.ErrUserNotFound
	ErrAddressNotFound = dao.ErrAddressNotFound
)

type UserRepository interface {
	Create(ctx context.Context, u domain.User) (int64, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id int64) (domain.User, error)
	Update(ctx context.Context, u domain.User) error

	CreateAddress(ctx context.Context, a domain.Address) (int64, error)
	UpdateAddress(ctx context.Context, a domain.Address) error
	DeleteAddress(ctx context.Context, id, uid int64) error
	FindAddress(ctx context.Context, id, uid int64) (domain.Address, error)
	FindAddressesByUID(ctx context.Context, uid int64) ([]domain.Address, error)
	SetDefaultAddress(ctx context.Context, id, uid int64) error
}

func NewUserRepository(d dao.UserDAO) UserRepository {
	return &userRepository{dao: d}
}

type userRepository struct {
	dao dao.UserDAO
}

func (r *userRepository) Create(ctx context.Context, u domain.User) (int64, error) {
	return r.dao.Insert(ctx, r.toEntity(u))
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	return r.toDomain(u), nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	u, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return r.toDomain(u), nil
}

func (r *userRepository) Update(ctx context.Context, u domain.User) error {
	return r.dao.Update(ctx, r.toEntity(u))
}

func (r *userRepository) CreateAddress(ctx context.Context, a domain.Address) (int64, error) {
	return r.dao.InsertAddress(ctx, r.toAddressEntity(a))
}

func (r *userRepository) UpdateAddress(ctx context.Context, a domain.Address) error {
	return r.dao.UpdateAddress(ctx, r.toAddressEntity(a))
}

func (r *userRepository) DeleteAddress(ctx context.Context, id, uid int64) error {
	return r.dao.DeleteAddress(ctx, id, uid)
}

func (r *userRepository) FindAddress(ctx context.Context, id, uid int64) (domain.Address, error) {
	a, err := r.dao.FindAddress(ctx, id, uid)
	if err != nil {
		return domain.Address{}, err
	}
	return r.toAddressDomain(a), nil
}

func (r *userRepository) FindAddressesByUID(ctx context.Context, uid int64) ([]domain.Address, error) {
	as, err := r.dao.FindAddressesByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return slice.Map(as, func(idx int, src dao.Address) domain.Address {
		return r.toAddressDomain(src)
	}), nil
}

func (r *userRepository) SetDefaultAddress(ctx context.Context, id, uid int64) error {
	return r.dao.SetDefaultAddress(ctx, id, uid)
}

func (r *userRepository) toEntity(u domain.User) dao.User {
	return dao.User{
		Id:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      u.Role.ToUint8(),
	}
}

func (r *userRepository) toDomain(u dao.User) domain.User {
	return domain.User{
		ID:        u.Id,
		Email:     u.Email,
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      domain.Role(u.Role),
		Ctime:     u.Ctime,
		Utime:     u.Utime,
	}
}

func (r *userRepository) toAddressEntity(a domain.Address) dao.Address {
	return dao.Address{
		Id:         a.ID,
		Uid:        a.UID,
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

func (r *userRepository) toAddressDomain(a dao.Address) domain.Address {
	return domain.Address{
		ID:         a.Id,
		UID:        a.Uid,
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
