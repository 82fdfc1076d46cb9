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

package dao

import (
	"context"
	"errors"
	"time"

	"github.com/ego-component/egorm"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrUserDuplicate    = errors.New("邮箱冲突")
	ErrUserNotFound     = gorm.ErrRecordNotFound
	ErrAddressNotFound  = gorm.ErrRecordNotFound
	uniqueConflictErrNo = uint16(1062)
)

type UserDAO interface {
	Insert(ctx context.Context, u User) (int64, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	Update(ctx context.Context, u User) error

	InsertAddress(ctx context.Context, a Address) (int64, error)
	UpdateAddress(ctx context.Context, a Address) error
	DeleteAddress(ctx context.Context, id, uid int64) error
	FindAddress(ctx context.Context, id, uid int64) (Address, error)
	FindAddressesByUID(ctx context.Context, uid int64) ([]Address, error)
	SetDefaultAddress(ctx context.Context, id, uid int64) error
}

type UserGORMDAO struct {
	db *egorm.Component
}

func NewUserGORMDAO(db *egorm.Component) UserDAO {
	return &UserGORMDAO{db: db}
}

func (d *UserGORMDAO) Insert(ctx context.Context, u User) (int64, error) {
	now := time.Now().UnixMilli()
	u.Ctime, u.Utime = now, now
	err := d.db.WithContext(ctx).Create(&u).Error
	if me := (*mysql.MySQLError)(nil); errors.As(err, &me) {
		if me.Number == uniqueConflictErrNo {
			return 0, ErrUserDuplicate
		}
	}
	return u.Id, err
}

func (d *UserGORMDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var res User
	err := d.db.WithContext(ctx).Where("email = ?", email).First(&res).Error
	return res, err
}

func (d *UserGORMDAO) FindByID(ctx context.Context, id int64) (User, error) {
	var res User
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	return res, err
}

func (d *UserGORMDAO) Update(ctx context.Context, u User) error {
	return d.db.WithContext(ctx).Model(&User{}).Where("id = ?", u.Id).
		Updates(map[string]any{
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"phone":      u.Phone,
			"utime":      time.Now().UnixMilli(),
		}).Error
}

func (d *UserGORMDAO) InsertAddress(ctx context.Context, a Address) (int64, error) {
	now := time.Now().UnixMilli()
	a.Ctime, a.Utime = now, now
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.IsDefault {
			if err := d.clearDefault(tx, a.Uid, now); err != nil {
				return err
			}
		}
		return tx.Create(&a).Error
	})
	return a.Id, err
}

func (d *UserGORMDAO) UpdateAddress(ctx context.Context, a Address) error {
	a.Utime = time.Now().UnixMilli()
	res := d.db.WithContext(ctx).Model(&Address{}).
		Where("id = ? AND uid = ?", a.Id, a.Uid).
		Updates(map[string]any{
			"first_name":  a.FirstName,
			"last_name":   a.LastName,
			"street":      a.Street,
			"complement":  a.Complement,
			"city":        a.City,
			"postal_code": a.PostalCode,
			"country":     a.Country,
			"phone":       a.Phone,
			"utime":       a.Utime,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (d *UserGORMDAO) DeleteAddress(ctx context.Context, id, uid int64) error {
	res := d.db.WithContext(ctx).Where("id = ? AND uid = ?", id, uid).Delete(&Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (d *UserGORMDAO) FindAddress(ctx context.Context, id, uid int64) (Address, error) {
	var res Address
	err := d.db.WithContext(ctx).Where("id = ? AND uid = ?", id, uid).First(&res).Error
	return res, err
}

func (d *UserGORMDAO) FindAddressesByUID(ctx context.Context, uid int64) ([]Address, error) {
	var res []Address
	err := d.db.WithContext(ctx).Where("uid = ?", uid).
		Order("is_default DESC, utime DESC").Find(&res).Error
	return res, err
}

// SetDefaultAddress 同一事务里先清掉旧默认, 再设置新默认
func (d *UserGORMDAO) SetDefaultAddress(ctx context.Context, id, uid int64) error {
	now := time.Now().UnixMilli()
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := d.clearDefault(tx, uid, now); err != nil {
			return err
		}
		res := tx.Model(&Address{}).Where("id = ? AND uid = ?", id, uid).
			Updates(map[string]any{"is_default": true, "utime": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAddressNotFound
		}
		return nil
	})
}

func (d *UserGORMDAO) clearDefault(tx *gorm.DB, uid int64, now int64) error {
	return tx.Model(&Address{}).Where("uid = ? AND is_default = ?", uid, true).
		Updates(map[string]any{"is_default": false, "utime": now}).Error
}

func InitTables(db *egorm.Component) error {
	return db.AutoMigrate(&User{}, &Address{})
}

type User struct {
	Id        int64  `gorm:"primaryKey;autoIncrement;comment:用户自增ID"`
	Email     string `gorm:"type:varchar(255);not null;uniqueIndex:uniq_user_email;comment:邮箱"`
	Password  string `gorm:"type:varchar(255);not null;comment:bcrypt哈希"`
	FirstName string `gorm:"type:varchar(128);not null;comment:名"`
	LastName  string `gorm:"type:varchar(128);not null;comment:姓"`
	Phone     string `gorm:"type:varchar(32);not null;default:'';comment:电话"`
	Role      uint8  `gorm:"type:tinyint unsigned;not null;default:1;comment:角色 1=顾客 2=管理员"`
	Ctime     int64
	Utime     int64
}

type Address struct {
	Id         int64  `gorm:"primaryKey;autoIncrement;comment:地址自增ID"`
	Uid        int64  `gorm:"not null;index:idx_address_uid;comment:用户自增ID"`
	FirstName  string `gorm:"type:varchar(128);not null;comment:收件人名"`
	LastName   string `gorm:"type:varchar(128);not null;comment:收件人姓"`
	Street     string `gorm:"type:varchar(255);not null;comment:街道"`
	Complement string `gorm:"type:varchar(255);not null;default:'';comment:地址补充"`
	City       string `gorm:"type:varchar(128);not null;comment:城市"`
	PostalCode string `gorm:"type:varchar(32);not null;comment:邮编"`
	Country    string `gorm:"type:varchar(128);not null;comment:国家"`
	Phone      string `gorm:"type:varchar(32);not null;default:'';comment:电话"`
	IsDefault  bool   `gorm:"not null;default:false;comment:是否默认地址"`
	Ctime      int64
	Utime      int64
}
