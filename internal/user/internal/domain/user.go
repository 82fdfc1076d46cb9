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

package domain

type Role uint8

func (r Role) ToUint8() uint8 {
	return uint8(r)
}

const (
	RoleCustomer Role = 1 // 顾客
	RoleAdmin    Role = 2 // 管理员
)

// User 的 Password 字段是bcrypt哈希, 不会出现在任何响应里
type User struct {
	ID        int64
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      Role
	Ctime     int64
	Utime     int64
}

// Address 收货地址, 下单时按快照引用
type Address struct {
	ID         int64
	UID        int64
	FirstName  string
	LastName   string
	Street     string
	Complement string
	City       string
	PostalCode string
	Country    string
	Phone      string
	IsDefault  bool
}
