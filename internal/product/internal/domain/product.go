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

type Status uint8

func (s Status) ToUint8() uint8 {
	return uint8(s)
}

const (
	// StatusOffShelf 下架即"软删除", 商品数据永不物理删除
	StatusOffShelf Status = 1 // 下架
	StatusOnShelf  Status = 2 // 上架
)

type Product struct {
	ID         int64
	SN         string
	CategoryID int64
	Name       string
	Desc       string
	Image      string
	// Price 单位为分, 999表示9.99
	Price int64
	Stock int64
	// LowStockThreshold 库存低于该值时进入低库存清单
	LowStockThreshold int64
	Status            Status
	Ctime             int64
	Utime             int64
}

type Category struct {
	ID   int64
	SN   string
	Name string
	Desc string
}
