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

// ListProductsReq 分页查询上架商品
type ListProductsReq struct {
	Offset     int   `json:"offset,omitempty"`
	Limit      int   `json:"limit,omitempty"`
	CategoryID int64 `json:"categoryId,omitempty"`
}

type ListProductsResp struct {
	Total    int64     `json:"total,omitempty"`
	Products []Product `json:"products,omitempty"`
}

// DetailReq 按序列号查询商品详情
type DetailReq struct {
	SN string `json:"sn"`
}

type DetailResp struct {
	Product Product `json:"product"`
}

type Product struct {
	ID                int64  `json:"id"`
	SN                string `json:"sn"`
	CategoryID        int64  `json:"categoryId"`
	Name              string `json:"name"`
	Desc              string `json:"desc"`
	Image             string `json:"image"`
	Price             int64  `json:"price"`
	Stock             int64  `json:"stock"`
	LowStockThreshold int64  `json:"lowStockThreshold,omitempty"`
	Status            uint8  `json:"status"`
}

type Category struct {
	ID   int64  `json:"id"`
	SN   string `json:"sn"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

type CategoryListResp struct {
	Categories []Category `json:"categories"`
}

// SaveProductReq 后台创建/更新商品
type SaveProductReq struct {
	Product Product `json:"product"`
}

type SaveProductResp struct {
	ID int64 `json:"id"`
}

// UpdateStatusReq 上下架
type UpdateStatusReq struct {
	ID     int64 `json:"id"`
	Status uint8 `json:"status"`
}

// SaveCategoryReq 后台创建/更新类目
type SaveCategoryReq struct {
	Category Category `json:"category"`
}

type LowStockResp struct {
	Products []Product `json:"products"`
}
