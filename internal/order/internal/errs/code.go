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

package errs

var (
	SystemError       = ErrorCode{Code: 503001, Msg: "系统错误"}
	OrderNotFound     = ErrorCode{Code: 503002, Msg: "订单未找到"}
	InvalidOrderInfo  = ErrorCode{Code: 503003, Msg: "订单信息非法"}
	InsufficientStock = ErrorCode{Code: 503004, Msg: "商品库存不足"}
	CannotCancel      = ErrorCode{Code: 503005, Msg: "当前状态不可取消"}
	InvalidStatus     = ErrorCode{Code: 503006, Msg: "订单状态非法"}
	NotOwner          = ErrorCode{Code: 503007, Msg: "无权操作该订单"}
)

type ErrorCode struct {
	Code int
	Msg  string
}
