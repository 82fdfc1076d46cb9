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

package sequencenumber

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// TimestampGenerateFunc 定义生成时间戳的函数类型
type TimestampGenerateFunc func(time.Time) int64

// ShortUUIDGenerateFunc 定义生成ShortUUID的函数类型
type ShortUUIDGenerateFunc func() string

// Generator 生成带业务前缀的序列号, 订单号、支付号都用它
type Generator struct {
	prefix           string
	timestampGenFunc TimestampGenerateFunc
	shortUUIDGenFunc ShortUUIDGenerateFunc
}

// NewGeneratorWith 创建一个Generator实例, 测试时注入固定的时间戳和UUID
func NewGeneratorWith(prefix string, timestampGen TimestampGenerateFunc, uuidGen ShortUUIDGenerateFunc) *Generator {
	return &Generator{
		prefix:           prefix,
		timestampGenFunc: timestampGen,
		shortUUIDGenFunc: uuidGen,
	}
}

// NewGenerator 创建一个Generator实例
func NewGenerator(prefix string) *Generator {
	return NewGeneratorWith(prefix,
		func(t time.Time) int64 { return t.UnixMilli() },
		func() string { return shortuuid.New() })
}

// Generate 生成序列号: 前缀 + 毫秒时间戳的36进制 + ID后四位 + uuid凑位
// 序列号在创建时生成一次, 全局唯一, 永不复用
func (s *Generator) Generate(id int64) (string, error) {
	timestamp := strings.ToUpper(strconv.FormatInt(s.timestampGenFunc(time.Now()), 36))
	lastFour := fmt.Sprintf("%04d", id%10000)
	uuid := s.shortUUIDGenFunc()
	body := fmt.Sprintf("%s%s%s", timestamp, lastFour, uuid)
	if len(body) > 24 {
		body = body[:24]
	}
	return fmt.Sprintf("%s-%s", s.prefix, body), nil
}
