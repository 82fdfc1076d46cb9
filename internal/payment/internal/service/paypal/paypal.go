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

package paypal

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/emall/internal/order"
	"github.com/gotomicro/ego/core/elog"
	"github.com/pkg/errors"
	"github.com/plutov/paypal/v4"
)

const currencyEUR = "EUR"

// GatewayAPI 抽象 PayPal Orders v2 客户端, 测试时可以伪造网关
type GatewayAPI interface {
	GetAccessToken(ctx context.Context) (*paypal.TokenResponse, error)
	CreateOrder(ctx context.Context, intent string, purchaseUnits []paypal.PurchaseUnitRequest, payer *paypal.CreateOrderPayer, appContext *paypal.ApplicationContext) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string, captureOrderRequest paypal.CaptureOrderRequest) (*paypal.CaptureOrderResponse, error)
}

// Config 网关展示与回跳配置, 从配置文件读入
type Config struct {
	ClientID  string `yaml:"clientID"`
	Secret    string `yaml:"secret"`
	Mode      string `yaml:"mode"`
	BrandName string `yaml:"brandName"`
	ReturnURL string `yaml:"returnURL"`
	CancelURL string `yaml:"cancelURL"`
}

type PayPalPaymentService struct {
	svc    GatewayAPI
	cfg    Config
	logger *elog.Component
}

func NewPayPalPaymentService(svc GatewayAPI, cfg Config) *PayPalPaymentService {
	return &PayPalPaymentService{
		svc:    svc,
		cfg:    cfg,
		logger: elog.DefaultLogger,
	}
}

// CreateOrder 在网关侧创建订单并返回批准链接
// 访问令牌每次调用临时换取, 本地不落任何凭证
func (p *PayPalPaymentService) CreateOrder(ctx context.Context, o order.Order) (string, string, error) {
	if _, err := p.svc.GetAccessToken(ctx); err != nil {
		return "", "", errors.Wrap(err, "获取PayPal访问令牌失败")
	}
	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: o.SN,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currencyEUR,
				Value:    centsToAmount(o.Total),
				Breakdown: &paypal.PurchaseUnitAmountBreakdown{
					ItemTotal: &paypal.Money{Currency: currencyEUR, Value: centsToAmount(o.Subtotal)},
					Shipping:  &paypal.Money{Currency: currencyEUR, Value: centsToAmount(o.Shipping)},
				},
			},
			Items: slice.Map(o.Items, func(idx int, src order.OrderItem) paypal.Item {
				return paypal.Item{
					Name:       src.Name,
					UnitAmount: &paypal.Money{Currency: currencyEUR, Value: centsToAmount(src.Price)},
					Quantity:   strconv.FormatInt(src.Quantity, 10),
				}
			}),
		},
	}
	resp, err := p.svc.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil,
		&paypal.ApplicationContext{
			BrandName:          p.cfg.BrandName,
			ShippingPreference: paypal.ShippingPreferenceNoShipping,
			UserAction:         paypal.UserActionPayNow,
			ReturnURL:          p.cfg.ReturnURL,
			CancelURL:          p.cfg.CancelURL,
		})
	if err != nil {
		return "", "", errors.Wrap(err, "创建PayPal订单失败")
	}
	approvalURL := ""
	for _, link := range resp.Links {
		if link.Rel == "approve" {
			approvalURL = link.Href
		}
	}
	return resp.ID, approvalURL, nil
}

// CaptureOrder 捕获支付, 只有网关报告COMPLETED才算成功
func (p *PayPalPaymentService) CaptureOrder(ctx context.Context, paypalOrderID string) error {
	if _, err := p.svc.GetAccessToken(ctx); err != nil {
		return errors.Wrap(err, "获取PayPal访问令牌失败")
	}
	resp, err := p.svc.CaptureOrder(ctx, paypalOrderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return errors.Wrap(err, "捕获PayPal支付失败")
	}
	if resp.Status != "COMPLETED" {
		return fmt.Errorf("PayPal支付未完成: status=%s", resp.Status)
	}
	return nil
}

// centsToAmount 分转网关要求的字符串金额, 999 -> "9.99"
func centsToAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
