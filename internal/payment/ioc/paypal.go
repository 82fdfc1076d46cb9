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

package ioc

import (
	"github.com/ecodeclub/emall/internal/payment/internal/service/paypal"
	"github.com/gotomicro/ego/core/econf"
	paypalsdk "github.com/plutov/paypal/v4"
)

func InitPayPalConfig() paypal.Config {
	var cfg paypal.Config
	if err := econf.UnmarshalKey("paypal", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitGatewayAPI(cfg paypal.Config) paypal.GatewayAPI {
	apiBase := paypalsdk.APIBaseSandBox
	if cfg.Mode == "live" {
		apiBase = paypalsdk.APIBaseLive
	}
	client, err := paypalsdk.NewClient(cfg.ClientID, cfg.Secret, apiBase)
	if err != nil {
		panic(err)
	}
	return client
}
