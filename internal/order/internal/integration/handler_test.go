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

//go:build e2e

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecodeclub/ekit/iox"
	"github.com/ecodeclub/emall/internal/order"
	"github.com/ecodeclub/emall/internal/order/internal/errs"
	"github.com/ecodeclub/emall/internal/order/internal/web"
	"github.com/ecodeclub/emall/internal/product"
	"github.com/ecodeclub/emall/internal/test"
	testioc "github.com/ecodeclub/emall/internal/test/ioc"
	"github.com/ecodeclub/emall/internal/user"
	"github.com/ecodeclub/ginx/session"
	"github.com/ego-component/egorm"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/server/egin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testUID       = 234
	testAddressID = 1
)

// fakeUserService 只校验地址ID, 任意uid都拥有地址1
type fakeUserService struct {
	user.UserService
}

func (f *fakeUserService) FindAddress(_ context.Context, id, uid int64) (user.Address, error) {
	if id != testAddressID {
		return user.Address{}, user.ErrAddressNotFound
	}
	return user.Address{
		ID:         id,
		UID:        uid,
		FirstName:  "三",
		LastName:   "张",
		Street:     "人民路1号",
		City:       "上海",
		PostalCode: "200000",
		Country:    "CN",
	}, nil
}

type HandlerTestSuite struct {
	suite.Suite
	server     *egin.Component
	admin      *egin.Component
	db         *egorm.Component
	productSvc product.Service
	orderSvc   order.Service
}

func (s *HandlerTestSuite) SetupSuite() {
	s.db = testioc.InitDB()

	productModule, err := product.InitModule(s.db)
	require.NoError(s.T(), err)
	s.productSvc = productModule.Svc

	orderModule, err := order.InitModule(s.db, testioc.InitCache(), productModule.Svc, &fakeUserService{})
	require.NoError(s.T(), err)
	s.orderSvc = orderModule.Svc

	econf.Set("server", map[string]any{"contextTimeout": "1s"})
	server := egin.Load("server").Build()
	server.Use(func(ctx *gin.Context) {
		ctx.Set("_session", session.NewMemorySession(session.Claims{
			Uid: testUID,
		}))
	})
	orderModule.Hdl.PrivateRoutes(server.Engine)
	orderModule.RestHdl.PrivateRoutes(server.Engine)
	s.server = server

	admin := egin.Load("server").Build()
	orderModule.AdminHdl.PrivateRoutes(admin.Engine)
	s.admin = admin
}

func (s *HandlerTestSuite) TearDownSuite() {
	for _, table := range []string{"orders", "order_items", "products"} {
		err := s.db.Exec(fmt.Sprintf("DROP TABLE `%s`", table)).Error
		require.NoError(s.T(), err)
	}
}

func (s *HandlerTestSuite) TearDownTest() {
	for _, table := range []string{"orders", "order_items", "products"} {
		err := s.db.Exec(fmt.Sprintf("TRUNCATE TABLE `%s`", table)).Error
		require.NoError(s.T(), err)
	}
}

func (s *HandlerTestSuite) createProduct(price, stock int64) int64 {
	s.T().Helper()
	id, err := s.productSvc.Save(context.Background(), product.Product{
		Name:              "机械键盘",
		Desc:              "87键 红轴",
		Price:             price,
		Stock:             stock,
		LowStockThreshold: 1,
		Status:            product.StatusOnShelf,
	})
	require.NoError(s.T(), err)
	return id
}

func (s *HandlerTestSuite) stockOf(productID int64) int64 {
	s.T().Helper()
	p, err := s.productSvc.FindByID(context.Background(), productID)
	require.NoError(s.T(), err)
	return p.Stock
}

func (s *HandlerTestSuite) TestCreateOrder() {
	productID := s.createProduct(1000, 5)

	req, err := http.NewRequest(http.MethodPost,
		"/order/create", iox.NewJSONReader(web.CreateOrderReq{
			RequestID: "requestID01",
			AddressID: testAddressID,
			Items:     []web.CheckoutItem{{ProductID: productID, Quantity: 3}},
		}))
	require.NoError(s.T(), err)
	req.Header.Set("content-type", "application/json")
	recorder := test.NewJSONResponseRecorder[web.CreateOrderResp]()
	s.server.ServeHTTP(recorder, req)
	require.Equal(s.T(), 200, recorder.Code)

	resp := recorder.MustScan()
	assert.NotZero(s.T(), resp.Data.Order.SN)
	assert.Equal(s.T(), int64(3000), resp.Data.Order.Subtotal)
	assert.Equal(s.T(), int64(599), resp.Data.Order.Shipping)
	assert.Equal(s.T(), int64(3599), resp.Data.Order.Total)
	assert.Equal(s.T(), order.StatusPending.ToUint8(), resp.Data.Order.Status)
	assert.Equal(s.T(), []web.OrderItem{
		{ProductID: productID, Name: "机械键盘", Price: 1000, Quantity: 3},
	}, resp.Data.Order.Items)
	assert.Equal(s.T(), int64(2), s.stockOf(productID))
}

func (s *HandlerTestSuite) TestCreateOrderFreeShipping() {
	productID := s.createProduct(2500, 5)

	o, err := s.orderSvc.CreateOrder(context.Background(), testUID, testAddressID,
		[]order.CheckoutItem{{ProductID: productID, Quantity: 2}})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(5000), o.Subtotal)
	assert.Equal(s.T(), int64(0), o.Shipping)
	assert.Equal(s.T(), int64(5000), o.Total)
}

func (s *HandlerTestSuite) TestCreateOrderFailed() {
	productID := s.createProduct(1000, 5)

	testCases := []struct {
		name     string
		req      web.CreateOrderReq
		wantCode int
		wantResp test.Result[any]
	}{
		{
			name: "商品不存在",
			req: web.CreateOrderReq{
				RequestID: "requestID02",
				AddressID: testAddressID,
				Items:     []web.CheckoutItem{{ProductID: 99999, Quantity: 1}},
			},
			wantCode: 200,
			wantResp: test.Result[any]{
				Code: errs.InvalidOrderInfo.Code,
				Msg:  fmt.Sprintf("订单信息非法: 商品不存在或已下架, 商品ID=%d", 99999),
			},
		},
		{
			name: "商品数量非法",
			req: web.CreateOrderReq{
				RequestID: "requestID03",
				AddressID: testAddressID,
				Items:     []web.CheckoutItem{{ProductID: productID, Quantity: 0}},
			},
			wantCode: 200,
			wantResp: test.Result[any]{
				Code: errs.InvalidOrderInfo.Code,
				Msg:  fmt.Sprintf("订单信息非法: 商品数量非法, 商品ID=%d", productID),
			},
		},
		{
			name: "商品库存不足",
			req: web.CreateOrderReq{
				RequestID: "requestID04",
				AddressID: testAddressID,
				Items:     []web.CheckoutItem{{ProductID: productID, Quantity: 6}},
			},
			wantCode: 200,
			wantResp: test.Result[any]{
				Code: errs.InsufficientStock.Code,
				Msg:  "商品库存不足: 机械键盘",
			},
		},
		{
			// 多商品时先整体校验存在性, 第一个商品库存不够也轮不到它报错
			name: "多商品时缺商品优先于缺库存",
			req: web.CreateOrderReq{
				RequestID: "requestID08",
				AddressID: testAddressID,
				Items: []web.CheckoutItem{
					{ProductID: productID, Quantity: 6},
					{ProductID: 99999, Quantity: 1},
				},
			},
			wantCode: 200,
			wantResp: test.Result[any]{
				Code: errs.InvalidOrderInfo.Code,
				Msg:  fmt.Sprintf("订单信息非法: 商品不存在或已下架, 商品ID=%d", 99999),
			},
		},
		{
			name: "收货地址不存在",
			req: web.CreateOrderReq{
				RequestID: "requestID05",
				AddressID: 888,
				Items:     []web.CheckoutItem{{ProductID: productID, Quantity: 1}},
			},
			wantCode: 200,
			wantResp: test.Result[any]{
				Code: errs.InvalidOrderInfo.Code,
				Msg:  "订单信息非法: 收货地址不存在",
			},
		},
		{
			name: "订单中没有商品",
			req: web.CreateOrderReq{
				RequestID: "requestID06",
				AddressID: testAddressID,
				Items:     []web.CheckoutItem{},
			},
			wantCode: 200,
			wantResp: test.Result[any]{
				Code: errs.InvalidOrderInfo.Code,
				Msg:  "订单信息非法: 订单中没有商品",
			},
		},
	}
	for _, tc := range testCases {
		s.T().Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost,
				"/order/create", iox.NewJSONReader(tc.req))
			require.NoError(t, err)
			req.Header.Set("content-type", "application/json")
			recorder := test.NewJSONResponseRecorder[any]()
			s.server.ServeHTTP(recorder, req)
			require.Equal(t, tc.wantCode, recorder.Code)
			assert.Equal(t, tc.wantResp, recorder.MustScan())
			// 失败的订单不应该扣库存
			assert.Equal(t, int64(5), s.stockOf(productID))
		})
	}
}

func (s *HandlerTestSuite) TestCreateOrderDuplicateRequestID() {
	productID := s.createProduct(1000, 5)

	newReq := func() *http.Request {
		req, err := http.NewRequest(http.MethodPost,
			"/order/create", iox.NewJSONReader(web.CreateOrderReq{
				RequestID: "requestID07",
				AddressID: testAddressID,
				Items:     []web.CheckoutItem{{ProductID: productID, Quantity: 1}},
			}))
		require.NoError(s.T(), err)
		req.Header.Set("content-type", "application/json")
		return req
	}

	recorder := test.NewJSONResponseRecorder[web.CreateOrderResp]()
	s.server.ServeHTTP(recorder, newReq())
	require.Equal(s.T(), 200, recorder.Code)

	// 同一请求ID重复提交, 只有第一次生效
	recorder2 := test.NewJSONResponseRecorder[any]()
	s.server.ServeHTTP(recorder2, newReq())
	require.Equal(s.T(), 500, recorder2.Code)
	assert.Equal(s.T(), errs.SystemError.Code, recorder2.MustScan().Code)
	assert.Equal(s.T(), int64(4), s.stockOf(productID))
}

func (s *HandlerTestSuite) TestCancelOrder() {
	productID := s.createProduct(1000, 5)
	o, err := s.orderSvc.CreateOrder(context.Background(), testUID, testAddressID,
		[]order.CheckoutItem{{ProductID: productID, Quantity: 3}})
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(2), s.stockOf(productID))

	newCancelReq := func() *http.Request {
		req, err := http.NewRequest(http.MethodPost,
			"/order/cancel", iox.NewJSONReader(web.CancelOrderReq{SN: o.SN}))
		require.NoError(s.T(), err)
		req.Header.Set("content-type", "application/json")
		return req
	}

	recorder := test.NewJSONResponseRecorder[any]()
	s.server.ServeHTTP(recorder, newCancelReq())
	require.Equal(s.T(), 200, recorder.Code)
	assert.Equal(s.T(), "OK", recorder.MustScan().Msg)
	// 取消后还库存
	assert.Equal(s.T(), int64(5), s.stockOf(productID))

	// 已取消的订单不能再次取消, 库存也不能还第二次
	recorder2 := test.NewJSONResponseRecorder[any]()
	s.server.ServeHTTP(recorder2, newCancelReq())
	require.Equal(s.T(), 200, recorder2.Code)
	assert.Equal(s.T(), errs.CannotCancel.Code, recorder2.MustScan().Code)
	assert.Equal(s.T(), int64(5), s.stockOf(productID))

	detail, err := s.orderSvc.FindByID(context.Background(), o.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), order.StatusCancelled, detail.Status)
}

func (s *HandlerTestSuite) TestListAndDetail() {
	productID := s.createProduct(1000, 10)
	first, err := s.orderSvc.CreateOrder(context.Background(), testUID, testAddressID,
		[]order.CheckoutItem{{ProductID: productID, Quantity: 1}})
	require.NoError(s.T(), err)
	_, err = s.orderSvc.CreateOrder(context.Background(), testUID, testAddressID,
		[]order.CheckoutItem{{ProductID: productID, Quantity: 2}})
	require.NoError(s.T(), err)
	// 其他用户的订单不应该出现在列表里
	_, err = s.orderSvc.CreateOrder(context.Background(), 919, testAddressID,
		[]order.CheckoutItem{{ProductID: productID, Quantity: 1}})
	require.NoError(s.T(), err)

	req, err := http.NewRequest(http.MethodPost,
		"/order/list", iox.NewJSONReader(web.ListOrdersReq{Offset: 0, Limit: 10}))
	require.NoError(s.T(), err)
	req.Header.Set("content-type", "application/json")
	recorder := test.NewJSONResponseRecorder[web.ListOrdersResp]()
	s.server.ServeHTTP(recorder, req)
	require.Equal(s.T(), 200, recorder.Code)
	resp := recorder.MustScan()
	assert.Equal(s.T(), int64(2), resp.Data.Total)
	assert.Len(s.T(), resp.Data.Orders, 2)

	req, err = http.NewRequest(http.MethodPost,
		"/order/detail", iox.NewJSONReader(web.RetrieveOrderDetailReq{SN: first.SN}))
	require.NoError(s.T(), err)
	req.Header.Set("content-type", "application/json")
	detailRecorder := test.NewJSONResponseRecorder[web.RetrieveOrderDetailResp]()
	s.server.ServeHTTP(detailRecorder, req)
	require.Equal(s.T(), 200, detailRecorder.Code)
	detail := detailRecorder.MustScan()
	assert.Equal(s.T(), first.SN, detail.Data.Order.SN)
	assert.Len(s.T(), detail.Data.Order.Items, 1)

	// 查别人的订单序列号等价于订单不存在
	req, err = http.NewRequest(http.MethodPost,
		"/order/detail", iox.NewJSONReader(web.RetrieveOrderDetailReq{SN: "EM-NotExistSN"}))
	require.NoError(s.T(), err)
	req.Header.Set("content-type", "application/json")
	notFoundRecorder := test.NewJSONResponseRecorder[any]()
	s.server.ServeHTTP(notFoundRecorder, req)
	require.Equal(s.T(), 200, notFoundRecorder.Code)
	assert.Equal(s.T(), errs.OrderNotFound.Code, notFoundRecorder.MustScan().Code)
}

func (s *HandlerTestSuite) restJSON(server *egin.Component, method, path string, body any) (int, map[string]any) {
	s.T().Helper()
	req, err := http.NewRequest(method, path, iox.NewJSONReader(body))
	require.NoError(s.T(), err)
	req.Header.Set("content-type", "application/json")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	var resp map[string]any
	if recorder.Body.Len() > 0 {
		require.NoError(s.T(), json.Unmarshal(recorder.Body.Bytes(), &resp))
	}
	return recorder.Code, resp
}

func (s *HandlerTestSuite) TestRestCreateAndCancel() {
	productID := s.createProduct(1000, 5)

	code, resp := s.restJSON(s.server, http.MethodPost, "/orders", map[string]any{
		"addressId": testAddressID,
		"items":     []map[string]any{{"productId": productID, "quantity": 3}},
	})
	require.Equal(s.T(), http.StatusCreated, code)
	assert.Equal(s.T(), float64(3599), resp["total"])
	orderID := int64(resp["id"].(float64))
	require.Equal(s.T(), int64(2), s.stockOf(productID))

	code, resp = s.restJSON(s.server, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", orderID), nil)
	require.Equal(s.T(), http.StatusOK, code)
	assert.Equal(s.T(), float64(order.StatusCancelled.ToUint8()), resp["status"])
	assert.Equal(s.T(), int64(5), s.stockOf(productID))

	// 重复取消
	code, resp = s.restJSON(s.server, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", orderID), nil)
	assert.Equal(s.T(), http.StatusBadRequest, code)
	assert.NotZero(s.T(), resp["error"])

	// 订单不存在
	code, _ = s.restJSON(s.server, http.MethodPost, "/orders/99999/cancel", nil)
	assert.Equal(s.T(), http.StatusNotFound, code)

	// 订单ID非法
	code, _ = s.restJSON(s.server, http.MethodPost, "/orders/abc/cancel", nil)
	assert.Equal(s.T(), http.StatusBadRequest, code)
}

func (s *HandlerTestSuite) TestRestCancelNotOwner() {
	productID := s.createProduct(1000, 5)
	o, err := s.orderSvc.CreateOrder(context.Background(), 919, testAddressID,
		[]order.CheckoutItem{{ProductID: productID, Quantity: 1}})
	require.NoError(s.T(), err)

	code, resp := s.restJSON(s.server, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", o.ID), nil)
	assert.Equal(s.T(), http.StatusForbidden, code)
	assert.NotZero(s.T(), resp["error"])
	assert.Equal(s.T(), int64(4), s.stockOf(productID))
}

func (s *HandlerTestSuite) TestAdminUpdateStatus() {
	productID := s.createProduct(1000, 5)
	o, err := s.orderSvc.CreateOrder(context.Background(), testUID, testAddressID,
		[]order.CheckoutItem{{ProductID: productID, Quantity: 3}})
	require.NoError(s.T(), err)
	statusPath := fmt.Sprintf("/orders/%d/status", o.ID)

	// 待支付 -> 已支付
	code, resp := s.restJSON(s.admin, http.MethodPut, statusPath,
		web.UpdateOrderStatusReq{Status: order.StatusPaid.ToUint8()})
	require.Equal(s.T(), http.StatusOK, code)
	assert.Equal(s.T(), float64(order.StatusPaid.ToUint8()), resp["status"])

	// 后台可以跨状态推进: 已支付 -> 已送达
	code, resp = s.restJSON(s.admin, http.MethodPut, statusPath,
		web.UpdateOrderStatusReq{Status: order.StatusDelivered.ToUint8()})
	require.Equal(s.T(), http.StatusOK, code)
	assert.Equal(s.T(), float64(order.StatusDelivered.ToUint8()), resp["status"])

	// 已送达是终态, 用户不能再取消
	code, _ = s.restJSON(s.server, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", o.ID), nil)
	assert.Equal(s.T(), http.StatusBadRequest, code)
	assert.Equal(s.T(), int64(2), s.stockOf(productID))

	// 同状态更新是幂等的
	code, _ = s.restJSON(s.admin, http.MethodPut, statusPath,
		web.UpdateOrderStatusReq{Status: order.StatusDelivered.ToUint8()})
	assert.Equal(s.T(), http.StatusOK, code)

	// 非法状态值
	code, _ = s.restJSON(s.admin, http.MethodPut, statusPath,
		web.UpdateOrderStatusReq{Status: 9})
	assert.Equal(s.T(), http.StatusBadRequest, code)

	// 订单不存在
	code, _ = s.restJSON(s.admin, http.MethodPut, "/orders/99999/status",
		web.UpdateOrderStatusReq{Status: order.StatusPaid.ToUint8()})
	assert.Equal(s.T(), http.StatusNotFound, code)
}

func (s *HandlerTestSuite) TestAdminRestockExactlyOnce() {
	productID := s.createProduct(1000, 5)
	o, err := s.orderSvc.CreateOrder(context.Background(), testUID, testAddressID,
		[]order.CheckoutItem{{ProductID: productID, Quantity: 3}})
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(2), s.stockOf(productID))
	statusPath := fmt.Sprintf("/orders/%d/status", o.ID)

	// 取消时还库存
	code, _ := s.restJSON(s.admin, http.MethodPut, statusPath,
		web.UpdateOrderStatusReq{Status: order.StatusCancelled.ToUint8()})
	require.Equal(s.T(), http.StatusOK, code)
	assert.Equal(s.T(), int64(5), s.stockOf(productID))

	// 已取消 -> 已退款, 不能再还第二次
	code, _ = s.restJSON(s.admin, http.MethodPut, statusPath,
		web.UpdateOrderStatusReq{Status: order.StatusRefunded.ToUint8()})
	require.Equal(s.T(), http.StatusOK, code)
	assert.Equal(s.T(), int64(5), s.stockOf(productID))
}

func (s *HandlerTestSuite) TestAdminListAndDetail() {
	productID := s.createProduct(1000, 10)
	first, err := s.orderSvc.CreateOrder(context.Background(), testUID, testAddressID,
		[]order.CheckoutItem{{ProductID: productID, Quantity: 1}})
	require.NoError(s.T(), err)
	_, err = s.orderSvc.CreateOrder(context.Background(), 919, testAddressID,
		[]order.CheckoutItem{{ProductID: productID, Quantity: 2}})
	require.NoError(s.T(), err)

	req, err := http.NewRequest(http.MethodPost,
		"/order/list", iox.NewJSONReader(web.ListOrdersReq{Offset: 0, Limit: 10}))
	require.NoError(s.T(), err)
	req.Header.Set("content-type", "application/json")
	recorder := test.NewJSONResponseRecorder[web.ListOrdersResp]()
	s.admin.ServeHTTP(recorder, req)
	require.Equal(s.T(), 200, recorder.Code)
	resp := recorder.MustScan()
	// 后台能看到所有用户的订单
	assert.Equal(s.T(), int64(2), resp.Data.Total)
	assert.Len(s.T(), resp.Data.Orders, 2)

	req, err = http.NewRequest(http.MethodPost,
		"/order/detail", iox.NewJSONReader(web.RetrieveOrderDetailReq{SN: first.SN}))
	require.NoError(s.T(), err)
	req.Header.Set("content-type", "application/json")
	detailRecorder := test.NewJSONResponseRecorder[web.RetrieveOrderDetailResp]()
	s.admin.ServeHTTP(detailRecorder, req)
	require.Equal(s.T(), 200, detailRecorder.Code)
	assert.Equal(s.T(), first.SN, detailRecorder.MustScan().Data.Order.SN)
}

func (s *HandlerTestSuite) TestMarkPaidByPayPalOrderID() {
	productID := s.createProduct(1000, 5)
	o, err := s.orderSvc.CreateOrder(context.Background(), testUID, testAddressID,
		[]order.CheckoutItem{{ProductID: productID, Quantity: 1}})
	require.NoError(s.T(), err)

	err = s.orderSvc.UpdatePayPalOrderID(context.Background(), o.ID, "PP-TEST-001")
	require.NoError(s.T(), err)

	paid, err := s.orderSvc.MarkPaidByPayPalOrderID(context.Background(), "PP-TEST-001")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), order.StatusPaid, paid.Status)

	// 重复确认是幂等的
	paid, err = s.orderSvc.MarkPaidByPayPalOrderID(context.Background(), "PP-TEST-001")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), order.StatusPaid, paid.Status)
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
