package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"autogas-backend/controllers"
	"autogas-backend/models"
	"autogas-backend/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func placeOrderRequest(items ...services.OrderItemInput) services.PlaceOrderInput {
	return services.PlaceOrderInput{
		CustomerName:  "Алишер",
		CustomerPhone: "+998901234567",
		Address:       "ул. Регистан, 5",
		Region:        "Samarqand",
		Items:         items,
	}
}

func TestPlaceOrder(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")
	token := generateTestJWT(customer)
	p1 := createTestProduct(db, "Баллон 50л", "10.00", 20, nil)
	p2 := createTestProduct(db, "Редуктор", "5.50", 20, nil)

	db.Create(&models.CartItem{UserID: customer.ID, ProductID: p1.ID, Quantity: 3})

	t.Run("Успешное оформление", func(t *testing.T) {
		req := placeOrderRequest(
			services.OrderItemInput{ProductID: p1.ID, Quantity: 2, Price: decimal.RequireFromString("10.00")},
			services.OrderItemInput{ProductID: p2.ID, Quantity: 1, Price: decimal.RequireFromString("5.50")},
		)

		resp, err := app.Test(newJSONRequest("POST", "/api/orders", token, req))
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)

		var response controllers.OrderResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		require.NotNil(t, response.Order)
		assert.True(t, decimal.RequireFromString("25.50").Equal(response.Order.TotalPrice))
		assert.Equal(t, models.OrderStatusNew, response.Order.Status)
		assert.Len(t, response.Order.Items, 2)

		var cartCount int64
		db.Model(&models.CartItem{}).Where("user_id = ?", customer.ID).Count(&cartCount)
		assert.Equal(t, int64(0), cartCount)
	})

	tests := []struct {
		name          string
		request       services.PlaceOrderInput
		expectedField string
	}{
		{
			name:          "Пустой список позиций",
			request:       placeOrderRequest(),
			expectedField: "items",
		},
		{
			name: "Нулевое количество",
			request: placeOrderRequest(
				services.OrderItemInput{ProductID: p1.ID, Quantity: 1, Price: decimal.RequireFromString("10")},
				services.OrderItemInput{ProductID: p2.ID, Quantity: 0, Price: decimal.RequireFromString("5.50")},
			),
			expectedField: "items[1].quantity",
		},
		{
			name: "Несуществующий товар",
			request: placeOrderRequest(
				services.OrderItemInput{ProductID: 9999, Quantity: 1, Price: decimal.RequireFromString("10")},
			),
			expectedField: "items[0].product_id",
		},
		{
			name: "Отрицательная цена",
			request: placeOrderRequest(
				services.OrderItemInput{ProductID: p1.ID, Quantity: 1, Price: decimal.RequireFromString("-1")},
			),
			expectedField: "items[0].price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before int64
			db.Model(&models.Order{}).Count(&before)

			resp, err := app.Test(newJSONRequest("POST", "/api/orders", token, tt.request))
			require.NoError(t, err)
			assert.Equal(t, 422, resp.StatusCode)

			var response controllers.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
			assert.Contains(t, response.Errors, tt.expectedField)

			var after int64
			db.Model(&models.Order{}).Count(&after)
			assert.Equal(t, before, after)
		})
	}

	t.Run("Без авторизации", func(t *testing.T) {
		resp, err := app.Test(newJSONRequest("POST", "/api/orders", "", placeOrderRequest()))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})
}

func TestGetOrder(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	owner := createTestUser(db, "Владелец заказа", "a@example.com", models.RoleCustomer, "")
	stranger := createTestUser(db, "Чужой", "b@example.com", models.RoleCustomer, "")
	admin := createTestUser(db, "Админ", "admin@example.com", models.RoleAdmin, "")
	order := createTestOrder(db, owner.ID, "Samarqand", models.OrderStatusNew, "10.00")

	tests := []struct {
		name           string
		user           models.User
		path           string
		expectedStatus int
	}{
		{"Владелец заказа", owner, fmt.Sprintf("/api/orders/%d", order.ID), 200},
		{"Чужой покупатель", stranger, fmt.Sprintf("/api/orders/%d", order.ID), 403},
		{"Администратор", admin, fmt.Sprintf("/api/orders/%d", order.ID), 200},
		{"Несуществующий заказ", owner, "/api/orders/9999", 404},
		{"Неверный ID", owner, "/api/orders/abc", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(newJSONRequest("GET", tt.path, generateTestJWT(tt.user), nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestCancelOrder(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")
	stranger := createTestUser(db, "Чужой", "s@example.com", models.RoleCustomer, "")
	order := createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusNew, "10.00")
	delivered := createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusDelivered, "10.00")
	path := fmt.Sprintf("/api/orders/%d/cancel", order.ID)

	resp, err := app.Test(newJSONRequest("POST", path, generateTestJWT(stranger), nil))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)

	var forbidden controllers.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&forbidden))
	assert.Equal(t, []string{models.RoleCustomer}, forbidden.RequiredRoles)
	assert.Equal(t, models.RoleCustomer, forbidden.YourRole)
	assert.NotEmpty(t, forbidden.Message)

	resp, err = app.Test(newJSONRequest("POST", path, generateTestJWT(customer), nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	// Повторная отмена отклоняется
	resp, err = app.Test(newJSONRequest("POST", path, generateTestJWT(customer), nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	resp, err = app.Test(newJSONRequest("POST", fmt.Sprintf("/api/orders/%d/cancel", delivered.ID), generateTestJWT(customer), nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	var stored models.Order
	db.First(&stored, order.ID)
	assert.Equal(t, models.OrderStatusCancelled, stored.Status)
}

func TestUpdateOrderStatus(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	admin := createTestUser(db, "Админ", "admin@example.com", models.RoleAdmin, "")
	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")
	order := createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusNew, "10.00")
	path := fmt.Sprintf("/api/admin/orders/%d/status", order.ID)

	tests := []struct {
		name           string
		user           models.User
		status         string
		expectedStatus int
	}{
		{"Покупатель не может менять статус", customer, models.OrderStatusProcessing, 403},
		{"Неизвестный статус", admin, "lost", 422},
		{"Администратор переводит в обработку", admin, models.OrderStatusProcessing, 200},
		{"Администратор переводит в доставлен", admin, models.OrderStatusDelivered, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := controllers.UpdateStatusRequest{Status: tt.status}
			resp, err := app.Test(newJSONRequest("PUT", path, generateTestJWT(tt.user), body))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	// После доставки покупатель уже не может отменить
	resp, err := app.Test(newJSONRequest("POST", fmt.Sprintf("/api/orders/%d/cancel", order.ID), generateTestJWT(customer), nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestListOrdersRegionScope(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	owner := createTestUser(db, "Владелец", "owner@example.com", models.RoleOwner, "")
	samAdmin := createTestUser(db, "Админ Самарканд", "sam@example.com", models.RoleAdmin, "Samarqand")
	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")

	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusNew, "10.00")
	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusDelivered, "20.00")
	createTestOrder(db, customer.ID, "Toshkent", models.OrderStatusNew, "30.00")

	tests := []struct {
		name          string
		user          models.User
		query         string
		expectedTotal int64
	}{
		{"Владелец видит все заказы", owner, "", 3},
		{"Админ видит только свой регион", samAdmin, "", 2},
		{"Админ не может запросить чужой регион", samAdmin, "?region=Toshkent", 2},
		{"Фильтр по статусу", owner, "?status=new", 2},
		{"Фильтр по дате", owner, "?start_date=2000-01-01&end_date=2000-01-02", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(newJSONRequest("GET", "/api/admin/orders"+tt.query, generateTestJWT(tt.user), nil))
			require.NoError(t, err)
			require.Equal(t, 200, resp.StatusCode)

			var response controllers.OrdersResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
			assert.Equal(t, tt.expectedTotal, response.Pagination.Total)
			for _, o := range response.Orders {
				if tt.user.Role == models.RoleAdmin {
					assert.Equal(t, "Samarqand", o.Region)
				}
			}
		})
	}

	t.Run("Неверная дата", func(t *testing.T) {
		resp, err := app.Test(newJSONRequest("GET", "/api/admin/orders?start_date=15.01.2024", generateTestJWT(owner), nil))
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
	})
}

func TestMyOrders(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")
	other := createTestUser(db, "Другой", "o@example.com", models.RoleCustomer, "")
	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusNew, "10.00")
	createTestOrder(db, other.ID, "Samarqand", models.OrderStatusNew, "10.00")

	resp, err := app.Test(newJSONRequest("GET", "/api/user/orders", generateTestJWT(customer), nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var response controllers.OrdersResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	assert.Equal(t, int64(1), response.Pagination.Total)
	assert.Equal(t, 10, response.Pagination.PerPage)
	require.Len(t, response.Orders, 1)
	assert.Equal(t, customer.ID, response.Orders[0].UserID)
}

func TestExportOrders(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	admin := createTestUser(db, "Админ Самарканд", "sam@example.com", models.RoleAdmin, "Samarqand")
	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")
	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusNew, "10.00")
	createTestOrder(db, customer.ID, "Toshkent", models.OrderStatusNew, "30.00")

	resp, err := app.Test(newJSONRequest("GET", "/api/admin/orders/export", generateTestJWT(admin), nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Samarqand", rows[1][3])
}
