package main

import (
	"encoding/json"
	"fmt"
	"testing"

	"autogas-backend/controllers"
	"autogas-backend/models"
	"autogas-backend/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")
	token := generateTestJWT(customer)
	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusDelivered, "15.50")
	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusDelivered, "4.50")
	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusNew, "100.00")

	t.Run("Статистика профиля", func(t *testing.T) {
		resp, err := app.Test(newJSONRequest("GET", "/api/user/profile", token, nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var response controllers.ProfileResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		require.NotNil(t, response.ProfileView)
		assert.Equal(t, int64(3), response.Stats.TotalOrders)
		assert.Equal(t, int64(2), response.Stats.CompletedOrders)
		assert.True(t, decimal.RequireFromString("20").Equal(response.Stats.TotalSpent))
	})

	tests := []struct {
		name           string
		request        services.ProfileInput
		expectedStatus int
	}{
		{"Успешное обновление", services.ProfileInput{Name: "Новое имя", Email: "new@example.com", Phone: "+998901112233"}, 200},
		{"Неверный email", services.ProfileInput{Name: "Имя", Email: "bad", Phone: "+998901112233"}, 422},
		{"Пустое имя", services.ProfileInput{Email: "new@example.com", Phone: "+998901112233"}, 422},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(newJSONRequest("PUT", "/api/user/profile", token, tt.request))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	t.Run("Последние действия в профиле", func(t *testing.T) {
		resp, err := app.Test(newJSONRequest("GET", "/api/user/profile", token, nil))
		require.NoError(t, err)

		var response controllers.ProfileResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		require.NotEmpty(t, response.RecentActivities)
		assert.Equal(t, services.ActionUpdatedProfile, response.RecentActivities[0].Action)
	})
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")
	token := generateTestJWT(customer)

	tests := []struct {
		name           string
		request        services.PasswordInput
		expectedStatus int
	}{
		{"Неверный текущий пароль", services.PasswordInput{CurrentPassword: "wrong", Password: "newpass123", PasswordConfirmation: "newpass123"}, 422},
		{"Подтверждение не совпадает", services.PasswordInput{CurrentPassword: "password123", Password: "newpass123", PasswordConfirmation: "other"}, 422},
		{"Успешная смена", services.PasswordInput{CurrentPassword: "password123", Password: "newpass123", PasswordConfirmation: "newpass123"}, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(newJSONRequest("PUT", "/api/user/password", token, tt.request))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	resp, err := app.Test(newJSONRequest("POST", "/api/login", "", controllers.LoginRequest{Email: "c@example.com", Password: "newpass123"}))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestDeleteAccount(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")
	token := generateTestJWT(customer)
	product := createTestProduct(db, "Баллон", "10.00", 20, nil)
	db.Create(&models.CartItem{UserID: customer.ID, ProductID: product.ID, Quantity: 1})
	order := createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusDelivered, "10.00")

	resp, err := app.Test(newJSONRequest("DELETE", "/api/user/account", token, controllers.DeleteAccountRequest{Password: "wrong"}))
	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode)

	resp, err = app.Test(newJSONRequest("DELETE", "/api/user/account", token, controllers.DeleteAccountRequest{Password: "password123"}))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var users, carts, orders int64
	db.Model(&models.User{}).Where("id = ?", customer.ID).Count(&users)
	db.Model(&models.CartItem{}).Where("user_id = ?", customer.ID).Count(&carts)
	db.Model(&models.Order{}).Where("id = ?", order.ID).Count(&orders)
	assert.Zero(t, users)
	assert.Zero(t, carts)
	assert.Equal(t, int64(1), orders)

	// Токен удаленного пользователя больше не работает
	resp, err = app.Test(newJSONRequest("GET", "/api/user", token, nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestStaffManagement(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	owner := createTestUser(db, "Владелец", "owner@example.com", models.RoleOwner, "")
	samAdmin := createTestUser(db, "Админ Самарканд", "sam@example.com", models.RoleAdmin, "Samarqand")
	tasSeller := createTestUser(db, "Склад Ташкент", "tas-k@example.com", models.RoleKontragent, "Toshkent")

	newStaff := func(email, region string) services.StaffInput {
		return services.StaffInput{
			Name:              "Сотрудник",
			Email:             email,
			Phone:             "+998901112233",
			Password:          "secret123",
			Region:            region,
			WarehouseAddress:  "Склад 1",
			WarehouseCapacity: 500,
		}
	}

	tests := []struct {
		name           string
		method         string
		path           string
		user           models.User
		body           interface{}
		expectedStatus int
	}{
		{"Владелец создает администратора", "POST", "/api/owner/admins", owner, newStaff("admin2@example.com", "Buxoro"), 201},
		{"Администратор не может создать администратора", "POST", "/api/owner/admins", samAdmin, newStaff("admin3@example.com", "Buxoro"), 403},
		{"Администратор создает контрагента в своем регионе", "POST", "/api/admin/kontragents", samAdmin, newStaff("k1@example.com", "Samarqand"), 201},
		{"Администратор не может создать контрагента в чужом регионе", "POST", "/api/admin/kontragents", samAdmin, newStaff("k2@example.com", "Toshkent"), 403},
		{"Занятый email", "POST", "/api/admin/kontragents", owner, newStaff("k1@example.com", "Samarqand"), 422},
		{"Без региона", "POST", "/api/admin/kontragents", owner, newStaff("k3@example.com", ""), 422},
		{"Администратор не может отключить чужого контрагента", "PUT", fmt.Sprintf("/api/admin/kontragents/%d/toggle", tasSeller.ID), samAdmin, nil, 403},
		{"Владелец отключает контрагента", "PUT", fmt.Sprintf("/api/admin/kontragents/%d/toggle", tasSeller.ID), owner, nil, 200},
		{"Владелец меняет баланс контрагента", "PUT", fmt.Sprintf("/api/admin/kontragents/%d", tasSeller.ID), owner, map[string]string{"balance": "150.75"}, 200},
		{"Список администраторов", "GET", "/api/owner/admins", owner, nil, 200},
		{"Удаление администратора", "DELETE", fmt.Sprintf("/api/owner/admins/%d", samAdmin.ID), owner, nil, 200},
		{"Удаление несуществующего администратора", "DELETE", fmt.Sprintf("/api/owner/admins/%d", samAdmin.ID), owner, nil, 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(newJSONRequest(tt.method, tt.path, generateTestJWT(tt.user), tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	var seller models.User
	require.NoError(t, db.First(&seller, tasSeller.ID).Error)
	assert.False(t, seller.IsActive)
	assert.True(t, decimal.RequireFromString("150.75").Equal(seller.Balance))

	var created models.User
	require.NoError(t, db.Where("email = ?", "k1@example.com").First(&created).Error)
	require.NotNil(t, created.ManagedBy)
	assert.Equal(t, samAdmin.ID, *created.ManagedBy)
	assert.Equal(t, 500, created.WarehouseCapacity)
}

func TestActivities(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	owner := createTestUser(db, "Владелец", "owner@example.com", models.RoleOwner, "")
	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")

	for _, creds := range []controllers.LoginRequest{
		{Email: "c@example.com", Password: "password123"},
		{Email: "owner@example.com", Password: "password123"},
	} {
		resp, err := app.Test(newJSONRequest("POST", "/api/login", "", creds))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
	}

	tests := []struct {
		name          string
		query         string
		expectedTotal int64
	}{
		{"Все записи", "", 2},
		{"Фильтр по действию", "?action=logged_in", 2},
		{"Фильтр по пользователю", fmt.Sprintf("?user_id=%d", customer.ID), 1},
		{"Нет совпадений", "?action=created_order", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(newJSONRequest("GET", "/api/owner/activities"+tt.query, generateTestJWT(owner), nil))
			require.NoError(t, err)
			require.Equal(t, 200, resp.StatusCode)

			var response controllers.ActivitiesResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
			assert.Equal(t, tt.expectedTotal, response.Pagination.Total)
		})
	}
}
