package main

import (
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"autogas-backend/models"
	"autogas-backend/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type overviewResponse struct {
	Success bool                   `json:"success"`
	Stats   services.OverviewStats `json:"stats"`
}

func TestDashboardRevenue(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	owner := createTestUser(db, "Владелец", "owner@example.com", models.RoleOwner, "")
	samAdmin := createTestUser(db, "Админ Самарканд", "sam@example.com", models.RoleAdmin, "Samarqand")
	createTestUser(db, "Админ Ташкент", "tas@example.com", models.RoleAdmin, "Toshkent")
	seller := createTestUser(db, "Склад Самарканд", "k@example.com", models.RoleKontragent, "Samarqand")
	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")

	createTestProduct(db, "Баллон", "10.00", 5, &seller.ID)
	createTestProduct(db, "Шланг", "2.00", 50, nil)

	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusNew, "100.00")
	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusProcessing, "10.00")
	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusDelivered, "15.50")
	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusCancelled, "200.00")
	createTestOrder(db, customer.ID, "Toshkent", models.OrderStatusShipped, "7.25")

	tests := []struct {
		name            string
		user            models.User
		path            string
		expectedOrders  int64
		expectedSales   string
		expectedPending int64
		unscoped        bool
	}{
		{"Владелец видит все регионы", owner, "/api/owner/dashboard", 5, "32.75", 1, true},
		{"Владелец через панель админа", owner, "/api/admin/dashboard", 5, "32.75", 1, true},
		{"Админ видит только Самарканд", samAdmin, "/api/admin/dashboard", 4, "25.50", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(newJSONRequest("GET", tt.path, generateTestJWT(tt.user), nil))
			require.NoError(t, err)
			require.Equal(t, 200, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			var response overviewResponse
			require.NoError(t, json.Unmarshal(body, &response))
			assert.Equal(t, tt.expectedOrders, response.Stats.TotalOrders)
			assert.True(t, decimal.RequireFromString(tt.expectedSales).Equal(response.Stats.TotalSales),
				"ожидалось %s, получено %s", tt.expectedSales, response.Stats.TotalSales)
			assert.Equal(t, tt.expectedPending, response.Stats.PendingOrders)

			// Набор полей одинаков для владельца и администратора региона
			var raw struct {
				Stats map[string]json.RawMessage `json:"stats"`
			}
			require.NoError(t, json.Unmarshal(body, &raw))
			for _, key := range []string{"total_admins", "active_admins", "total_customers", "total_kontragents", "active_kontragents"} {
				assert.Contains(t, raw.Stats, key)
			}

			if tt.unscoped {
				assert.Equal(t, int64(2), response.Stats.TotalAdmins)
				assert.Equal(t, int64(2), response.Stats.ActiveAdmins)
				assert.Equal(t, int64(1), response.Stats.TotalCustomers)
				assert.Equal(t, int64(2), response.Stats.TotalProducts)
			} else {
				assert.Equal(t, int64(1), response.Stats.TotalAdmins)
				assert.Equal(t, int64(1), response.Stats.ActiveAdmins)
				assert.Zero(t, response.Stats.TotalCustomers)
				assert.Equal(t, int64(1), response.Stats.TotalKontragents)
				assert.Equal(t, int64(1), response.Stats.TotalProducts)
			}
		})
	}

	t.Run("Сводка контрагента", func(t *testing.T) {
		resp, err := app.Test(newJSONRequest("GET", "/api/kontragent/dashboard", generateTestJWT(seller), nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var response struct {
			Stats services.KontragentStats `json:"stats"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		assert.Equal(t, int64(4), response.Stats.TotalOrders)
		assert.True(t, decimal.RequireFromString("25.50").Equal(response.Stats.TotalSales))
		assert.Equal(t, int64(1), response.Stats.MyProducts)
		assert.Equal(t, int64(2), response.Stats.TotalProducts)
		assert.Equal(t, "k@example.com", response.Stats.UserInfo.Email)
	})
}

func TestKontragentRoster(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	owner := createTestUser(db, "Владелец", "owner@example.com", models.RoleOwner, "")
	samAdmin := createTestUser(db, "Админ Самарканд", "sam@example.com", models.RoleAdmin, "Samarqand")
	samSeller := createTestUser(db, "Склад Самарканд", "sam-k@example.com", models.RoleKontragent, "Samarqand")
	tasSeller := createTestUser(db, "Склад Ташкент", "tas-k@example.com", models.RoleKontragent, "Toshkent")
	customer := createTestUser(db, "Покупатель", "c@example.com", models.RoleCustomer, "")

	createTestOrder(db, customer.ID, "Samarqand", models.OrderStatusDelivered, "12.00")
	createTestOrder(db, customer.ID, "Toshkent", models.OrderStatusDelivered, "99.00")

	t.Run("Админ видит только контрагентов своего региона", func(t *testing.T) {
		resp, err := app.Test(newJSONRequest("GET", "/api/admin/kontragents", generateTestJWT(samAdmin), nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var response struct {
			Kontragents []services.KontragentSummary `json:"kontragents"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		require.Len(t, response.Kontragents, 1)
		assert.Equal(t, samSeller.ID, response.Kontragents[0].ID)
		assert.True(t, decimal.RequireFromString("12").Equal(response.Kontragents[0].TotalSales))
	})

	t.Run("Владелец видит всех", func(t *testing.T) {
		resp, err := app.Test(newJSONRequest("GET", "/api/owner/kontragents", generateTestJWT(owner), nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var response struct {
			Kontragents []services.KontragentSummary `json:"kontragents"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		assert.Len(t, response.Kontragents, 2)
	})

	t.Run("Админ не видит продажи чужого региона", func(t *testing.T) {
		path := fmt.Sprintf("/api/admin/kontragents/%d/sales", tasSeller.ID)
		resp, err := app.Test(newJSONRequest("GET", path, generateTestJWT(samAdmin), nil))
		require.NoError(t, err)
		assert.Equal(t, 403, resp.StatusCode)
	})

	t.Run("Продажи контрагента для владельца", func(t *testing.T) {
		path := fmt.Sprintf("/api/owner/kontragents/%d/sales", tasSeller.ID)
		resp, err := app.Test(newJSONRequest("GET", path, generateTestJWT(owner), nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var response struct {
			Report services.KontragentSalesReport `json:"report"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		assert.Equal(t, int64(1), response.Report.TotalOrders)
		assert.True(t, decimal.RequireFromString("99").Equal(response.Report.TotalSales))
	})

	t.Run("Заказы региона для контрагента", func(t *testing.T) {
		resp, err := app.Test(newJSONRequest("GET", "/api/kontragent/sales", generateTestJWT(samSeller), nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var response struct {
			Orders []models.Order `json:"orders"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		require.Len(t, response.Orders, 1)
		assert.Equal(t, "Samarqand", response.Orders[0].Region)
	})
}
