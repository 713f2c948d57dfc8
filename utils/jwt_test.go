package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"autogas-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTGenerationAndValidation(t *testing.T) {
	token, err := GenerateJWT(1, "test@example.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)

	// Каждый токен получает собственный jti
	other, err := GenerateJWT(1, "test@example.com", models.RoleAdmin)
	require.NoError(t, err)
	otherClaims, err := ValidateJWT(other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)
}

func TestJWTRejected(t *testing.T) {
	sign := func(secret string, method jwt.SigningMethod, exp time.Time) string {
		token := jwt.NewWithClaims(method, jwt.MapClaims{
			"user_id": 1,
			"email":   "test@example.com",
			"role":    models.RoleOwner,
			"exp":     exp.Unix(),
		})
		s, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
	}{
		{"Чужой ключ", sign("another-secret", jwt.SigningMethodHS256, time.Now().Add(time.Hour))},
		{"Истекший токен", sign(DefaultJWTSecret, jwt.SigningMethodHS256, time.Now().Add(-time.Hour))},
		{"Мусор", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateJWT(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, CheckPasswordHash("password123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestRequireRoles(t *testing.T) {
	app := fiber.New()
	withUser := func(user *models.User) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if user != nil {
				c.Locals("user", user)
			}
			return c.Next()
		}
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(200) }

	app.Get("/anonymous", withUser(nil), RequireRoles(models.RoleOwner), ok)
	app.Get("/customer", withUser(&models.User{Role: models.RoleCustomer}), RequireRoles(models.RoleOwner, models.RoleAdmin), ok)
	app.Get("/admin", withUser(&models.User{Role: models.RoleAdmin}), RequireRoles(models.RoleOwner, models.RoleAdmin), ok)

	tests := []struct {
		path           string
		expectedStatus int
	}{
		{"/anonymous", 401},
		{"/customer", 403},
		{"/admin", 200},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
