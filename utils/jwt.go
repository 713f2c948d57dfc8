package utils

import (
	"context"
	"strings"
	"time"

	"autogas-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultJWTSecret ключ подписи по умолчанию
const DefaultJWTSecret = "autogas-secret-key-change-in-production"

var (
	jwtSecret = DefaultJWTSecret
	tokenTTL  = 24 * time.Hour
)

// Claims представляет структуру JWT токена
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RevocationChecker проверяет, отозван ли токен
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SetupJWT задает ключ подписи и срок жизни токена
func SetupJWT(secret string, ttl time.Duration) {
	if secret != "" {
		jwtSecret = secret
	}
	if ttl > 0 {
		tokenTTL = ttl
	}
}

// GenerateJWT создает JWT токен для пользователя
func GenerateJWT(userID uint, email, role string) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ValidateJWT проверяет и парсит JWT токен
func ValidateJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем метод подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	}, jwt.WithLeeway(5*time.Minute))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenMalformed
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(401).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// AuthMiddleware проверяет bearer токен и загружает пользователя
func AuthMiddleware(db *gorm.DB, revoked RevocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Получаем токен из заголовка Authorization
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Требуется авторизация")
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return unauthorized(c, "Неверный формат заголовка авторизации")
		}

		claims, err := ValidateJWT(tokenParts[1])
		if err != nil {
			return unauthorized(c, "Недействительный токен")
		}

		// Токен мог быть отозван при выходе
		if revoked != nil && claims.ID != "" {
			isRevoked, err := revoked.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				return c.Status(500).JSON(fiber.Map{
					"success": false,
					"message": "Ошибка проверки токена",
				})
			}
			if isRevoked {
				return unauthorized(c, "Токен отозван")
			}
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
			return unauthorized(c, "Пользователь не найден")
		}

		if !user.IsActive {
			return c.Status(403).JSON(fiber.Map{
				"success": false,
				"message": "Аккаунт заблокирован",
			})
		}

		// Сохраняем информацию о пользователе в контексте
		c.Locals("user_id", user.ID)
		c.Locals("user_email", user.Email)
		c.Locals("user_role", user.Role)
		c.Locals("user", &user)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// CurrentUser возвращает пользователя, загруженного AuthMiddleware
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// CurrentClaims возвращает claims текущего токена
func CurrentClaims(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals("claims").(*Claims)
	return claims
}
