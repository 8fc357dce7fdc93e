package middleware

import (
	"context"
	"slices"
	"strings"
	"turnover/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type AuthContextKey string

const (
	UserKey      AuthContextKey = "user"
	UserKeyFiber string         = "User"
)

// RequireAuth validates the bearer token and loads the active user it names.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.UserContext()).Function("RequireAuth")

		tokenParts := strings.Split(c.Get(fiber.HeaderAuthorization), " ")
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "bearer") || tokenParts[1] == "" {
			log.Info("missing or malformed authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		tokenInfo, err := m.auth.ValidateToken(c.UserContext(), tokenParts[1])
		if err != nil {
			log.Info("token validation failed", "error", err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		user, err := m.userRepo.GetByID(c.UserContext(), m.DB.SQL, tokenInfo.UserID)
		if err != nil || !user.IsActive {
			log.Info("user not found or inactive", "userID", tokenInfo.UserID)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		c.Locals(UserKeyFiber, user)
		c.SetUserContext(context.WithValue(c.UserContext(), UserKey, user))

		log.Debug("user authenticated", "userID", user.ID, "role", user.Role)
		return c.Next()
	}
}

// RequireRole admits the listed roles. Admins always pass.
func (m *Middleware) RequireRole(roles ...models.Role) fiber.Handler {
	log := m.log.Function("RequireRole")

	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if user.Role != models.RoleAdmin && !slices.Contains(roles, user.Role) {
			log.Info("role not permitted", "userID", user.ID, "role", user.Role, "allowed", roles)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient role",
			})
		}

		return c.Next()
	}
}

func GetUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(UserKeyFiber).(*models.User)
	if !ok {
		return nil
	}
	return user
}
