package middleware // middleware provides reusable request gates shared by the routers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop-api/internal/repository"
	"github.com/iliyamo/online-shop-api/internal/utils"
)

// Context keys written by the auth gates. Handlers read the authenticated
// user and the resolved role names back via these keys.
const (
	CtxUserKey   = "user"    // model.User of the caller
	CtxUserIDKey = "user_id" // uint64 id of the caller
	CtxRolesKey  = "roles"   // []string role names, set by AllowTo
)

// Protect returns the authentication gate. It requires an
// "Authorization: Bearer <token>" header carrying a valid access token and
// loads the caller's user record into the request context for downstream
// handlers. The three failure modes answer with distinct messages so
// clients know whether to log in, refresh, or give up:
//
//	missing header  -> 401 "please login first"
//	expired token   -> 401 "token expired, please refresh"
//	anything else   -> 401 "invalid token"
func Protect(accessSecret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please login first"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			userID, err := utils.VerifyToken(accessSecret, raw)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired, please refresh"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "there is no user"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}

			c.Set(CtxUserKey, user)
			c.Set(CtxUserIDKey, user.ID)
			return next(c)
		}
	}
}
