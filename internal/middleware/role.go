package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop-api/internal/repository"
)

// AllowTo returns the authorization gate. It must run after Protect: the
// caller's identity is read from the context, their role names are resolved
// through the user_roles join table and the request proceeds only when at
// least one resolved role is in the required set. The resolved names are
// cached on the context under CtxRolesKey so handlers that need role
// information again (e.g. the customer-owns-order check) do not repeat the
// lookup within the same request.
func AllowTo(roles *repository.RoleRepo, required ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(required))
	for _, r := range required {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(uint64)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "please login first"})
			}

			names, ok := c.Get(CtxRolesKey).([]string)
			if !ok {
				var err error
				names, err = roles.RolesOf(c.Request().Context(), userID)
				if err != nil {
					if errors.Is(err, repository.ErrNoRolesAssigned) {
						return c.JSON(http.StatusForbidden, echo.Map{"error": "user roles not found"})
					}
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
				}
				c.Set(CtxRolesKey, names)
			}

			for _, name := range names {
				if allowed[name] {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not allowed"})
		}
	}
}

// HasRole reports whether the role names cached on the context by AllowTo
// contain the given role.
func HasRole(c echo.Context, role string) bool {
	names, ok := c.Get(CtxRolesKey).([]string)
	if !ok {
		return false
	}
	for _, name := range names {
		if name == role {
			return true
		}
	}
	return false
}
