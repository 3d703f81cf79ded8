package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-shop-api/internal/config"
	"github.com/iliyamo/online-shop-api/internal/handler"
	"github.com/iliyamo/online-shop-api/internal/repository"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{AccessSecret: "a", RefreshSecret: "r", AccessTTLMin: 15, RefreshTTLDays: 30, BcryptCost: 4}
	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	tokens := repository.NewTokenRepo(db)
	products := repository.NewProductRepo(db)
	orders := repository.NewOrderRepo(db)

	e := echo.New()
	RegisterRoutes(e, Deps{
		Cfg:     cfg,
		Users:   users,
		Roles:   roles,
		Auth:    handler.NewAuthHandler(cfg, users, tokens),
		User:    handler.NewUserHandler(cfg, users, roles),
		Product: handler.NewProductHandler(products),
		Order:   handler.NewOrderHandler(orders, products),
	})
	return e
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	e := newTestServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/nothing/here", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "can't find this route /v1/nothing/here")
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	e := newTestServer(t)
	for _, target := range []struct {
		method, path string
	}{
		{http.MethodGet, "/v1/user"},
		{http.MethodGet, "/v1/product"},
		{http.MethodPost, "/v1/order"},
		{http.MethodGet, "/v1/order/1"},
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(target.method, target.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", target.method, target.path)
		assert.Contains(t, rec.Body.String(), "please login first")
	}
}
