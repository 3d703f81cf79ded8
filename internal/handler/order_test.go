package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-shop-api/internal/middleware"
	"github.com/iliyamo/online-shop-api/internal/repository"
)

func newOrderHandler(t *testing.T) (*OrderHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderHandler(repository.NewOrderRepo(db), repository.NewProductRepo(db)), mock
}

// orderCtx builds a request context carrying the identity and cached role
// names that Protect and AllowTo would have set.
func orderCtx(t *testing.T, method, target, body string, userID uint64, roles []string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserIDKey, userID)
	c.Set(middleware.CtxRolesKey, roles)
	return c, rec
}

func TestPlaceOrderComputesTotal(t *testing.T) {
	h, mock := newOrderHandler(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders (user_id) VALUES (?)")).
		WithArgs(uint64(2)).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, created_at FROM orders WHERE id=?")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}).AddRow(10, 2, created))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price FROM products WHERE id=? LIMIT 1")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(1, "keyboard", 100.0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_products (order_id, product_id, quantity) VALUES (?,?,?)")).
		WithArgs(uint64(10), uint64(1), uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price FROM products WHERE id=? LIMIT 1")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(3, "mouse", 50.0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_products (order_id, product_id, quantity) VALUES (?,?,?)")).
		WithArgs(uint64(10), uint64(3), uint32(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := orderCtx(t, http.MethodPost, "/v1/order",
		`{"products":[{"productId":1,"quantity":2},{"productId":3,"quantity":1}]}`,
		2, []string{"Customer"})
	require.NoError(t, h.Place(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		OrderID    uint64  `json:"orderId"`
		UserID     uint64  `json:"userId"`
		TotalPrice float64 `json:"totalPrice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(10), resp.OrderID)
	assert.Equal(t, uint64(2), resp.UserID)
	assert.Equal(t, 250.0, resp.TotalPrice)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderUnknownProductRollsBack(t *testing.T) {
	h, mock := newOrderHandler(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders (user_id) VALUES (?)")).
		WithArgs(uint64(2)).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, created_at FROM orders WHERE id=?")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}).AddRow(11, 2, created))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price FROM products WHERE id=? LIMIT 1")).
		WithArgs(uint64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}))
	mock.ExpectRollback()

	c, rec := orderCtx(t, http.MethodPost, "/v1/order",
		`{"products":[{"productId":77,"quantity":1}]}`, 2, []string{"Customer"})
	require.NoError(t, h.Place(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "product with ID 77 does not exist")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderEmptyBody(t *testing.T) {
	h, _ := newOrderHandler(t)

	c, rec := orderCtx(t, http.MethodPost, "/v1/order", `{"products":[]}`, 2, []string{"Customer"})
	require.NoError(t, h.Place(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderCustomerForeignOrder(t *testing.T) {
	h, mock := newOrderHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM orders WHERE id=? AND user_id=? LIMIT 1")).
		WithArgs(uint64(10), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	c, rec := orderCtx(t, http.MethodGet, "/v1/order/10", "", 3, []string{"Customer"})
	c.SetParamNames("id")
	c.SetParamValues("10")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not allowed to view orders that are not yours")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderAdminSkipsOwnershipCheck(t *testing.T) {
	h, mock := newOrderHandler(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, created_at FROM orders WHERE id=? LIMIT 1")).
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}).AddRow(10, 2, created))
	mock.ExpectQuery("SELECT op.product_id, p.name, p.price, op.quantity").
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "price", "quantity"}).
			AddRow(1, "keyboard", 100.0, 2))

	c, rec := orderCtx(t, http.MethodGet, "/v1/order/10", "", 1, []string{"Admin"})
	c.SetParamNames("id")
	c.SetParamValues("10")
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OrderID    uint64  `json:"orderId"`
		TotalPrice float64 `json:"totalPrice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(10), resp.OrderID)
	assert.Equal(t, 200.0, resp.TotalPrice)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersEmpty(t *testing.T) {
	h, mock := newOrderHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, created_at FROM orders ORDER BY created_at ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}))

	c, rec := orderCtx(t, http.MethodGet, "/v1/order", "", 1, []string{"Admin"})
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no orders found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrder(t *testing.T) {
	h, mock := newOrderHandler(t)
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, created_at FROM orders WHERE id=? LIMIT 1")).
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}).AddRow(10, 2, created))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM order_products WHERE order_id=?")).
		WithArgs(uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM orders WHERE id=?")).
		WithArgs(uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := orderCtx(t, http.MethodDelete, "/v1/order/10", "", 1, []string{"Admin"})
	c.SetParamNames("id")
	c.SetParamValues("10")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "order with ID 10 has been deleted successfully")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderCustomerForeignOrder(t *testing.T) {
	h, mock := newOrderHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM orders WHERE id=? AND user_id=? LIMIT 1")).
		WithArgs(uint64(10), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	c, rec := orderCtx(t, http.MethodDelete, "/v1/order/10", "", 3, []string{"Customer"})
	c.SetParamNames("id")
	c.SetParamValues("10")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not allowed to delete orders that are not yours")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderNotFound(t *testing.T) {
	h, mock := newOrderHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, created_at FROM orders WHERE id=? LIMIT 1")).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}))

	c, rec := orderCtx(t, http.MethodDelete, "/v1/order/99", "", 1, []string{"Admin"})
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "order with ID 99 does not exist")
	require.NoError(t, mock.ExpectationsWereMet())
}
