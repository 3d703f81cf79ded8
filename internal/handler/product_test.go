package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-shop-api/internal/repository"
)

func newProductHandler(t *testing.T) (*ProductHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProductHandler(repository.NewProductRepo(db)), mock
}

func productReqCtx(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
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
	return e.NewContext(req, rec), rec
}

func TestCreateProduct(t *testing.T) {
	h, mock := newProductHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products (name, price) VALUES (?,?)")).
		WithArgs("keyboard", 100.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := productReqCtx(t, http.MethodPost, "/v1/product", `{"name":"keyboard","price":100}`)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":1`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductValidation(t *testing.T) {
	h, _ := newProductHandler(t)

	c, rec := productReqCtx(t, http.MethodPost, "/v1/product", `{"name":"keyboard"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = productReqCtx(t, http.MethodPost, "/v1/product", `{"name":"keyboard","price":-1}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProductNotFound(t *testing.T) {
	h, mock := newProductHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price FROM products WHERE id=? LIMIT 1")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}))

	c, rec := productReqCtx(t, http.MethodGet, "/v1/product/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.GetByID(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "product with ID 5 not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdateSkipsUnknownIDs(t *testing.T) {
	h, mock := newProductHandler(t)

	// First update hits an existing row.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET name=?, price=? WHERE id=?")).
		WithArgs("keyboard pro", 120.0, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price FROM products WHERE id=? LIMIT 1")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).
			AddRow(1, "keyboard pro", 120.0))
	// Second update targets an unknown id and is skipped.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET name=? WHERE id=?")).
		WithArgs("ghost", uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price FROM products WHERE id=? LIMIT 1")).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}))

	c, rec := productReqCtx(t, http.MethodPut, "/v1/product/products",
		`[{"id":1,"name":"keyboard pro","price":120},{"id":99,"name":"ghost"}]`)
	require.NoError(t, h.BulkUpdate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated []struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Len(t, updated, 1)
	assert.Equal(t, uint64(1), updated[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdateValidation(t *testing.T) {
	h, _ := newProductHandler(t)

	c, rec := productReqCtx(t, http.MethodPut, "/v1/product/products", `[]`)
	require.NoError(t, h.BulkUpdate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "updates must be a non-empty array")

	c, rec = productReqCtx(t, http.MethodPut, "/v1/product/products", `[{"name":"no-id"}]`)
	require.NoError(t, h.BulkUpdate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "each update must include a product ID")
}

func TestBulkUpdateAllUnknown(t *testing.T) {
	h, mock := newProductHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET name=? WHERE id=?")).
		WithArgs("ghost", uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price FROM products WHERE id=? LIMIT 1")).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}))

	c, rec := productReqCtx(t, http.MethodPut, "/v1/product/products", `[{"id":99,"name":"ghost"}]`)
	require.NoError(t, h.BulkUpdate(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no products were updated")
	require.NoError(t, mock.ExpectationsWereMet())
}
