package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop-api/internal/model"
	"github.com/iliyamo/online-shop-api/internal/repository"
)

// ProductHandler implements the product directory. Reads are open to both
// roles, writes are admin-only; the router wires the gates.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(p *repository.ProductRepo) *ProductHandler {
	if p == nil {
		panic("nil repository passed to NewProductHandler")
	}
	return &ProductHandler{Products: p}
}

type productReq struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

// productUpdate is one entry of the bulk update payload.
type productUpdate struct {
	ID    uint64   `json:"id"`
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

type productResp struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func toProductResp(p model.Product) productResp {
	return productResp{ID: p.ID, Name: p.Name, Price: p.Price}
}

// Create inserts a new product.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Price == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/price required"})
	}
	if *req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	p, err := h.Products.Create(c.Request().Context(), req.Name, *req.Price)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}
	return c.JSON(http.StatusCreated, toProductResp(p))
}

// GetByID returns one product.
func (h *ProductHandler) GetByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	p, err := h.Products.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": fmt.Sprintf("product with ID %d not found", id)})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProductResp(p))
}

// List returns all products.
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.Products.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]productResp, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResp(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Update changes name and/or price of one product.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Price != nil && *req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	p, err := h.Products.Update(c.Request().Context(), id, req.Name, req.Price)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "failed to update product or product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}
	return c.JSON(http.StatusOK, toProductResp(p))
}

// BulkUpdate applies a list of product updates. Entries whose id does not
// exist are silently skipped; the response carries only the products that
// were actually updated. Zero applied updates is a 404.
func (h *ProductHandler) BulkUpdate(c echo.Context) error {
	var updates []productUpdate
	if err := c.Bind(&updates); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "updates must be a non-empty array"})
	}
	for _, u := range updates {
		if u.ID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each update must include a product ID"})
		}
	}

	ctx := c.Request().Context()
	updated := make([]productResp, 0, len(updates))
	for _, u := range updates {
		p, err := h.Products.Update(ctx, u.ID, u.Name, u.Price)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				continue // unknown ids are skipped, not reported
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update products"})
		}
		updated = append(updated, toProductResp(p))
	}
	if len(updated) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "failed to update products: no products were updated"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes one product.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	if err := h.Products.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "failed to delete product or product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}
