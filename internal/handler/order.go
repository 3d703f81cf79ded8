package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-shop-api/internal/middleware"
	"github.com/iliyamo/online-shop-api/internal/model"
	"github.com/iliyamo/online-shop-api/internal/queue"
	"github.com/iliyamo/online-shop-api/internal/repository"
	queue_publisher "github.com/iliyamo/online-shop-api/internal/service"
)

// OrderHandler implements the order workflow: placement, detail reads with
// denormalized product information, deletion and the admin listing. All
// methods assume that JWT authentication and role validation have already
// been performed by middleware. Multi-row writes run inside a transaction
// so a failed line item never leaves a partial order behind.
type OrderHandler struct {
	Orders   *repository.OrderRepo
	Products *repository.ProductRepo
}

func NewOrderHandler(o *repository.OrderRepo, p *repository.ProductRepo) *OrderHandler {
	if o == nil || p == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: o, Products: p}
}

// orderLine is one requested line item of a placement.
type orderLine struct {
	ProductID uint64 `json:"productId"`
	Quantity  uint32 `json:"quantity"`
}

type placeOrderReq struct {
	Products []orderLine `json:"products"`
}

type placeOrderResp struct {
	OrderID    uint64      `json:"orderId"`
	UserID     uint64      `json:"userId"`
	Products   []orderLine `json:"products"`
	TotalPrice float64     `json:"totalPrice"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// orderDetailResp is the enriched representation returned by Get and List.
type orderDetailResp struct {
	OrderID    uint64                       `json:"orderId"`
	UserID     uint64                       `json:"userId"`
	CreatedAt  time.Time                    `json:"createdAt"`
	Products   []repository.OrderItemDetail `json:"products"`
	TotalPrice float64                      `json:"totalPrice"`
}

// Place handles POST /v1/order. It inserts the order header and all line
// items in one transaction, accumulating the total price from the product
// rows as it goes. A missing product aborts the whole placement with 404:
// the rollback ensures no header or line item survives. After commit an
// order.placed event is published best-effort.
func (h *OrderHandler) Place(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req placeOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(req.Products) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "products required"})
	}
	for _, line := range req.Products {
		if line.ProductID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each product must include a product ID"})
		}
		if line.Quantity == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
		}
	}

	ctx := c.Request().Context()
	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	order, err := h.Orders.CreateTx(ctx, tx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}

	var total float64
	for _, line := range req.Products {
		p, err := h.Products.GetByIDTx(ctx, tx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{
					"error": fmt.Sprintf("product with ID %d does not exist", line.ProductID),
				})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if err := h.Orders.AddItemTx(ctx, tx, order.ID, line.ProductID, line.Quantity); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add order item"})
		}
		total += p.Price * float64(line.Quantity)
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// Best-effort event; a failed publish never fails the request.
	items := make([]queue.OrderPlacedItem, 0, len(req.Products))
	for _, line := range req.Products {
		items = append(items, queue.OrderPlacedItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	_ = queue_publisher.PublishOrderPlaced(context.Background(), queue.OrderPlacedEvent{
		OrderID:    order.ID,
		UserID:     userID,
		Items:      items,
		TotalPrice: total,
		PlacedAt:   order.CreatedAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, placeOrderResp{
		OrderID:    order.ID,
		UserID:     userID,
		Products:   req.Products,
		TotalPrice: total,
		CreatedAt:  order.CreatedAt,
	})
}

// Get handles GET /v1/order/:id. Admins may read any order; customers only
// their own. The ownership check runs before the fetch and answers 403 for
// foreign and missing orders alike, so a customer cannot probe which order
// ids exist.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx := c.Request().Context()
	if !middleware.HasRole(c, model.RoleAdmin) {
		owned, err := h.Orders.OwnedBy(ctx, orderID, userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if !owned {
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": "you are a customer and are not allowed to view orders that are not yours",
			})
		}
	}

	order, err := h.Orders.GetHeader(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": fmt.Sprintf("order with ID %d does not exist", orderID)})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	detail, err := h.enrich(ctx, order)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, detail)
}

// Delete handles DELETE /v1/order/:id. Admins may delete any order,
// customers only their own, with the same probe-proof 403 as Get. Line
// items and header are removed in one transaction.
func (h *OrderHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx := c.Request().Context()
	if !middleware.HasRole(c, model.RoleAdmin) {
		owned, err := h.Orders.OwnedBy(ctx, orderID, userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if !owned {
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": "you are a customer and are not allowed to delete orders that are not yours",
			})
		}
	}
	if _, err := h.Orders.GetHeader(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": fmt.Sprintf("order with ID %d does not exist", orderID)})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Orders.DeleteTx(ctx, tx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": fmt.Sprintf("order with ID %d does not exist", orderID)})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete order"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("order with ID %d has been deleted successfully", orderID),
	})
}

// List handles GET /v1/order. Headers come back sorted by creation time
// ascending; each order is then enriched with its joined line items. The
// enrichment round-trips are independent, so they are dispatched
// concurrently and reassembled in the original order. An empty store
// answers 404, matching the established API contract.
func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.Orders.ListHeaders(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if len(orders) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no orders found"})
	}

	details := make([]orderDetailResp, len(orders))
	errs := make([]error, len(orders))
	var wg sync.WaitGroup
	for i, order := range orders {
		wg.Add(1)
		go func(i int, order model.Order) {
			defer wg.Done()
			details[i], errs[i] = h.enrich(ctx, order)
		}(i, order)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	return c.JSON(http.StatusOK, details)
}

// enrich joins an order header with its line items and recomputes the total
// price from the current product rows.
func (h *OrderHandler) enrich(ctx context.Context, order model.Order) (orderDetailResp, error) {
	items, err := h.Orders.ItemsByOrder(ctx, order.ID)
	if err != nil {
		return orderDetailResp{}, err
	}
	var total float64
	for _, it := range items {
		total += it.Total
	}
	return orderDetailResp{
		OrderID:    order.ID,
		UserID:     order.UserID,
		CreatedAt:  order.CreatedAt,
		Products:   items,
		TotalPrice: total,
	}, nil
}
