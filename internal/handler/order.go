package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/trungvq/bida-pos/internal/queue"
	"github.com/trungvq/bida-pos/internal/service"
)

// OrderHandler exposes bill composition: editing line sets, counter
// sales and the paid-order history.
type OrderHandler struct {
	Orders      *service.OrderService
	Rdb         *redis.Client
	CachePrefix string
}

func NewOrderHandler(orders *service.OrderService, rdb *redis.Client, cachePrefix string) *OrderHandler {
	if orders == nil {
		panic("nil service passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders, Rdb: rdb, CachePrefix: cachePrefix}
}

type orderReq struct {
	CustomerName string              `json:"customer_name"`
	PhoneNumber  string              `json:"phone_number"`
	Items        []service.LineInput `json:"items"`
}

// Get returns one order with its lines and booking.
func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	return respond(c, http.StatusOK, h.Orders.GetOrder(ctx, id))
}

// ReplaceItems swaps the order's whole line set. Used while a table is
// playing and, after payment, as the correction flow.
func (h *OrderHandler) ReplaceItems(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	var req orderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	res := h.Orders.ReplaceOrderItems(ctx, id, req.CustomerName, req.PhoneNumber, req.Items)
	if res.Success {
		flushCache(h.Rdb, h.CachePrefix)
	}
	return respond(c, http.StatusOK, res)
}

// CreateDirect rings up a counter sale, paid on the spot, and
// publishes its receipt event.
func (h *OrderHandler) CreateDirect(c echo.Context) error {
	var req orderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	res := h.Orders.CreateDirectOrder(ctx, req.CustomerName, req.PhoneNumber, req.Items)
	if res.Success {
		flushCache(h.Rdb, h.CachePrefix)
		if res.Data != nil {
			_ = queue.PublishOrderPaid(c.Request().Context(), paidEvent(actorFrom(c), res.Data))
		}
	}
	return respond(c, http.StatusCreated, res)
}

// ListPaid returns one page of finalized orders, newest first.
// Query parameters: page (0-based, default 0) and page_size.
func (h *OrderHandler) ListPaid(c echo.Context) error {
	page := 0
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid page"})
		}
		page = n
	}
	pageSize := 0
	if raw := c.QueryParam("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid page_size"})
		}
		pageSize = n
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	return respond(c, http.StatusOK, h.Orders.ListPaidOrders(ctx, page, pageSize))
}
