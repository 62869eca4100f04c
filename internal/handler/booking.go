package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/trungvq/bida-pos/internal/queue"
	"github.com/trungvq/bida-pos/internal/service"
)

// BookingHandler drives the table lifecycle: opening a play session
// and checking its bill out.
type BookingHandler struct {
	Bookings    *service.BookingService
	Rdb         *redis.Client
	CachePrefix string
}

func NewBookingHandler(bookings *service.BookingService, rdb *redis.Client, cachePrefix string) *BookingHandler {
	if bookings == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Rdb: rdb, CachePrefix: cachePrefix}
}

type createBookingReq struct {
	TableID uint64 `json:"table_id"`
}

// Create opens a booking on a free table, together with its empty
// order, and returns the now-occupied table.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil || req.TableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	res := h.Bookings.CreateBooking(ctx, req.TableID)
	if res.Success {
		flushCache(h.Rdb, h.CachePrefix)
	}
	return respond(c, http.StatusCreated, res)
}

// Checkout finalizes the order's bill: closes the booking, freezes the
// time charge and marks the order paid. On success the frozen invoice
// comes back, the availability cache is flushed and an order.paid
// event goes out for the receipt log. A publish failure never fails
// the request; the payment already committed.
func (h *BookingHandler) Checkout(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	res := h.Bookings.Checkout(ctx, id)
	if res.Success {
		flushCache(h.Rdb, h.CachePrefix)
		if res.Data != nil {
			_ = queue.PublishOrderPaid(c.Request().Context(), paidEvent(actorFrom(c), res.Data))
		}
	}
	return respond(c, http.StatusOK, res)
}
