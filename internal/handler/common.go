// Package handler implements the HTTP surface: request binding, the
// capability value from the verified JWT, and rendering of core
// results into JSON responses.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/trungvq/bida-pos/internal/middleware"
	"github.com/trungvq/bida-pos/internal/model"
	"github.com/trungvq/bida-pos/internal/queue"
	"github.com/trungvq/bida-pos/internal/service"
)

// dbTimeout bounds every database round-trip made from a handler.
const dbTimeout = 5 * time.Second

// respond renders a core result. Successful results use okStatus;
// failures map their kind to an HTTP status while the envelope itself
// is the response body.
func respond[T any](c echo.Context, okStatus int, r service.Result[T]) error {
	if r.Success {
		return c.JSON(okStatus, r)
	}
	status := http.StatusInternalServerError
	switch r.Kind {
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindInvalidReference:
		status = http.StatusUnprocessableEntity
	case service.KindInvalid:
		status = http.StatusBadRequest
	case service.KindUnauthorized:
		status = http.StatusForbidden
	}
	return c.JSON(status, r)
}

// actorFrom builds the capability value from the claims JWTAuth stored
// in the context.
func actorFrom(c echo.Context) service.Actor {
	a := service.Actor{}
	if id, ok := c.Get(middleware.CtxUserID).(uint64); ok {
		a.UserID = id
	}
	if name, ok := c.Get(middleware.CtxDisplayName).(string); ok {
		a.DisplayName = name
	}
	if role, ok := c.Get(middleware.CtxRole).(string); ok {
		a.IsAdmin = role == model.RoleAdmin
	}
	return a
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// badID is the uniform reply to a malformed id parameter, shaped like
// a core failure envelope.
func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
}

// flushCache drops the cached read responses after a mutation. A nil
// Redis client disables it.
func flushCache(rdb *redis.Client, prefix string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	middleware.FlushCache(ctx, rdb, prefix)
}

// paidEvent shapes a finalized order into the message published on the
// order.paid queue.
func paidEvent(actor service.Actor, o *model.Order) queue.OrderPaidEvent {
	ev := queue.OrderPaidEvent{
		OrderID:     o.ID,
		CashierID:   actor.UserID,
		CashierName: actor.DisplayName,
		TotalAmount: o.TotalAmount,
	}
	if o.CustomerName != nil {
		ev.CustomerName = *o.CustomerName
	}
	if o.PaidAt != nil {
		ev.PaidAt = o.PaidAt.UTC().Format(time.RFC3339)
	}
	if b := o.Booking; b != nil {
		ev.TableName = b.TableName
		ev.StartTime = b.StartTime.UTC().Format(time.RFC3339)
		if b.EndTime != nil {
			ev.EndTime = b.EndTime.UTC().Format(time.RFC3339)
		}
		ev.TableCharge = b.TotalAmount
	}
	for _, li := range o.OrderItems {
		ev.Lines = append(ev.Lines, queue.OrderPaidLine{Name: li.Name, Quantity: li.Quantity, Total: li.TotalAmount})
	}
	return ev
}
