package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/trungvq/bida-pos/internal/service"
)

// TableHandler exposes the availability dashboard and the admin table
// management endpoints.
type TableHandler struct {
	Tables      *service.TableService
	Rdb         *redis.Client
	CachePrefix string
}

func NewTableHandler(tables *service.TableService, rdb *redis.Client, cachePrefix string) *TableHandler {
	if tables == nil {
		panic("nil service passed to NewTableHandler")
	}
	return &TableHandler{Tables: tables, Rdb: rdb, CachePrefix: cachePrefix}
}

type tableReq struct {
	Name        string  `json:"name"`
	HourlyRate  int64   `json:"hourly_rate"`
	Description *string `json:"description"`
}

// List returns every table with its availability and, for occupied
// tables, the open booking with the running bill. This is the
// dashboard the front desk polls.
func (h *TableHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	return respond(c, http.StatusOK, h.Tables.TablesWithAvailability(ctx))
}

// Get returns one table with the same shape as the listing.
func (h *TableHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	return respond(c, http.StatusOK, h.Tables.GetTable(ctx, id))
}

// Create adds a table (admin only).
func (h *TableHandler) Create(c echo.Context) error {
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	res := h.Tables.CreateTable(ctx, actorFrom(c), req.Name, req.HourlyRate, req.Description)
	if res.Success {
		flushCache(h.Rdb, h.CachePrefix)
	}
	return respond(c, http.StatusCreated, res)
}

// Update renames a table or changes its rate (admin only). Open
// bookings keep the rate they snapshotted.
func (h *TableHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	res := h.Tables.UpdateTable(ctx, actorFrom(c), id, req.Name, req.HourlyRate, req.Description)
	if res.Success {
		flushCache(h.Rdb, h.CachePrefix)
	}
	return respond(c, http.StatusOK, res)
}

// Delete removes an unused table (admin only).
func (h *TableHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	res := h.Tables.DeleteTable(ctx, actorFrom(c), id)
	if res.Success {
		flushCache(h.Rdb, h.CachePrefix)
	}
	return respond(c, http.StatusOK, res)
}
