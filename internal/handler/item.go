package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/trungvq/bida-pos/internal/service"
)

// ItemHandler exposes the menu catalog: listing for every operator,
// mutations for admins.
type ItemHandler struct {
	Items       *service.ItemService
	Rdb         *redis.Client
	CachePrefix string
}

func NewItemHandler(items *service.ItemService, rdb *redis.Client, cachePrefix string) *ItemHandler {
	if items == nil {
		panic("nil service passed to NewItemHandler")
	}
	return &ItemHandler{Items: items, Rdb: rdb, CachePrefix: cachePrefix}
}

type itemReq struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
}

// List returns the whole catalog.
func (h *ItemHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	return respond(c, http.StatusOK, h.Items.ListItems(ctx))
}

// Create adds a catalog entry (admin only).
func (h *ItemHandler) Create(c echo.Context) error {
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	res := h.Items.CreateItem(ctx, actorFrom(c), req.Name, req.Category, req.Price)
	if res.Success {
		flushCache(h.Rdb, h.CachePrefix)
	}
	return respond(c, http.StatusCreated, res)
}

// Update edits a catalog entry (admin only). Past order lines keep
// their snapshots.
func (h *ItemHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	res := h.Items.UpdateItem(ctx, actorFrom(c), id, req.Name, req.Category, req.Price)
	if res.Success {
		flushCache(h.Rdb, h.CachePrefix)
	}
	return respond(c, http.StatusOK, res)
}

// Delete removes a catalog entry (admin only).
func (h *ItemHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	res := h.Items.DeleteItem(ctx, actorFrom(c), id)
	if res.Success {
		flushCache(h.Rdb, h.CachePrefix)
	}
	return respond(c, http.StatusOK, res)
}
