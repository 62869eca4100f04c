package service

import (
	"context"
	"errors"
	"strings"

	"github.com/trungvq/bida-pos/internal/model"
	"github.com/trungvq/bida-pos/internal/repository"
)

// ItemService manages the sellable catalog. Mutations are admin only.
// Price edits never rewrite history: order lines carry their own
// snapshots.
type ItemService struct {
	Items ItemStore
}

// NewItemService constructs an ItemService. The store must be non-nil.
func NewItemService(items ItemStore) *ItemService {
	if items == nil {
		panic("nil store passed to NewItemService")
	}
	return &ItemService{Items: items}
}

// ListItems returns the whole catalog.
func (s *ItemService) ListItems(ctx context.Context) Result[[]model.Item] {
	items, err := s.Items.ListAll(ctx)
	if err != nil {
		return internalErr[[]model.Item]("list items", err)
	}
	return ok("items listed", &items)
}

// CreateItem adds a catalog entry. Duplicate names conflict.
func (s *ItemService) CreateItem(ctx context.Context, actor Actor, name, category string, price int64) Result[model.Item] {
	if !actor.IsAdmin {
		return fail[model.Item](KindUnauthorized, "administrator role required")
	}
	name = strings.TrimSpace(name)
	if name == "" || price <= 0 {
		return fail[model.Item](KindInvalid, "name and a positive price are required")
	}
	if !model.ValidCategory(category) {
		return fail[model.Item](KindInvalid, "category must be FOOD, DRINK or OTHER")
	}
	if _, err := s.Items.FindByName(ctx, name); err == nil {
		return fail[model.Item](KindConflict, "item already exists")
	} else if !errors.Is(err, repository.ErrItemNotFound) {
		return internalErr[model.Item]("create item: check name", err)
	}
	it := model.Item{Name: name, Category: category, Price: price}
	if err := s.Items.Create(ctx, &it); err != nil {
		if errors.Is(err, repository.ErrNameTaken) {
			return fail[model.Item](KindConflict, "item already exists")
		}
		return internalErr[model.Item]("create item", err)
	}
	return ok("item created", &it)
}

// UpdateItem edits a catalog entry's name, category and price.
func (s *ItemService) UpdateItem(ctx context.Context, actor Actor, id uint64, name, category string, price int64) Result[model.Item] {
	if !actor.IsAdmin {
		return fail[model.Item](KindUnauthorized, "administrator role required")
	}
	name = strings.TrimSpace(name)
	if name == "" || price <= 0 {
		return fail[model.Item](KindInvalid, "name and a positive price are required")
	}
	if !model.ValidCategory(category) {
		return fail[model.Item](KindInvalid, "category must be FOOD, DRINK or OTHER")
	}
	existing, err := s.Items.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return fail[model.Item](KindNotFound, "item not found")
		}
		return internalErr[model.Item]("update item: find", err)
	}
	if existing.Name != name {
		if _, err := s.Items.FindByName(ctx, name); err == nil {
			return fail[model.Item](KindConflict, "item already exists")
		} else if !errors.Is(err, repository.ErrItemNotFound) {
			return internalErr[model.Item]("update item: check name", err)
		}
	}
	updated := model.Item{ID: id, Name: name, Category: category, Price: price}
	if err := s.Items.Update(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrNameTaken):
			return fail[model.Item](KindConflict, "item already exists")
		case errors.Is(err, repository.ErrItemNotFound):
			return fail[model.Item](KindNotFound, "item not found")
		}
		return internalErr[model.Item]("update item", err)
	}
	return ok("item updated", &updated)
}

// DeleteItem removes a catalog entry. Historical order lines keep
// their snapshots.
func (s *ItemService) DeleteItem(ctx context.Context, actor Actor, id uint64) Result[model.Item] {
	if !actor.IsAdmin {
		return fail[model.Item](KindUnauthorized, "administrator role required")
	}
	if err := s.Items.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return fail[model.Item](KindNotFound, "item not found")
		}
		return internalErr[model.Item]("delete item", err)
	}
	return Result[model.Item]{Success: true, Message: "item deleted"}
}
