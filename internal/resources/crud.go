package resources

import (
	"context"

	"losadmin/internal/backend"
	"losadmin/internal/events"
)

// Op names carried by events.Changed.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpAction = "action"
)

// Collection is the list/get/create/update/delete client of one resource.
// Bodies are passed through unvalidated.
type Collection[T any] struct {
	name  string
	store backend.Collection[T]
	id    func(T) string
	bus   *events.EventBus
}

func newCollection[T any](name string, store backend.Collection[T], id func(T) string, bus *events.EventBus) *Collection[T] {
	return &Collection[T]{name: name, store: store, id: id, bus: bus}
}

func (c *Collection[T]) List(ctx context.Context, params backend.ListParams) (Result[[]T], error) {
	rows, err := c.store.List(ctx, params)
	return settle(c.name, "list", rows, err)
}

func (c *Collection[T]) Get(ctx context.Context, id string) (Result[T], error) {
	row, err := c.store.Get(ctx, id)
	return settle(c.name, "get", row, err)
}

func (c *Collection[T]) Create(ctx context.Context, body T) (Result[T], error) {
	row, err := c.store.Create(ctx, body)
	if err == nil {
		c.changed(c.id(row), OpCreate)
	}
	return settle(c.name, "create", row, err)
}

func (c *Collection[T]) Update(ctx context.Context, id string, patch backend.Patch) (Result[T], error) {
	row, err := c.store.Update(ctx, id, patch)
	if err == nil {
		c.changed(id, OpUpdate)
	}
	return settle(c.name, "update", row, err)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (Result[Empty], error) {
	err := c.store.Delete(ctx, id)
	if err == nil {
		c.changed(id, OpDelete)
	}
	return settleErr(c.name, "delete", err)
}

func (c *Collection[T]) changed(id, op string) {
	c.bus.Emit(events.ResourceChanged, events.Changed{Resource: c.name, ID: id, Op: op})
}
