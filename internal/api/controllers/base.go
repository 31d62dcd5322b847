package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"losadmin/internal/backend"
)

// Mapping translates a record to and from the payload a resource is served
// as. Fields maps payload keys to record keys for partial updates; an empty
// target drops the key.
type Mapping[T, W any] struct {
	ToWire   func(T) W
	FromWire func(W) T
	Fields   map[string]string
}

// Identity serves records as they are.
func Identity[T any]() Mapping[T, T] {
	return Mapping[T, T]{
		ToWire:   func(t T) T { return t },
		FromWire: func(w T) T { return w },
	}
}

// BaseController provides generic CRUD operations over a backend collection
type BaseController[T, W any] struct {
	store   backend.Collection[T]
	mapping Mapping[T, W]
}

// NewBaseController creates a controller serving records unchanged
func NewBaseController[T any](store backend.Collection[T]) *BaseController[T, T] {
	return &BaseController[T, T]{store: store, mapping: Identity[T]()}
}

// NewMappedController creates a controller serving records through mapping
func NewMappedController[T, W any](store backend.Collection[T], mapping Mapping[T, W]) *BaseController[T, W] {
	return &BaseController[T, W]{store: store, mapping: mapping}
}

// listParams reads the filters the console sends
func listParams(ctx echo.Context) backend.ListParams {
	return backend.ListParams{
		Search:   ctx.QueryParam("search"),
		TenantID: ctx.QueryParam("tenant"),
		RoleID:   ctx.QueryParam("role"),
		Status:   ctx.QueryParam("status"),
	}
}

// List handles retrieval of multiple entities
func (c *BaseController[T, W]) List(ctx echo.Context) error {
	rows, err := c.store.List(ctx.Request().Context(), listParams(ctx))
	if err != nil {
		return err
	}

	out := make([]W, len(rows))
	for i, row := range rows {
		out[i] = c.mapping.ToWire(row)
	}
	return ctx.JSON(http.StatusOK, out)
}

// Get handles retrieval of a single entity
func (c *BaseController[T, W]) Get(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}
	row, err := c.store.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.mapping.ToWire(row))
}

// Create handles creation of new entities
func (c *BaseController[T, W]) Create(ctx echo.Context) error {
	var body W
	if err := ctx.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body "+err.Error())
	}

	entity := c.mapping.FromWire(body)
	if err := ctx.Validate(&entity); err != nil {
		return err
	}

	created, err := c.store.Create(ctx.Request().Context(), entity)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c.mapping.ToWire(created))
}

// Update handles partial updates. The patched record must still validate.
func (c *BaseController[T, W]) Update(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	var body map[string]interface{}
	if err := json.NewDecoder(ctx.Request().Body).Decode(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body "+err.Error())
	}
	patch := c.translate(body)

	current, err := c.store.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	merged, err := merge(current, patch)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := ctx.Validate(&merged); err != nil {
		return err
	}

	updated, err := c.store.Update(ctx.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c.mapping.ToWire(updated))
}

// Delete handles deletion of an entity
func (c *BaseController[T, W]) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	if err := c.store.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// RegisterRoutes registers CRUD routes for the controller. Items live at
// <path><id>/ to match the trailing-slash paths the console calls.
func (c *BaseController[T, W]) RegisterRoutes(g *echo.Group, path string, methods ...string) {
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}
	}
	for _, m := range methods {
		switch m {
		case http.MethodGet:
			g.GET(path, c.List)
			g.GET(path+":id/", c.Get)
		case http.MethodPost:
			g.POST(path, c.Create)
		case http.MethodPatch:
			g.PATCH(path+":id/", c.Update)
			g.PUT(path+":id/", c.Update)
		case http.MethodDelete:
			g.DELETE(path+":id/", c.Delete)
		}
	}
}

func (c *BaseController[T, W]) translate(body map[string]interface{}) backend.Patch {
	patch := make(backend.Patch, len(body))
	for k, v := range body {
		if to, ok := c.mapping.Fields[k]; ok {
			if to == "" {
				continue
			}
			k = to
		}
		patch[k] = v
	}
	return patch
}

// merge applies patch to a copy of row through its JSON form.
func merge[T any](row T, patch backend.Patch) (T, error) {
	base, err := json.Marshal(row)
	if err != nil {
		return row, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return row, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return row, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return row, err
	}
	return out, nil
}
