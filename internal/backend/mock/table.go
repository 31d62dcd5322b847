package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"losadmin/internal/backend"
)

// Schema describes how a Table reads and writes its record type.
type Schema[T any] struct {
	// Resource names the table in errors and events.
	Resource string
	// IDPrefix is prepended to generated ids, e.g. "tenant-".
	IDPrefix string
	// ID returns a pointer to the record's identifier field.
	ID func(*T) *string
	// SearchFields returns the text searched by ListParams.Search.
	SearchFields func(*T) []string
	// Match applies the structured filters of ListParams; nil matches everything.
	Match func(*T, backend.ListParams) bool
	// OnCreate fills server-assigned fields of a new row.
	OnCreate func(*T)
}

// Table is one mutable in-memory collection. Mutations are visible to every
// caller sharing the table; reads return copies.
type Table[T any] struct {
	schema Schema[T]
	mu     sync.RWMutex
	rows   []*T
}

func NewTable[T any](schema Schema[T], seed []T) *Table[T] {
	t := &Table[T]{schema: schema}
	for i := range seed {
		row := seed[i]
		t.rows = append(t.rows, &row)
	}
	return t
}

var _ backend.Collection[struct{}] = (*Table[struct{}])(nil)

func (t *Table[T]) List(_ context.Context, params backend.ListParams) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(params.Search))
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if needle != "" && !t.matchesSearch(row, needle) {
			continue
		}
		if t.schema.Match != nil && !t.schema.Match(row, params) {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (t *Table[T]) matchesSearch(row *T, needle string) bool {
	if t.schema.SearchFields == nil {
		return true
	}
	for _, field := range t.schema.SearchFields(row) {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (t *Table[T]) Get(_ context.Context, id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if row := t.find(id); row != nil {
		return *row, nil
	}
	var zero T
	return zero, backend.NotFound(t.schema.Resource, id)
}

// Create stores body under a freshly generated id and returns the stored row.
func (t *Table[T]) Create(_ context.Context, body T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row := body
	id, err := t.newID()
	if err != nil {
		var zero T
		return zero, err
	}
	*t.schema.ID(&row) = id
	if t.schema.OnCreate != nil {
		t.schema.OnCreate(&row)
	}
	t.rows = append(t.rows, &row)
	return row, nil
}

// Update overlays patch onto the stored row. The id field cannot be changed.
func (t *Table[T]) Update(_ context.Context, id string, patch backend.Patch) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	row := t.find(id)
	if row == nil {
		return zero, backend.NotFound(t.schema.Resource, id)
	}
	updated, err := applyPatch(*row, patch)
	if err != nil {
		return zero, backend.NotValid("%s patch: %v", t.schema.Resource, err)
	}
	*t.schema.ID(&updated) = id
	*row = updated
	return updated, nil
}

func (t *Table[T]) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, row := range t.rows {
		if *t.schema.ID(row) == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return nil
		}
	}
	return backend.NotFound(t.schema.Resource, id)
}

// Mutate runs fn on the stored row under the table lock.
func (t *Table[T]) Mutate(id string, fn func(*T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	row := t.find(id)
	if row == nil {
		return zero, backend.NotFound(t.schema.Resource, id)
	}
	if err := fn(row); err != nil {
		return zero, err
	}
	return *row, nil
}

// Snapshot returns a copy of every row in insertion order.
func (t *Table[T]) Snapshot() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, len(t.rows))
	for i, row := range t.rows {
		out[i] = *row
	}
	return out
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *Table[T]) find(id string) *T {
	for _, row := range t.rows {
		if *t.schema.ID(row) == id {
			return row
		}
	}
	return nil
}

// newID draws random suffixes until one is unused. Caller holds the write lock.
func (t *Table[T]) newID() (string, error) {
	for i := 0; i < 8; i++ {
		suffix, err := randomSuffix(idSuffixLength)
		if err != nil {
			return "", err
		}
		id := t.schema.IDPrefix + suffix
		if t.find(id) == nil {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique %s id", t.schema.Resource)
}

// applyPatch round-trips row through its JSON form so patch keys use the wire names.
func applyPatch[T any](row T, patch backend.Patch) (T, error) {
	var out T
	raw, err := json.Marshal(row)
	if err != nil {
		return out, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(merged, &out); err != nil {
		return out, err
	}
	return out, nil
}
