package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"memeverse/internal/models"
	"memeverse/internal/observability"
)

// Document is one persisted key holding one JSON value of type T.
//
// A stored value that no longer decodes is logged, counted and replaced by the
// empty value; the next write overwrites it.
type Document[T any] struct {
	store *RecordStore
	key   string
	empty func() T
}

// NewDocument binds key to T. empty builds the value returned for a missing
// or unreadable key.
func NewDocument[T any](store *RecordStore, key string, empty func() T) *Document[T] {
	return &Document[T]{store: store, key: key, empty: empty}
}

// Key returns the persisted key.
func (d *Document[T]) Key() string {
	return d.key
}

// Load returns the stored value or the empty value.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	entry, ok, err := d.store.Get(ctx, d.key)
	if err != nil {
		var zero T
		return zero, err
	}
	return d.decode(ctx, entry.Value, ok), nil
}

// Save overwrites the stored value.
func (d *Document[T]) Save(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", d.key, err)
	}
	_, err = d.store.Mutate(ctx, d.key, func([]byte, bool) ([]byte, error) {
		return raw, nil
	})
	return err
}

// Update applies fn to the current value and persists the result. fn may run
// more than once when another writer wins a race, so it must not have side
// effects beyond building the new value. Returning ErrUnchanged from fn skips
// the write; Update then returns the current value.
func (d *Document[T]) Update(ctx context.Context, fn func(T) (T, error)) (T, error) {
	var result T
	_, err := d.store.Mutate(ctx, d.key, func(current []byte, exists bool) ([]byte, error) {
		value := d.decode(ctx, current, exists)
		next, err := fn(value)
		if errors.Is(err, ErrUnchanged) {
			result = value
			return nil, ErrUnchanged
		}
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", d.key, err)
		}
		result = next
		return raw, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func (d *Document[T]) decode(ctx context.Context, raw []byte, exists bool) T {
	if !exists {
		return d.empty()
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		corrupt := models.NewStorageCorruptionError(d.key, err)
		observability.StoreCorruptRecords.WithLabelValues(observability.KeyFamily(d.key)).Inc()
		d.store.Logger().LogCorruption(ctx, d.key, corrupt)
		return d.empty()
	}
	if isNilValue(v) {
		return d.empty()
	}
	return v
}

func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		return rv.IsNil()
	case reflect.Invalid:
		return true
	default:
		return false
	}
}

// Mapping is a Document holding a map from string keys to V.
type Mapping[V any] struct {
	doc *Document[map[string]V]
}

// NewMapping binds key to a map document.
func NewMapping[V any](store *RecordStore, key string) *Mapping[V] {
	return &Mapping[V]{
		doc: NewDocument(store, key, func() map[string]V { return map[string]V{} }),
	}
}

// Get returns the value under k and whether it is present.
func (m *Mapping[V]) Get(ctx context.Context, k string) (V, bool, error) {
	all, err := m.doc.Load(ctx)
	if err != nil {
		var zero V
		return zero, false, err
	}
	v, ok := all[k]
	return v, ok, nil
}

// Set stores v under k, keeping the other entries.
func (m *Mapping[V]) Set(ctx context.Context, k string, v V) error {
	_, err := m.doc.Update(ctx, func(all map[string]V) (map[string]V, error) {
		all[k] = v
		return all, nil
	})
	return err
}

// GetAll returns the whole map, empty if nothing was stored.
func (m *Mapping[V]) GetAll(ctx context.Context) (map[string]V, error) {
	return m.doc.Load(ctx)
}

// Update applies fn to the entry under k and stores the result.
func (m *Mapping[V]) Update(ctx context.Context, k string, fn func(current V, ok bool) (V, error)) (V, error) {
	var result V
	_, err := m.doc.Update(ctx, func(all map[string]V) (map[string]V, error) {
		cur, ok := all[k]
		next, err := fn(cur, ok)
		if errors.Is(err, ErrUnchanged) {
			result = cur
			return nil, ErrUnchanged
		}
		if err != nil {
			return nil, err
		}
		all[k] = next
		result = next
		return all, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result, nil
}

// Delete removes the entry under k. A missing entry is not written.
func (m *Mapping[V]) Delete(ctx context.Context, k string) error {
	_, err := m.doc.Update(ctx, func(all map[string]V) (map[string]V, error) {
		if _, ok := all[k]; !ok {
			return nil, ErrUnchanged
		}
		delete(all, k)
		return all, nil
	})
	return err
}
