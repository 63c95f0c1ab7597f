package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Meta is the store-owned part of a document.
type Meta struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository is a typed view over one collection. T is encoded to document
// data through its JSON tags; bind copies the store-owned Meta onto decoded
// values.
type Repository[T any] struct {
	store      Store
	collection string
	bind       func(*T, Meta)
}

func NewRepository[T any](store Store, collection string, bind func(*T, Meta)) *Repository[T] {
	return &Repository[T]{store: store, collection: collection, bind: bind}
}

func (r *Repository[T]) Collection() string { return r.collection }

func (r *Repository[T]) Store() Store { return r.store }

func (r *Repository[T]) Create(ctx context.Context, v T) (T, error) {
	data, err := ToMap(v)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("encode %s: %w", r.collection, err)
	}
	id, err := r.store.Create(ctx, r.collection, data)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.Get(ctx, id)
}

// CreateUnique creates v unless a document with key exists. It requires a
// store implementing UniqueCreator; ok is false otherwise.
func (r *Repository[T]) CreateUnique(ctx context.Context, key string, v T) (out T, created bool, ok bool, err error) {
	uc, supported := r.store.(UniqueCreator)
	if !supported {
		return out, false, false, nil
	}
	data, err := ToMap(v)
	if err != nil {
		return out, false, true, fmt.Errorf("encode %s: %w", r.collection, err)
	}
	id, created, err := uc.CreateUnique(ctx, r.collection, key, data)
	if err != nil {
		return out, false, true, err
	}
	out, err = r.Get(ctx, id)
	return out, created, true, err
}

func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	rec, err := r.store.GetByID(ctx, r.collection, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.Decode(rec)
}

func (r *Repository[T]) Update(ctx context.Context, id string, fields map[string]any) (T, error) {
	if err := r.store.Update(ctx, r.collection, id, fields); err != nil {
		var zero T
		return zero, err
	}
	return r.Get(ctx, id)
}

// UpdateIf applies fields while the document matches conds. It requires a
// store implementing ConditionalUpdater; ok is false otherwise.
func (r *Repository[T]) UpdateIf(ctx context.Context, id string, conds []Condition, fields map[string]any) (out T, applied bool, ok bool, err error) {
	cu, supported := r.store.(ConditionalUpdater)
	if !supported {
		return out, false, false, nil
	}
	applied, err = cu.UpdateIf(ctx, r.collection, id, conds, fields)
	if err != nil || !applied {
		return out, false, true, err
	}
	out, err = r.Get(ctx, id)
	return out, true, true, err
}

func (r *Repository[T]) FindWhere(ctx context.Context, conds []Condition, limit int) ([]T, error) {
	recs, err := r.store.QueryEquality(ctx, r.collection, conds, limit)
	if err != nil {
		return nil, err
	}
	return r.DecodeAll(recs)
}

func (r *Repository[T]) Increment(ctx context.Context, id, field string, delta int64) error {
	return r.store.AtomicIncrement(ctx, r.collection, id, field, delta)
}

func (r *Repository[T]) Decode(rec Record) (T, error) {
	var v T
	b, err := json.Marshal(rec.Data)
	if err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", r.collection, rec.ID, err)
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", r.collection, rec.ID, err)
	}
	if r.bind != nil {
		r.bind(&v, Meta{ID: rec.ID, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt})
	}
	return v, nil
}

func (r *Repository[T]) DecodeAll(recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := r.Decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
