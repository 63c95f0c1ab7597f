// Package memory is an in-process docstore.Store used by tests and by the
// "memory" store driver.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobmatch/internal/docstore"

	"github.com/google/uuid"
)

type document struct {
	data      map[string]any
	uniqueKey string
	createdAt time.Time
	updatedAt time.Time
}

type collection struct {
	docs   map[string]*document
	order  []string
	unique map[string]string
}

type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	now         func() time.Time
}

func New() *Store {
	return &Store{collections: make(map[string]*collection), now: time.Now}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]*document), unique: make(map[string]string)}
		s.collections[name] = c
	}
	return c
}

func (s *Store) Create(ctx context.Context, coll string, data map[string]any) (string, error) {
	id, _, err := s.create(ctx, coll, "", data)
	return id, err
}

func (s *Store) CreateUnique(ctx context.Context, coll, key string, data map[string]any) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("%w: empty unique key", docstore.ErrInvalidQuery)
	}
	return s.create(ctx, coll, key, data)
}

func (s *Store) create(ctx context.Context, coll, key string, data map[string]any) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := docstore.ValidateCollection(coll); err != nil {
		return "", false, err
	}
	cp, err := docstore.CloneData(data)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", docstore.ErrInvalidQuery, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(coll)
	if key != "" {
		if existing, ok := c.unique[key]; ok {
			return existing, false, nil
		}
	}

	id := uuid.NewString()
	now := s.now().UTC()
	c.docs[id] = &document{data: cp, uniqueKey: key, createdAt: now, updatedAt: now}
	c.order = append(c.order, id)
	if key != "" {
		c.unique[key] = id
	}
	return id, true, nil
}

func (s *Store) GetByID(ctx context.Context, coll, id string) (docstore.Record, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[coll]
	if !ok {
		return docstore.Record{}, docstore.ErrNotFound
	}
	d, ok := c.docs[id]
	if !ok {
		return docstore.Record{}, docstore.ErrNotFound
	}
	return toRecord(id, d)
}

func (s *Store) Update(ctx context.Context, coll, id string, fields map[string]any) error {
	_, err := s.update(ctx, coll, id, nil, fields)
	return err
}

// UpdateIf applies fields only while the document matches every condition.
func (s *Store) UpdateIf(ctx context.Context, coll, id string, conds []docstore.Condition, fields map[string]any) (bool, error) {
	return s.update(ctx, coll, id, conds, fields)
}

func (s *Store) update(ctx context.Context, coll, id string, conds []docstore.Condition, fields map[string]any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	conds, err := docstore.NormalizeConditions(conds)
	if err != nil {
		return false, err
	}
	type pathValue struct {
		path  []string
		value any
	}
	updates := make([]pathValue, 0, len(fields))
	for f, v := range fields {
		path, err := docstore.SplitPath(f)
		if err != nil {
			return false, err
		}
		nv, err := docstore.NormalizeValue(v)
		if err != nil {
			return false, err
		}
		updates = append(updates, pathValue{path: path, value: nv})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[coll]
	if !ok {
		return false, docstore.ErrNotFound
	}
	d, ok := c.docs[id]
	if !ok {
		return false, docstore.ErrNotFound
	}
	for _, cond := range conds {
		path, _ := docstore.SplitPath(cond.Field)
		v, found := docstore.Lookup(d.data, path)
		if !found || !docstore.ValueEqual(v, cond.Value) {
			return false, nil
		}
	}
	for _, u := range updates {
		docstore.SetPath(d.data, u.path, u.value)
	}
	d.updatedAt = s.now().UTC()
	return true, nil
}

func (s *Store) QueryEquality(ctx context.Context, coll string, conds []docstore.Condition, limit int) ([]docstore.Record, error) {
	if err := docstore.ValidateLimit(limit); err != nil {
		return nil, err
	}
	conds, err := docstore.NormalizeConditions(conds)
	if err != nil {
		return nil, err
	}
	paths := make([][]string, len(conds))
	for i, c := range conds {
		paths[i], _ = docstore.SplitPath(c.Field)
	}

	return s.scan(ctx, coll, limit, func(data map[string]any) bool {
		for i, c := range conds {
			v, ok := docstore.Lookup(data, paths[i])
			if !ok || !docstore.ValueEqual(v, c.Value) {
				return false
			}
		}
		return true
	})
}

func (s *Store) QueryRange(ctx context.Context, coll, field string, low, high any, limit int) ([]docstore.Record, error) {
	if err := docstore.ValidateLimit(limit); err != nil {
		return nil, err
	}
	path, err := docstore.SplitPath(field)
	if err != nil {
		return nil, err
	}
	kind, low, high, err := docstore.NormalizeRange(low, high)
	if err != nil {
		return nil, err
	}

	return s.scan(ctx, coll, limit, func(data map[string]any) bool {
		v, ok := docstore.Lookup(data, path)
		return ok && docstore.InRange(kind, v, low, high)
	})
}

func (s *Store) AtomicIncrement(ctx context.Context, coll, id, field string, delta int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := docstore.SplitPath(field)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[coll]
	if !ok {
		return docstore.ErrNotFound
	}
	d, ok := c.docs[id]
	if !ok {
		return docstore.ErrNotFound
	}

	cur := 0.0
	if v, ok := docstore.Lookup(d.data, path); ok && v != nil {
		f, ok := docstore.ToFloat(v)
		if !ok {
			return fmt.Errorf("%w: field %q is not numeric", docstore.ErrInvalidQuery, field)
		}
		cur = f
	}
	docstore.SetPath(d.data, path, cur+float64(delta))
	d.updatedAt = s.now().UTC()
	return nil
}

func (s *Store) scan(ctx context.Context, coll string, limit int, match func(map[string]any) bool) ([]docstore.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[coll]
	if !ok {
		return []docstore.Record{}, nil
	}

	out := make([]docstore.Record, 0)
	for _, id := range c.order {
		d := c.docs[id]
		if !match(d.data) {
			continue
		}
		rec, err := toRecord(id, d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func toRecord(id string, d *document) (docstore.Record, error) {
	cp, err := docstore.CloneData(d.data)
	if err != nil {
		return docstore.Record{}, err
	}
	return docstore.Record{ID: id, Data: cp, CreatedAt: d.createdAt, UpdatedAt: d.updatedAt}, nil
}
