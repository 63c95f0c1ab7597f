// Package postgres implements docstore.Store on a single JSONB table.
//
// Schema lives in internal/database/migration/sql. Every document is a row
// keyed by (collection, id); data is queried with jsonb path operators.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"jobmatch/internal/database"
	"jobmatch/internal/docstore"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Store struct {
	db  database.DB
	now func() time.Time
}

func New(db database.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return "", err
	}
	raw, err := encode(data)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := s.now()
	_, err = s.db.Exec(ctx, `
INSERT INTO documents (collection, id, data, created_at, updated_at)
VALUES ($1, $2, $3::jsonb, $4, $4)`, collection, id, raw, now)
	if err != nil {
		return "", fmt.Errorf("postgres create: %w", err)
	}
	return id, nil
}

func (s *Store) CreateUnique(ctx context.Context, collection, key string, data map[string]any) (string, bool, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return "", false, err
	}
	if key == "" {
		return "", false, fmt.Errorf("%w: empty unique key", docstore.ErrInvalidQuery)
	}
	raw, err := encode(data)
	if err != nil {
		return "", false, err
	}

	id := uuid.NewString()
	now := s.now()
	var got string
	err = s.db.QueryRow(ctx, `
INSERT INTO documents (collection, id, unique_key, data, created_at, updated_at)
VALUES ($1, $2, $3, $4::jsonb, $5, $5)
ON CONFLICT (collection, unique_key) WHERE unique_key IS NOT NULL DO NOTHING
RETURNING id`, collection, id, key, raw, now).Scan(&got)
	if err == nil {
		return got, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, fmt.Errorf("postgres create unique: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT id FROM documents WHERE collection = $1 AND unique_key = $2`,
		collection, key,
	).Scan(&got)
	if err != nil {
		return "", false, fmt.Errorf("postgres create unique lookup: %w", err)
	}
	return got, false, nil
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (docstore.Record, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return docstore.Record{}, err
	}
	rec, err := scanRecord(s.db.QueryRow(ctx, `
SELECT id, data, created_at, updated_at FROM documents
WHERE collection = $1 AND id = $2`, collection, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return docstore.Record{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Record{}, fmt.Errorf("postgres get: %w", err)
	}
	return rec, nil
}

// Update merges fields under a row lock so nested paths get their
// intermediate objects the same way the memory store creates them.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := s.UpdateIf(ctx, collection, id, nil, fields)
	return err
}

// UpdateIf checks conds against the row it holds FOR UPDATE, so a
// concurrent writer cannot slip in between the check and the write.
func (s *Store) UpdateIf(ctx context.Context, collection, id string, conds []docstore.Condition, fields map[string]any) (bool, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return false, err
	}
	conds, err := docstore.NormalizeConditions(conds)
	if err != nil {
		return false, err
	}
	keys := make([]string, 0, len(fields))
	paths := make(map[string][]string, len(fields))
	for k := range fields {
		p, err := docstore.SplitPath(k)
		if err != nil {
			return false, err
		}
		keys = append(keys, k)
		paths[k] = p
	}
	sort.Strings(keys)

	err = s.mutate(ctx, collection, id, func(data map[string]any) error {
		for _, c := range conds {
			path, _ := docstore.SplitPath(c.Field)
			v, ok := docstore.Lookup(data, path)
			if !ok || !docstore.ValueEqual(v, c.Value) {
				return errConditionUnmet
			}
		}
		for _, k := range keys {
			v, err := docstore.NormalizeValue(fields[k])
			if err != nil {
				return err
			}
			docstore.SetPath(data, paths[k], v)
		}
		return nil
	})
	if errors.Is(err, errConditionUnmet) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	if err := docstore.ValidateCollection(collection); err != nil {
		return err
	}
	path, err := docstore.SplitPath(field)
	if err != nil {
		return err
	}
	return s.mutate(ctx, collection, id, func(data map[string]any) error {
		cur := 0.0
		if v, ok := docstore.Lookup(data, path); ok && v != nil {
			f, ok := docstore.ToFloat(v)
			if !ok {
				return fmt.Errorf("%w: field %q is not numeric", docstore.ErrInvalidQuery, field)
			}
			cur = f
		}
		docstore.SetPath(data, path, cur+float64(delta))
		return nil
	})
}

var errConditionUnmet = errors.New("condition unmet")

func (s *Store) mutate(ctx context.Context, collection, id string, fn func(map[string]any) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	var data map[string]any
	err = tx.QueryRow(ctx, `
SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("postgres lock: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}

	if err := fn(data); err != nil {
		return err
	}
	raw, err := encode(data)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
UPDATE documents SET data = $3::jsonb, updated_at = $4
WHERE collection = $1 AND id = $2`, collection, id, raw, s.now()); err != nil {
		return fmt.Errorf("postgres update: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres commit: %w", err)
	}
	return nil
}

func (s *Store) QueryEquality(ctx context.Context, collection string, conds []docstore.Condition, limit int) ([]docstore.Record, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return nil, err
	}
	if err := docstore.ValidateLimit(limit); err != nil {
		return nil, err
	}
	conds, err := docstore.NormalizeConditions(conds)
	if err != nil {
		return nil, err
	}

	q := `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1`
	args := []any{collection}
	for _, c := range conds {
		switch c.Value.(type) {
		case map[string]any, []any:
			// Composite values never compare equal.
			return nil, nil
		}
		path, _ := docstore.SplitPath(c.Field)
		want, err := encode(nest(path, c.Value))
		if err != nil {
			return nil, err
		}
		args = append(args, want)
		q += fmt.Sprintf(" AND data @> $%d::jsonb", len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d", len(args))

	return s.queryRecords(ctx, q, args...)
}

func (s *Store) QueryRange(ctx context.Context, collection, field string, low, high any, limit int) ([]docstore.Record, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return nil, err
	}
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

	q := `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1`
	args := []any{collection}
	switch kind {
	case docstore.RangeNumeric:
		l, _ := docstore.ToFloat(low)
		h, _ := docstore.ToFloat(high)
		args = append(args, path, l, h)
		q += " AND " + numericBetween(2, 3, 4)
	case docstore.RangeString:
		args = append(args, path, low.(string), high.(string))
		q += ` AND (CASE WHEN jsonb_typeof(data #> $2::text[]) = 'string' THEN data #>> $2::text[] END) COLLATE "C" BETWEEN $3::text AND $4::text`
	case docstore.RangeLatLng:
		l := low.(docstore.LatLng)
		h := high.(docstore.LatLng)
		lat := append(append([]string{}, path...), "latitude")
		lng := append(append([]string{}, path...), "longitude")
		args = append(args, lat, l.Latitude, h.Latitude, lng, l.Longitude, h.Longitude)
		q += " AND " + numericBetween(2, 3, 4) + " AND " + numericBetween(5, 6, 7)
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d", len(args))

	return s.queryRecords(ctx, q, args...)
}

func numericBetween(path, low, high int) string {
	return fmt.Sprintf(
		`(CASE WHEN jsonb_typeof(data #> $%[1]d::text[]) = 'number' THEN (data #>> $%[1]d::text[])::float8 END) BETWEEN $%[2]d::float8 AND $%[3]d::float8`,
		path, low, high,
	)
}

func (s *Store) queryRecords(ctx context.Context, q string, args ...any) ([]docstore.Record, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}
	defer rows.Close()

	var out []docstore.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres rows: %w", err)
	}
	return out, nil
}

func scanRecord(row database.Row) (docstore.Record, error) {
	var rec docstore.Record
	if err := row.Scan(&rec.ID, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return docstore.Record{}, err
	}
	if rec.Data == nil {
		rec.Data = map[string]any{}
	}
	return rec, nil
}

// nest builds {"a":{"b":v}} for path [a b], the containment document for @>.
func nest(path []string, v any) map[string]any {
	out := map[string]any{path[len(path)-1]: v}
	for i := len(path) - 2; i >= 0; i-- {
		out = map[string]any{path[i]: out}
	}
	return out
}

func encode(v any) (string, error) {
	if m, ok := v.(map[string]any); v == nil || (ok && m == nil) {
		return "{}", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", docstore.ErrInvalidQuery, err)
	}
	return string(b), nil
}
