// Package docstore is the document-store contract the matching core runs on.
// Backends live in subpackages: memory, postgres and mongo.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidQuery = errors.New("invalid query")
)

// Record is one stored document. Data holds JSON-compatible values only:
// map[string]any, []any, string, float64, bool and nil.
type Record struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Condition is an equality predicate on a dotted field path.
type Condition struct {
	Field string
	Value any
}

func Eq(field string, value any) Condition {
	return Condition{Field: field, Value: value}
}

// LatLng bounds a composite location field in QueryRange. A document
// matches when both components of the field lie within the bounds.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

type Store interface {
	// Create stores data under a generated id and stamps created/updated times.
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	GetByID(ctx context.Context, collection, id string) (Record, error)
	// Update merges dotted-path fields into the document. ErrNotFound when
	// the id does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// QueryEquality returns up to limit documents matching ALL conditions.
	// Ordering is unspecified.
	QueryEquality(ctx context.Context, collection string, conds []Condition, limit int) ([]Record, error)
	// QueryRange returns up to limit documents whose field lies within
	// [low, high]. Bounds are both numeric, both strings, or both LatLng.
	QueryRange(ctx context.Context, collection, field string, low, high any, limit int) ([]Record, error)
	// AtomicIncrement adds delta to a numeric field exactly once per call.
	AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error
}

// UniqueCreator is implemented by stores that can enforce a unique key per
// collection. created is false when a document with key already existed;
// id then names the existing document.
type UniqueCreator interface {
	CreateUnique(ctx context.Context, collection, key string, data map[string]any) (id string, created bool, err error)
}

// ConditionalUpdater is implemented by stores that can apply an update only
// while the document still matches conds, as one atomic step. applied is
// false when the document exists but no longer matches.
type ConditionalUpdater interface {
	UpdateIf(ctx context.Context, collection, id string, conds []Condition, fields map[string]any) (applied bool, err error)
}

// Pinger is implemented by stores that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RangeKind int

const (
	RangeNumeric RangeKind = iota + 1
	RangeString
	RangeLatLng
)

// ClassifyRange checks that low and high are of one supported kind and
// returns it.
func ClassifyRange(low, high any) (RangeKind, error) {
	switch l := low.(type) {
	case LatLng:
		h, ok := high.(LatLng)
		if !ok {
			return 0, fmt.Errorf("%w: mismatched range bounds %T/%T", ErrInvalidQuery, low, high)
		}
		if l.Latitude > h.Latitude || l.Longitude > h.Longitude {
			return 0, fmt.Errorf("%w: low bound above high bound", ErrInvalidQuery)
		}
		return RangeLatLng, nil
	case string:
		h, ok := high.(string)
		if !ok {
			return 0, fmt.Errorf("%w: mismatched range bounds %T/%T", ErrInvalidQuery, low, high)
		}
		if l > h {
			return 0, fmt.Errorf("%w: low bound above high bound", ErrInvalidQuery)
		}
		return RangeString, nil
	}
	l, lok := ToFloat(low)
	h, hok := ToFloat(high)
	if !lok || !hok {
		return 0, fmt.Errorf("%w: unsupported range bounds %T/%T", ErrInvalidQuery, low, high)
	}
	if l > h {
		return 0, fmt.Errorf("%w: low bound above high bound", ErrInvalidQuery)
	}
	return RangeNumeric, nil
}

// NormalizeRange normalizes scalar bounds to their JSON form and classifies
// them. LatLng bounds pass through unchanged.
func NormalizeRange(low, high any) (RangeKind, any, any, error) {
	if _, ok := low.(LatLng); !ok {
		var err error
		if low, err = NormalizeValue(low); err != nil {
			return 0, nil, nil, err
		}
		if high, err = NormalizeValue(high); err != nil {
			return 0, nil, nil, err
		}
	}
	kind, err := ClassifyRange(low, high)
	if err != nil {
		return 0, nil, nil, err
	}
	return kind, low, high, nil
}

// InRange reports whether v (a stored JSON value) lies within the bounds of
// the given kind.
func InRange(kind RangeKind, v, low, high any) bool {
	switch kind {
	case RangeNumeric:
		f, ok := ToFloat(v)
		if !ok {
			return false
		}
		l, _ := ToFloat(low)
		h, _ := ToFloat(high)
		return f >= l && f <= h
	case RangeString:
		s, ok := v.(string)
		if !ok {
			return false
		}
		return s >= low.(string) && s <= high.(string)
	case RangeLatLng:
		m, ok := v.(map[string]any)
		if !ok {
			return false
		}
		lat, ok1 := ToFloat(m["latitude"])
		lng, ok2 := ToFloat(m["longitude"])
		if !ok1 || !ok2 {
			return false
		}
		l := low.(LatLng)
		h := high.(LatLng)
		return lat >= l.Latitude && lat <= h.Latitude && lng >= l.Longitude && lng <= h.Longitude
	}
	return false
}

// ValidateCollection rejects empty names.
func ValidateCollection(collection string) error {
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("%w: empty collection", ErrInvalidQuery)
	}
	return nil
}

func ValidateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be > 0", ErrInvalidQuery)
	}
	return nil
}

// SplitPath splits a dotted field path, rejecting empty segments.
func SplitPath(field string) ([]string, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, fmt.Errorf("%w: empty field", ErrInvalidQuery)
	}
	parts := strings.Split(field, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: bad field path %q", ErrInvalidQuery, field)
		}
	}
	return parts, nil
}

// Lookup resolves a dotted path inside data.
func Lookup(data map[string]any, path []string) (any, bool) {
	var cur any = data
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetPath writes value at path, creating intermediate objects.
func SetPath(data map[string]any, path []string, value any) {
	cur := data
	for _, p := range path[:len(path)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = value
}

// ToFloat converts any Go numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// NormalizeValue converts v to its JSON form (named string types become
// string, numbers become float64) so it compares equal to stored data.
func NormalizeValue(v any) (any, error) {
	switch v.(type) {
	case nil, string, float64, bool:
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return out, nil
}

// NormalizeConditions validates paths and normalizes values of conds.
func NormalizeConditions(conds []Condition) ([]Condition, error) {
	out := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if _, err := SplitPath(c.Field); err != nil {
			return nil, err
		}
		v, err := NormalizeValue(c.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, Condition{Field: c.Field, Value: v})
	}
	return out, nil
}

// ValueEqual compares two normalized JSON values. Composite values never
// compare equal.
func ValueEqual(a, b any) bool {
	if af, ok := ToFloat(a); ok {
		bf, ok := ToFloat(b)
		return ok && af == bf
	}
	switch a.(type) {
	case map[string]any, []any:
		return false
	}
	switch b.(type) {
	case map[string]any, []any:
		return false
	}
	return a == b
}

// ToMap converts a struct (or any JSON-encodable value) to document data.
func ToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// CloneData deep-copies document data through its JSON form.
func CloneData(data map[string]any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	return ToMap(data)
}
