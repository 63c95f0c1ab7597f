// Package mongo implements docstore.Store on MongoDB. Each docstore
// collection maps to a Mongo collection of envelopes:
//
//	{_id, data, unique_key?, created_at, updated_at}
//
// Field paths are addressed under the "data." prefix.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"jobmatch/internal/docstore"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const dataPrefix = "data."

type envelope struct {
	ID        string    `bson:"_id"`
	Data      bson.Raw  `bson:"data"`
	UniqueKey string    `bson:"unique_key,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Store struct {
	db      *mongo.Database
	now     func() time.Time
	indexed sync.Map
}

func New(db *mongo.Database) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func (s *Store) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return "", err
	}
	doc, err := s.newDocument(data, "")
	if err != nil {
		return "", err
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("mongo create: %w", err)
	}
	return doc["_id"].(string), nil
}

func (s *Store) CreateUnique(ctx context.Context, collection, key string, data map[string]any) (string, bool, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return "", false, err
	}
	if key == "" {
		return "", false, fmt.Errorf("%w: empty unique key", docstore.ErrInvalidQuery)
	}
	if err := s.ensureUniqueIndex(ctx, collection); err != nil {
		return "", false, err
	}

	doc, err := s.newDocument(data, key)
	if err != nil {
		return "", false, err
	}
	coll := s.db.Collection(collection)
	_, err = coll.InsertOne(ctx, doc)
	if err == nil {
		return doc["_id"].(string), true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return "", false, fmt.Errorf("mongo create unique: %w", err)
	}

	var existing struct {
		ID string `bson:"_id"`
	}
	if err := coll.FindOne(ctx, bson.M{"unique_key": key}).Decode(&existing); err != nil {
		return "", false, fmt.Errorf("mongo create unique lookup: %w", err)
	}
	return existing.ID, false, nil
}

func (s *Store) ensureUniqueIndex(ctx context.Context, collection string) error {
	if _, ok := s.indexed.Load(collection); ok {
		return nil
	}
	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "unique_key", Value: 1}},
		Options: options.Index().
			SetName("unique_key_1").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"unique_key": bson.M{"$exists": true}}),
	})
	if err != nil {
		return fmt.Errorf("mongo ensure unique index: %w", err)
	}
	s.indexed.Store(collection, struct{}{})
	return nil
}

func (s *Store) newDocument(data map[string]any, key string) (bson.M, error) {
	cp, err := docstore.CloneData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docstore.ErrInvalidQuery, err)
	}
	now := s.now()
	doc := bson.M{
		"_id":        uuid.NewString(),
		"data":       cp,
		"created_at": now,
		"updated_at": now,
	}
	if key != "" {
		doc["unique_key"] = key
	}
	return doc, nil
}

func (s *Store) GetByID(ctx context.Context, collection, id string) (docstore.Record, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return docstore.Record{}, err
	}
	var env envelope
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&env)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.Record{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Record{}, fmt.Errorf("mongo get: %w", err)
	}
	return toRecord(env)
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := s.UpdateIf(ctx, collection, id, nil, fields)
	return err
}

// UpdateIf folds conds into the update filter. When nothing matched, a
// second lookup tells a missing document from an unmet condition.
func (s *Store) UpdateIf(ctx context.Context, collection, id string, conds []docstore.Condition, fields map[string]any) (bool, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return false, err
	}
	set := bson.M{"updated_at": s.now()}
	for f, v := range fields {
		if _, err := docstore.SplitPath(f); err != nil {
			return false, err
		}
		nv, err := docstore.NormalizeValue(v)
		if err != nil {
			return false, err
		}
		set[dataPrefix+f] = nv
	}
	cond, ok, err := equalityFilter(conds)
	if err != nil {
		return false, err
	}
	coll := s.db.Collection(collection)
	if ok {
		filter := append(bson.D{{Key: "_id", Value: id}}, cond...)
		res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
		if err != nil {
			return false, fmt.Errorf("mongo update: %w", err)
		}
		if res.MatchedCount == 1 {
			return true, nil
		}
	}

	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("mongo update: %w", err)
	}
	if n == 0 {
		return false, docstore.ErrNotFound
	}
	return false, nil
}

func (s *Store) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	if err := docstore.ValidateCollection(collection); err != nil {
		return err
	}
	if _, err := docstore.SplitPath(field); err != nil {
		return err
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{dataPrefix + field: delta},
			"$set": bson.M{"updated_at": s.now()},
		},
	)
	if err != nil {
		var we mongo.WriteException
		if errors.As(err, &we) && we.HasErrorCode(14) {
			return fmt.Errorf("%w: field %q is not numeric", docstore.ErrInvalidQuery, field)
		}
		return fmt.Errorf("mongo increment: %w", err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
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
	filter, ok, err := equalityFilter(conds)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.find(ctx, collection, filter, limit)
}

func (s *Store) QueryRange(ctx context.Context, collection, field string, low, high any, limit int) ([]docstore.Record, error) {
	if err := docstore.ValidateCollection(collection); err != nil {
		return nil, err
	}
	if err := docstore.ValidateLimit(limit); err != nil {
		return nil, err
	}
	filter, err := rangeFilter(field, low, high)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, collection, filter, limit)
}

func (s *Store) find(ctx context.Context, collection string, filter bson.D, limit int) ([]docstore.Record, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []docstore.Record
	for cur.Next(ctx) {
		var env envelope
		if err := cur.Decode(&env); err != nil {
			return nil, fmt.Errorf("mongo decode: %w", err)
		}
		rec, err := toRecord(env)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor: %w", err)
	}
	return out, nil
}

// equalityFilter returns ok=false when a condition can never match
// (composite values never compare equal).
func equalityFilter(conds []docstore.Condition) (bson.D, bool, error) {
	conds, err := docstore.NormalizeConditions(conds)
	if err != nil {
		return nil, false, err
	}
	filter := bson.D{}
	for _, c := range conds {
		switch c.Value.(type) {
		case map[string]any, []any:
			return nil, false, nil
		}
		filter = append(filter, bson.E{Key: dataPrefix + c.Field, Value: scalar(bson.M{"$eq": c.Value})})
	}
	return filter, true, nil
}

func rangeFilter(field string, low, high any) (bson.D, error) {
	if _, err := docstore.SplitPath(field); err != nil {
		return nil, err
	}
	kind, low, high, err := docstore.NormalizeRange(low, high)
	if err != nil {
		return nil, err
	}

	key := dataPrefix + field
	switch kind {
	case docstore.RangeLatLng:
		l := low.(docstore.LatLng)
		h := high.(docstore.LatLng)
		return bson.D{
			{Key: key + ".latitude", Value: scalar(bson.M{"$gte": l.Latitude, "$lte": h.Latitude})},
			{Key: key + ".longitude", Value: scalar(bson.M{"$gte": l.Longitude, "$lte": h.Longitude})},
		}, nil
	case docstore.RangeNumeric:
		l, _ := docstore.ToFloat(low)
		h, _ := docstore.ToFloat(high)
		return bson.D{{Key: key, Value: scalar(bson.M{"$gte": l, "$lte": h})}}, nil
	default:
		return bson.D{{Key: key, Value: scalar(bson.M{"$gte": low, "$lte": high})}}, nil
	}
}

// scalar keeps array fields out of a predicate; Mongo would otherwise
// match arrays element-wise.
func scalar(pred bson.M) bson.M {
	pred["$not"] = bson.M{"$type": "array"}
	return pred
}

func toRecord(env envelope) (docstore.Record, error) {
	data := map[string]any{}
	if len(env.Data) > 0 {
		b, err := bson.MarshalExtJSON(env.Data, false, false)
		if err != nil {
			return docstore.Record{}, fmt.Errorf("mongo decode data: %w", err)
		}
		if err := json.Unmarshal(b, &data); err != nil {
			return docstore.Record{}, fmt.Errorf("mongo decode data: %w", err)
		}
	}
	return docstore.Record{
		ID:        env.ID,
		Data:      data,
		CreatedAt: env.CreatedAt.UTC(),
		UpdatedAt: env.UpdatedAt.UTC(),
	}, nil
}
