package mongo_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"jobmatch/internal/config"
	"jobmatch/internal/database/mongodb"
	"jobmatch/internal/docstore"
	"jobmatch/internal/docstore/mongo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*mongo.Store, string) {
	t.Helper()

	uri := strings.TrimSpace(os.Getenv("JOBMATCH_TEST_MONGO_URI"))
	if uri == "" {
		t.Skip("missing test mongo env: set JOBMATCH_TEST_MONGO_URI")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := mongodb.Connect(ctx, config.MongoConfig{URI: uri, Database: "jobmatch_test"})
	require.NoError(t, err)

	coll := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	t.Cleanup(func() {
		_ = db.Collection(coll).Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})
	return mongo.New(db), coll
}

func TestMongoStore_RoundTrip(t *testing.T) {
	s, coll := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, coll, map[string]any{
		"status":   "active",
		"counters": map[string]any{"views": 0},
		"location": map[string]any{"latitude": -6.2, "longitude": 106.8},
	})
	require.NoError(t, err)

	require.NoError(t, s.AtomicIncrement(ctx, coll, id, "counters.views", 2))
	require.NoError(t, s.Update(ctx, coll, id, map[string]any{"status": "closed"}))

	rec, err := s.GetByID(ctx, coll, id)
	require.NoError(t, err)
	assert.Equal(t, "closed", rec.Data["status"])
	assert.Equal(t, 2.0, rec.Data["counters"].(map[string]any)["views"])

	recs, err := s.QueryRange(ctx, coll, "location",
		docstore.LatLng{Latitude: -6.3, Longitude: 106.7},
		docstore.LatLng{Latitude: -6.1, Longitude: 106.9}, 5)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = s.GetByID(ctx, coll, "missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	assert.ErrorIs(t, s.AtomicIncrement(ctx, coll, "missing", "counters.views", 1), docstore.ErrNotFound)
}

func TestMongoStore_CreateUnique(t *testing.T) {
	s, coll := newTestStore(t)
	ctx := context.Background()

	first, created, err := s.CreateUnique(ctx, coll, "job:seeker", map[string]any{"n": 1})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.CreateUnique(ctx, coll, "job:seeker", map[string]any{"n": 2})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)
}

func TestMongoStore_UpdateIf(t *testing.T) {
	s, coll := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, coll, map[string]any{"status": "pending"})
	require.NoError(t, err)
	pending := []docstore.Condition{docstore.Eq("status", "pending")}

	ok, err := s.UpdateIf(ctx, coll, id, pending, map[string]any{"status": "accepted"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UpdateIf(ctx, coll, id, pending, map[string]any{"status": "rejected"})
	require.NoError(t, err)
	assert.False(t, ok)

	rec, err := s.GetByID(ctx, coll, id)
	require.NoError(t, err)
	assert.Equal(t, "accepted", rec.Data["status"])

	_, err = s.UpdateIf(ctx, coll, "missing", pending, map[string]any{"status": "accepted"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
