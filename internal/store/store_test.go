package store_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/raphaelgruber/flirtassist/internal/kv"
	"github.com/raphaelgruber/flirtassist/internal/metrics"
	"github.com/raphaelgruber/flirtassist/internal/models"
	"github.com/raphaelgruber/flirtassist/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) (*store.ThreadStore, *kv.Memory) {
	t.Helper()
	backend := kv.NewMemory()
	return store.New(backend, quietLogger()), backend
}

func sampleThread(id string) models.Thread {
	now := models.NewTimestamp(time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC))
	return models.Thread{
		ID:    id,
		Title: "Thread " + id,
		Mood:  models.MoodRomantic,
		Context: []models.Message{
			{ID: id + "-m1", Role: models.RoleOther, Text: "hey you", TS: now},
			{ID: id + "-m2", Role: models.RoleUser, Text: "hey yourself", TS: now},
		},
		Suggestions: []models.Suggestion{
			{ID: id + "-s1", Text: "Is it hot in here?", Mood: models.MoodRomantic, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestLoadEmptyWithoutSave(t *testing.T) {
	s, _ := newStore(t)

	threads, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, threads)
	assert.Empty(t, threads)
}

func TestLoadCorruptDataIsEmpty(t *testing.T) {
	ctx := context.Background()
	s, backend := newStore(t)

	for _, raw := range []string{"not json", `{"id":"object-not-array"}`, `[{"id":`} {
		require.NoError(t, backend.Set(ctx, store.Key, []byte(raw)))

		threads, err := s.Load(ctx)
		require.NoError(t, err, "corrupt data %q must not surface an error", raw)
		assert.Empty(t, threads)
	}
}

func TestUpsertThenGet(t *testing.T) {
	synced := true
	precise := time.Date(2025, 3, 14, 9, 26, 53, 123456789, time.UTC)

	tests := []struct {
		name   string
		thread models.Thread
	}{
		{
			name:   "full thread",
			thread: sampleThread("a"),
		},
		{
			name: "no suggestions",
			thread: models.Thread{
				ID:          "b",
				Title:       models.DefaultTitle,
				Mood:        models.MoodFunny,
				Context:     []models.Message{},
				Suggestions: []models.Suggestion{},
			},
		},
		{
			name:   "nil context",
			thread: models.Thread{ID: "c", Title: "Nil", Mood: models.MoodSexy},
		},
		{
			name: "sub-millisecond times and remote flag",
			thread: models.Thread{
				ID:           "d",
				Title:        "Precise",
				Mood:         models.MoodMysterious,
				Context:      []models.Message{{ID: "m", Role: models.RoleAssistant, Text: "hi", TS: models.NewTimestamp(precise.In(time.FixedZone("X", 3600)))}},
				CreatedAt:    models.NewTimestamp(precise),
				UpdatedAt:    models.Timestamp(1741944413123),
				RemoteSynced: &synced,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, _ := newStore(t)

			require.NoError(t, s.Upsert(ctx, tt.thread))

			got, err := s.Get(ctx, tt.thread.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.thread.Normalize(), *got)

			again, err := s.Get(ctx, tt.thread.ID)
			require.NoError(t, err)
			require.NoError(t, s.Upsert(ctx, *again))
			again, err = s.Get(ctx, tt.thread.ID)
			require.NoError(t, err)
			assert.Equal(t, *got, *again, "stored shape is stable")
		})
	}
}

func TestNormalizedThreadRoundTripsExactly(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	th := models.Thread{
		ID:          "e",
		Title:       "Exact",
		Mood:        models.MoodRomantic,
		Suggestions: []models.Suggestion{},
		CreatedAt:   models.NewTimestamp(time.Now()),
	}.Normalize()

	require.NoError(t, s.Upsert(ctx, th))
	got, err := s.Get(ctx, "e")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, th, *got)
	assert.NotNil(t, got.Context)
	assert.Nil(t, got.Suggestions)
}

func TestUpsertPrependsNewThreads(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.Upsert(ctx, sampleThread("a")))
	require.NoError(t, s.Upsert(ctx, sampleThread("b")))
	require.NoError(t, s.Upsert(ctx, sampleThread("c")))

	threads, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 3)
	assert.Equal(t, []string{"c", "b", "a"}, ids(threads))
}

func TestUpsertReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.Upsert(ctx, sampleThread("a")))
	require.NoError(t, s.Upsert(ctx, sampleThread("b")))

	updated := sampleThread("a")
	updated.Title = "Renamed"
	require.NoError(t, s.Upsert(ctx, updated))

	threads, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(threads), "replacing keeps position")
	assert.Equal(t, "Renamed", threads[1].Title)
}

func TestDeleteKeepsOthers(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	a, b, c := sampleThread("a"), sampleThread("b"), sampleThread("c")
	require.NoError(t, s.Save(ctx, []models.Thread{a, b, c}))

	require.NoError(t, s.Delete(ctx, "b"))

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, got)

	threads, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Thread{a, c}, threads)
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.Save(ctx, []models.Thread{sampleThread("a")}))

	require.NoError(t, s.Delete(ctx, "zzz"))

	threads, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, threads, 1)
}

func TestSaveOverwritesCollection(t *testing.T) {
	ctx := context.Background()
	s, backend := newStore(t)

	require.NoError(t, s.Save(ctx, []models.Thread{sampleThread("a"), sampleThread("b")}))
	require.NoError(t, s.Save(ctx, nil))

	threads, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, threads)

	raw, _, err := backend.Get(ctx, store.Key)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.Upsert(ctx, sampleThread("a")))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Thread a", again.Title)
}

type failingKV struct{ kv.Memory }

func (f *failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func TestBackendErrorsPropagate(t *testing.T) {
	s := store.New(&failingKV{}, quietLogger())

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")

	err = s.Upsert(context.Background(), sampleThread("a"))
	require.Error(t, err)

	// Save never reads, so it succeeds on the embedded zero-value backend.
	require.NoError(t, s.Save(context.Background(), []models.Thread{sampleThread("a")}))
}

func TestMetricsRecorded(t *testing.T) {
	ctx := context.Background()
	c := metrics.NewCollector()
	s := store.New(kv.NewMemory(), quietLogger(), store.WithMetrics(c))

	require.NoError(t, s.Upsert(ctx, sampleThread("a")))

	snap := c.Snapshot()
	require.NotNil(t, snap.StoreLoad)
	require.NotNil(t, snap.StoreSave)
	assert.Equal(t, int64(1), snap.StoreLoad.Count)
	assert.Equal(t, int64(1), snap.StoreSave.Count)
}

func ids(threads []models.Thread) []string {
	out := make([]string, len(threads))
	for i, t := range threads {
		out[i] = t.ID
	}
	return out
}
