package service_test

import (
	"context"
	"crypto/rand"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/treediff/internal/service"
	"github.com/loog-project/treediff/internal/store"
	bboltStore "github.com/loog-project/treediff/internal/store/bbolt"
	"github.com/loog-project/treediff/pkg/treediff"
)

func newTracker(t testing.TB) (*service.TrackerService, *bboltStore.Store) {
	t.Helper()
	hs, err := bboltStore.New(filepath.Join(t.TempDir(), "history.db"), nil, false)
	require.NoError(t, err)
	svc := service.NewTrackerService(hs, nil, zerolog.Nop())
	t.Cleanup(func() {
		svc.Close()
		_ = hs.Close()
	})
	return svc, hs
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTracker(t)

	v1 := treediff.MapOf("name", "web", "replicas", 1, "ports", []any{80})
	rev, changes, err := svc.Commit(ctx, "deploy", v1, "v1.yaml")
	require.NoError(t, err)
	assert.Equal(t, store.RevisionID(0), rev)
	assert.Empty(t, changes)

	v2 := treediff.MapOf("name", "web", "replicas", 3, "ports", []any{80, 443})
	rev, changes, err = svc.Commit(ctx, "deploy", v2, "v2.yaml")
	require.NoError(t, err)
	assert.Equal(t, store.RevisionID(1), rev)
	assert.Equal(t, treediff.Changes{
		{Type: treediff.ChangeAdd, Path: treediff.Path{"ports", 1}, NewValue: 443},
		{Type: treediff.ChangeUpdate, Path: treediff.Path{"replicas"}, OldValue: 1, NewValue: 3},
	}, changes)

	// an identical tree is not stored
	_, _, err = svc.Commit(ctx, "deploy", v2, "v2.yaml")
	var noChanges *service.NoChangesError
	require.True(t, errors.As(err, &noChanges))
	assert.Equal(t, store.RevisionID(1), noChanges.Latest)

	history, err := svc.History(ctx, "deploy")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Initial)
	assert.Equal(t, "v1.yaml", history[0].Source)
	assert.Equal(t, store.RevisionID(0), history[1].PreviousID)
	assert.Len(t, history[1].Changes, 2)

	snap, err := svc.Restore(ctx, "deploy", 0)
	require.NoError(t, err)
	assert.Empty(t, treediff.Diff(snap.Object, v1))

	changes, err = svc.Compare(ctx, "deploy", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, len(changes.Filter(treediff.ChangeDelete)))
}

// A fresh service has a cold cache and diffs against the stored snapshot.
func TestCommit_ColdCache(t *testing.T) {
	ctx := context.Background()
	svc, hs := newTracker(t)

	_, _, err := svc.Commit(ctx, "doc", map[string]any{"a": 1, "b": []any{"x"}}, "")
	require.NoError(t, err)

	cold := service.NewTrackerService(hs, treediff.New(treediff.WithParallel(true)), zerolog.Nop())
	defer cold.Close()

	// int64 from the store and int from the caller compare equal
	_, _, err = cold.Commit(ctx, "doc", map[string]any{"a": 1, "b": []any{"x"}}, "")
	var noChanges *service.NoChangesError
	require.ErrorAs(t, err, &noChanges)

	rev, changes, err := cold.Commit(ctx, "doc", map[string]any{"a": 2, "b": []any{"x"}}, "")
	require.NoError(t, err)
	assert.Equal(t, store.RevisionID(1), rev)
	require.Len(t, changes, 1)
	assert.Equal(t, treediff.ChangeUpdate, changes[0].Type)
	assert.EqualValues(t, 1, changes[0].OldValue)
}

func TestHistory_Unknown(t *testing.T) {
	svc, _ := newTracker(t)
	_, err := svc.History(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func BenchmarkCommit_Small(b *testing.B) {
	benchCommit(b, 10)
}

func BenchmarkCommit_500(b *testing.B) {
	benchCommit(b, 500)
}

// benchCommit is the shared benchmark body.
func benchCommit(b *testing.B, size int) {
	svc, _ := newTracker(b)

	// make this document large
	m := map[string]any{}
	for i := 0; i < size; i++ {
		m[rand.Text()] = rand.Text()
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		// committed trees are kept by the cache, so every commit gets a fresh one
		doc := map[string]any{
			"apiVersion": "v1",
			"kind":       "ConfigMap",
			"metadata": map[string]any{
				"namespace":  "default",
				"name":       "cm-" + strconv.Itoa(i),
				"generation": int64(i + 1),
			},
			"data": m,
		}
		if _, _, err := svc.Commit(b.Context(), "bench", doc, ""); err != nil {
			b.Fatalf("commit error: %v", err)
		}
	}
}
