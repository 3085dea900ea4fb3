package bbolt

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/loog-project/treediff/internal/store"
	"github.com/loog-project/treediff/pkg/treediff"
)

// handy constants -----------------------------------------------------------

var (
	ctx = context.Background()
	id  = "document"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "db.bb"), nil, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// TestNewAndBuckets checks that the DB opens and buckets exist.
func TestNewAndBuckets(t *testing.T) {
	s := openStore(t)

	// verify buckets truly created in file
	info1, _ := os.Stat(s.db.Path())
	if info1.Size() == 0 {
		t.Fatal("DB file should not be empty")
	}
}

// TestRevisionRoundtrip covers:
//   - claimNextRevision
//   - SetRevision
//   - Get / GetRevision / GetLatestRevision
func TestRevisionRoundtrip(t *testing.T) {
	s := openStore(t)

	// -------- initial revision -------------------------------------------
	snap := &store.Snapshot{Object: treediff.MapOf("foo", "bar")}
	rev := &store.Revision{Source: "a.yaml"}
	if err := s.SetRevision(ctx, id, snap, rev); err != nil {
		t.Fatalf("set revision: %v", err)
	}
	if snap.ID != 0 || rev.ID != 0 || !rev.Initial {
		t.Fatalf("first revision should have ID 0 and be initial, got %d/%d/%v", snap.ID, rev.ID, rev.Initial)
	}

	latest, err := s.GetLatestRevision(ctx, id)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest != 0 {
		t.Fatalf("latest want 0, got %d", latest)
	}

	// -------- revision #1 -------------------------------------------------
	rev1 := &store.Revision{
		PreviousID: rev.ID,
		Changes: treediff.Changes{
			{Type: treediff.ChangeUpdate, Path: treediff.Path{"foo"}, OldValue: "bar", NewValue: "baz"},
		},
	}
	if err := s.SetRevision(ctx, id, &store.Snapshot{Object: treediff.MapOf("foo", "baz")}, rev1); err != nil {
		t.Fatalf("set rev1: %v", err)
	}
	if rev1.ID != 1 || rev1.Initial {
		t.Fatalf("rev1 should receive ID 1, got %d", rev1.ID)
	}

	// -------- revision #2 -------------------------------------------------
	rev2 := &store.Revision{
		PreviousID: rev1.ID,
		Changes: treediff.Changes{
			{Type: treediff.ChangeAdd, Path: treediff.Path{"list", 0}, NewValue: 42},
		},
	}
	_ = s.SetRevision(ctx, id, &store.Snapshot{Object: treediff.MapOf("foo", "baz", "list", []any{42})}, rev2)

	if latest, _ := s.GetLatestRevision(ctx, id); latest != 2 {
		t.Fatalf("latest want 2, got %d", latest)
	}

	// -------- gets ---------------------------------------------------------
	sn0, r0, err := s.Get(ctx, id, 0)
	if err != nil || sn0 == nil || r0 == nil || r0.Source != "a.yaml" {
		t.Fatalf("rev0: got %+v / %+v / err=%v", sn0, r0, err)
	}
	if v, ok := treediff.Resolve(sn0.Object, treediff.Path{"foo"}); !ok || v != "bar" {
		t.Fatalf("rev0 snapshot lost its content: %#v", sn0.Object)
	}

	r2, err := s.GetRevision(ctx, id, 2)
	if err != nil || r2.ID != 2 || r2.PreviousID != 1 {
		t.Fatalf("rev2 not rev2: %+v err=%v", r2, err)
	}
	if len(r2.Changes) != 1 || !r2.Changes[0].Path.Equal(treediff.Path{"list", 0}) {
		t.Fatalf("rev2 changes not decoded: %v", r2.Changes)
	}

	// numbers come back as int64 but still compare equal as leaves
	sn2, _ := s.GetSnapshot(ctx, id, 2)
	if changes := treediff.Diff(sn2.Object, treediff.MapOf("foo", "baz", "list", []any{42})); len(changes) != 0 {
		t.Fatalf("snapshot round trip should diff empty, got %v", changes)
	}

	if _, _, err := s.Get(ctx, id, 3); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("rev3 should be missing, got %v", err)
	}
}

// TestConcurrentClaims ensures claimNextRevision is atomic.
func TestConcurrentClaims(t *testing.T) {
	s := openStore(t)

	// race 20 goroutines
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			errs <- s.SetRevision(ctx, id, &store.Snapshot{Object: treediff.MapOf("x", i)}, &store.Revision{})
		}()
	}
	for i := 0; i < 20; i++ {
		if e := <-errs; e != nil {
			t.Fatalf("concurrent SetRevision failed: %v", e)
		}
	}

	if latest, _ := s.GetLatestRevision(ctx, id); latest != 19 {
		t.Fatalf("after 20 writes, latest should be 19, got %d", latest)
	}
}

// TestWalkRevisions spans several chunks and a document sharing the ID prefix.
func TestWalkRevisions(t *testing.T) {
	s := openStore(t)

	const n = chunkSize*2 + 3
	for i := 0; i < n; i++ {
		if err := s.SetRevision(ctx, id, &store.Snapshot{Object: i}, &store.Revision{}); err != nil {
			t.Fatalf("set %d: %v", i, err)
		}
	}
	if err := s.SetRevision(ctx, id+"|other", &store.Snapshot{}, &store.Revision{}); err != nil {
		t.Fatalf("set other: %v", err)
	}

	var seen []store.RevisionID
	if err := s.WalkRevisions(id, func(rev *store.Revision) bool {
		seen = append(seen, rev.ID)
		return true
	}); err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(seen) != n {
		t.Fatalf("walk saw %d revisions, want %d", len(seen), n)
	}
	for i, rid := range seen {
		if rid != store.RevisionID(i) {
			t.Fatalf("revision %d out of order: %d", i, rid)
		}
	}

	// stop early
	count := 0
	_ = s.WalkRevisions(id, func(*store.Revision) bool {
		count++
		return count < 5
	})
	if count != 5 {
		t.Fatalf("walk should stop after 5, got %d", count)
	}

	docs, err := s.Documents(ctx)
	if err != nil {
		t.Fatalf("documents: %v", err)
	}
	if len(docs) != 2 || docs[0] != id || docs[1] != id+"|other" {
		t.Fatalf("unexpected documents %v", docs)
	}
}

// TestPersistedValues verifies that bytes written are real MessagePack.
func TestPersistedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.bb")
	s, _ := New(path, nil, true)
	_ = s.SetRevision(ctx, id, &store.Snapshot{Object: treediff.MapOf("k", "v")}, &store.Revision{})
	_ = s.Close()

	// reopen raw file and search for the msgpack fixstr "k"
	blob, _ := os.ReadFile(path)
	if !bytes.Contains(blob, []byte{0xa1, 'k'}) {
		t.Fatalf("file does not appear to contain msgpack data")
	}

	// and the counter survives reopening
	s, err := New(path, nil, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if latest, err := s.GetLatestRevision(ctx, id); err != nil || latest != 0 {
		t.Fatalf("latest after reopen: %d err=%v", latest, err)
	}
}
