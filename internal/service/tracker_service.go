package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/loog-project/treediff/internal/store"
	"github.com/loog-project/treediff/pkg/treediff"
)

// NoChangesError is returned by [TrackerService.Commit] when the tree equals
// the latest revision. Nothing is stored in that case.
type NoChangesError struct {
	Document string
	Latest   store.RevisionID
}

func (e *NoChangesError) Error() string {
	return fmt.Sprintf("no changes to %s since revision %s", e.Document, e.Latest)
}

// TrackerService records successive versions of named documents. Each
// commit stores the full tree and the changes against the previous commit.
type TrackerService struct {
	hs     store.HistoryStore
	differ *treediff.Differ
	cache  *stateCache
	logger zerolog.Logger
	now    func() time.Time
}

// NewTrackerService creates a new TrackerService instance.
// A nil [differ] uses the defaults of [treediff.New].
func NewTrackerService(hs store.HistoryStore, differ *treediff.Differ, logger zerolog.Logger) *TrackerService {
	if differ == nil {
		differ = treediff.New(treediff.WithLogger(logger))
	}
	return &TrackerService{
		hs:     hs,
		differ: differ,
		cache:  newStateCache(),
		logger: logger,
		now:    time.Now,
	}
}

// Commit persists [tree] as the next revision of [document] and returns the
// new revision ID together with the changes against the previous revision.
// The first commit of a document has no changes. [tree] is kept in memory
// as the base of the next diff and must not be modified afterwards.
func (t *TrackerService) Commit(
	ctx context.Context,
	document string,
	tree any,
	source string,
) (store.RevisionID, treediff.Changes, error) {
	snapshot := &store.Snapshot{Time: t.now(), Object: tree}
	rev := &store.Revision{Time: snapshot.Time, Source: source}

	latest, err := t.hs.GetLatestRevision(ctx, document)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return 0, nil, err
		}
		if err := t.hs.SetRevision(ctx, document, snapshot, rev); err != nil {
			return 0, nil, fmt.Errorf("failed to store initial revision: %w", err)
		}
		t.cache.set(document, &trackerState{tree: tree, rev: rev.ID})
		t.logger.Debug().Str("document", document).Msg("stored initial revision")
		return rev.ID, nil, nil
	}

	previous, err := t.state(ctx, document, latest)
	if err != nil {
		return 0, nil, err
	}
	changes, err := t.differ.Diff(previous, tree)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to diff against revision %s: %w", latest, err)
	}
	if len(changes) == 0 {
		return latest, nil, &NoChangesError{Document: document, Latest: latest}
	}

	rev.PreviousID = latest
	rev.Changes = changes
	if err := t.hs.SetRevision(ctx, document, snapshot, rev); err != nil {
		// another writer may have moved the document on
		t.cache.forget(document)
		return 0, nil, fmt.Errorf("failed to store revision: %w", err)
	}
	t.cache.set(document, &trackerState{tree: tree, rev: rev.ID})

	added, deleted, updated := changes.Count()
	t.logger.Debug().
		Str("document", document).
		Stringer("revision", rev.ID).
		Int("added", added).
		Int("deleted", deleted).
		Int("updated", updated).
		Msg("stored revision")
	return rev.ID, changes, nil
}

// state returns the tree of [rev], from the cache when it is hot.
func (t *TrackerService) state(ctx context.Context, document string, rev store.RevisionID) (any, error) {
	if st := t.cache.get(document); st != nil && st.rev == rev {
		return st.tree, nil
	}
	snap, err := t.hs.GetSnapshot(ctx, document, rev)
	if err != nil {
		return nil, fmt.Errorf("failed to load revision %s: %w", rev, err)
	}
	t.cache.set(document, &trackerState{tree: snap.Object, rev: rev})
	return snap.Object, nil
}

// Restore returns the full tree of [document] at [rev].
func (t *TrackerService) Restore(ctx context.Context, document string, rev store.RevisionID) (*store.Snapshot, error) {
	return t.hs.GetSnapshot(ctx, document, rev)
}

// History returns every revision of [document] in commit order.
func (t *TrackerService) History(ctx context.Context, document string) ([]*store.Revision, error) {
	if _, err := t.hs.GetLatestRevision(ctx, document); err != nil {
		return nil, err
	}
	var revs []*store.Revision
	err := t.hs.WalkRevisions(document, func(rev *store.Revision) bool {
		revs = append(revs, rev)
		return ctx.Err() == nil
	})
	if err != nil {
		return nil, err
	}
	return revs, ctx.Err()
}

// Compare diffs two stored revisions of [document].
func (t *TrackerService) Compare(ctx context.Context, document string, from, to store.RevisionID) (treediff.Changes, error) {
	left, err := t.hs.GetSnapshot(ctx, document, from)
	if err != nil {
		return nil, fmt.Errorf("failed to load revision %s: %w", from, err)
	}
	right, err := t.hs.GetSnapshot(ctx, document, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load revision %s: %w", to, err)
	}
	return t.differ.Diff(left.Object, right.Object)
}

// Close stops the cache janitor. The store is left open.
func (t *TrackerService) Close() {
	t.cache.close()
}
