package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidRevision = errors.New("invalid revision")
)

// HistoryStore keeps the revisions of named documents. Every revision has a
// [Revision] record (the change list against its predecessor) and a
// [Snapshot] (the full document).
type HistoryStore interface {
	// SetRevision claims the next revision ID of [documentID], assigns it to
	// both records and stores them atomically.
	SetRevision(ctx context.Context, documentID string, snap *Snapshot, rev *Revision) error

	Get(ctx context.Context, documentID string, revID RevisionID) (*Snapshot, *Revision, error)
	GetSnapshot(ctx context.Context, documentID string, revID RevisionID) (*Snapshot, error)
	GetRevision(ctx context.Context, documentID string, revID RevisionID) (*Revision, error)
	GetLatestRevision(ctx context.Context, documentID string) (RevisionID, error)

	// WalkRevisions calls [fn] for every revision of [documentID] in order
	// until it returns false.
	WalkRevisions(documentID string, fn func(rev *Revision) bool) error
	// Documents lists the IDs of every tracked document.
	Documents(ctx context.Context) ([]string, error)

	Close() error
}
