package bbolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/loog-project/treediff/internal/store"
)

// SetRevision stores a full snapshot and the revision record and bumps the counter.
func (s *Store) SetRevision(
	_ context.Context,
	documentID string,
	snapshot *store.Snapshot,
	rev *store.Revision,
) error {
	if snapshot == nil || rev == nil {
		return store.ErrInvalidRevision
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		revNum, err := s.claimNextRevision(tx, documentID)
		if err != nil {
			return err
		}
		if revNum > 0 && rev.PreviousID >= revNum {
			return fmt.Errorf("%w: previous %s is not before %s", store.ErrInvalidRevision, rev.PreviousID, revNum)
		}
		snapshot.ID = revNum
		rev.ID = revNum
		rev.Initial = revNum == 0

		key := keyDocumentRevision(documentID, revNum)

		// save the snapshot
		payload, err := s.codec.Marshal(snapshot)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketSnapshots).Put(key, payload); err != nil {
			return err
		}

		// save the revision into its chunk
		chunkID := uint64(revNum) / chunkSize
		offset := uint16(uint64(revNum) % chunkSize)
		recBytes, err := s.codec.Marshal(rev)
		if err != nil {
			return err
		}
		if err := s.putChunk(tx, documentID, chunkID, offset, recBytes); err != nil {
			return err
		}

		// update the index
		idxBytes, err := s.codec.Marshal(&indexEntry{Chunk: chunkID, Offset: offset})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketIndex).Put(key, idxBytes)
	})
}

// Get returns both records of a revision.
func (s *Store) Get(ctx context.Context, documentID string, revID store.RevisionID) (*store.Snapshot, *store.Revision, error) {
	snap, err := s.GetSnapshot(ctx, documentID, revID)
	if err != nil {
		return nil, nil, err
	}
	rev, err := s.GetRevision(ctx, documentID, revID)
	if err != nil {
		return nil, nil, err
	}
	return snap, rev, nil
}

func (s *Store) GetSnapshot(_ context.Context, documentID string, revID store.RevisionID) (*store.Snapshot, error) {
	var snapshot store.Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketSnapshots).Get(keyDocumentRevision(documentID, revID))
		if v == nil {
			return store.ErrNotFound
		}
		return s.codec.Unmarshal(v, &snapshot)
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *Store) GetRevision(_ context.Context, documentID string, revID store.RevisionID) (*store.Revision, error) {
	var rev store.Revision
	err := s.db.View(func(tx *bbolt.Tx) error {
		idx, err := s.readIndex(tx, documentID, revID)
		if err != nil {
			return err
		}
		arr, err := s.readChunk(tx, documentID, idx.Chunk)
		if err != nil {
			return err
		}
		if int(idx.Offset) >= len(arr) || arr[idx.Offset].Data == nil {
			return errRevisionSlotEmpty
		}
		return s.codec.Unmarshal(arr[idx.Offset].Data, &rev)
	})
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// GetLatestRevision returns the highest committed revision for documentID.
func (s *Store) GetLatestRevision(
	_ context.Context,
	documentID string,
) (store.RevisionID, error) {
	// check cache first
	s.counterMu.RLock()
	if next, ok := s.counter[documentID]; ok {
		s.counterMu.RUnlock()
		return store.RevisionID(next - 1), nil
	}
	s.counterMu.RUnlock()

	var next uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketLatest).Get([]byte(documentID))
		if v == nil {
			return store.ErrNotFound
		}
		next = binary.BigEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.counterMu.Lock()
	s.counter[documentID] = next
	s.counterMu.Unlock()
	return store.RevisionID(next - 1), nil
}

// WalkRevisions iterates the index in revision order and decodes each chunk once.
func (s *Store) WalkRevisions(documentID string, fn func(rev *store.Revision) bool) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		prefix := documentPrefix(documentID)
		c := tx.Bucket(bucketIndex).Cursor()

		var (
			chunkID uint64
			chunk   []rawRevision
		)
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			// keys of documents whose ID has this one as a prefix
			if len(k) != len(prefix)+8 {
				continue
			}
			var idx indexEntry
			if err := s.codec.Unmarshal(v, &idx); err != nil {
				return err
			}
			if chunk == nil || idx.Chunk != chunkID {
				arr, err := s.readChunk(tx, documentID, idx.Chunk)
				if err != nil {
					return err
				}
				chunk, chunkID = arr, idx.Chunk
			}
			if int(idx.Offset) >= len(chunk) || chunk[idx.Offset].Data == nil {
				return errRevisionSlotEmpty
			}
			var rev store.Revision
			if err := s.codec.Unmarshal(chunk[idx.Offset].Data, &rev); err != nil {
				return err
			}
			if !fn(&rev) {
				return nil
			}
		}
		return nil
	})
}

// Documents lists every document with at least one revision, in key order.
func (s *Store) Documents(_ context.Context) ([]string, error) {
	var docs []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLatest).ForEach(func(k, _ []byte) error {
			docs = append(docs, string(k))
			return nil
		})
	})
	return docs, err
}
