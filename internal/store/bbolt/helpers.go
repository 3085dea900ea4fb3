package bbolt

import (
	"encoding/binary"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/loog-project/treediff/internal/store"
)

// chunkSize is the number of revisions stored together under one key.
const chunkSize = 64

var (
	errRevisionChunkMissing = errors.New("revision chunk missing")
	errRevisionSlotEmpty    = errors.New("revision slot empty")
)

type indexEntry struct {
	Chunk  uint64 `msgpack:"c"`
	Offset uint16 `msgpack:"o"`
}

type rawRevision struct {
	Data []byte `msgpack:"d"`
}

func keyDocumentRevision(documentID string, id store.RevisionID) []byte {
	return keyDocumentUint(documentID, uint64(id))
}

func keyDocumentChunk(documentID string, chunkID uint64) []byte {
	return keyDocumentUint(documentID, chunkID)
}

func keyDocumentUint(documentID string, n uint64) []byte {
	buf := make([]byte, len(documentID)+1+8)
	copy(buf, documentID)
	buf[len(documentID)] = '|'
	binary.BigEndian.PutUint64(buf[len(documentID)+1:], n)
	return buf
}

func documentPrefix(documentID string) []byte {
	return append([]byte(documentID), '|')
}

// claimNextRevision atomically increments the counter in bucketLatest *and*
// updates the in-memory cache. It returns the newly assigned revision number.
func (s *Store) claimNextRevision(tx *bbolt.Tx, documentID string) (store.RevisionID, error) {
	latest := tx.Bucket(bucketLatest)

	var next uint64
	if raw := latest.Get([]byte(documentID)); raw != nil {
		next = binary.BigEndian.Uint64(raw)
	}
	revisionNumber := store.RevisionID(next)
	next++

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := latest.Put([]byte(documentID), buf); err != nil {
		return 0, err
	}

	// the cache is only valid once the transaction commits
	tx.OnCommit(func() {
		s.counterMu.Lock()
		s.counter[documentID] = next
		s.counterMu.Unlock()
	})

	return revisionNumber, nil
}

// putChunk stores [data] at [offset] of the chunk, growing it as needed.
func (s *Store) putChunk(tx *bbolt.Tx, documentID string, chunkID uint64, offset uint16, data []byte) error {
	bucket := tx.Bucket(bucketChunks)
	key := keyDocumentChunk(documentID, chunkID)

	var arr []rawRevision
	if raw := bucket.Get(key); raw != nil {
		if err := s.codec.Unmarshal(raw, &arr); err != nil {
			return err
		}
	}
	for len(arr) <= int(offset) {
		arr = append(arr, rawRevision{})
	}
	arr[offset] = rawRevision{Data: data}

	payload, err := s.codec.Marshal(arr)
	if err != nil {
		return err
	}
	return bucket.Put(key, payload)
}

func (s *Store) readChunk(tx *bbolt.Tx, documentID string, chunkID uint64) ([]rawRevision, error) {
	raw := tx.Bucket(bucketChunks).Get(keyDocumentChunk(documentID, chunkID))
	if raw == nil {
		return nil, errRevisionChunkMissing
	}
	var arr []rawRevision
	if err := s.codec.Unmarshal(raw, &arr); err != nil {
		return nil, err
	}
	return arr, nil
}

func (s *Store) readIndex(tx *bbolt.Tx, documentID string, revID store.RevisionID) (*indexEntry, error) {
	raw := tx.Bucket(bucketIndex).Get(keyDocumentRevision(documentID, revID))
	if raw == nil {
		return nil, store.ErrNotFound
	}
	var idx indexEntry
	if err := s.codec.Unmarshal(raw, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}
