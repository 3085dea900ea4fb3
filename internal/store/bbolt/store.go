package bbolt

import (
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/loog-project/treediff/internal/store"
)

var (
	bucketSnapshots = []byte("snapshots")      // <doc>|rev     -> store.Snapshot
	bucketChunks    = []byte("revisionChunks") // <doc>|chunkID -> []rawRevision
	bucketIndex     = []byte("index")          // <doc>|rev     -> indexEntry
	bucketLatest    = []byte("latest")         // <doc>         -> uint64(nextRev)
)

type Store struct {
	db    *bbolt.DB
	codec store.Codec

	counterMu sync.RWMutex
	counter   map[string]uint64
}

var _ store.HistoryStore = (*Store)(nil)

// New opens (or creates) a BoltDB database file.
// Pass nil for [codec] to use the default MessagePack implementation.
// Unless [durableSync] is set, writes are not fsync'd.
func New(path string, codec store.Codec, durableSync bool) (*Store, error) {
	if codec == nil {
		codec = store.DefaultCodec
	}
	db, err := bbolt.Open(path, 0o666, &bbolt.Options{
		Timeout:      0,
		NoSync:       !durableSync,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketSnapshots, bucketChunks, bucketIndex, bucketLatest} {
			if _, e := tx.CreateBucketIfNotExists(b); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create default buckets: %w", err)
	}
	return &Store{
		db:      db,
		codec:   codec,
		counter: make(map[string]uint64),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
