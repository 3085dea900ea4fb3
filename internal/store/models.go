package store

import (
	"fmt"
	"time"

	"github.com/loog-project/treediff/pkg/treediff"
)

type RevisionID uint64

func (id RevisionID) String() string {
	return fmt.Sprintf("%08x", uint64(id))
}

type Snapshot struct {
	/// Revision Metadata
	// ID of the revision this snapshot belongs to
	ID RevisionID `msgpack:"i" json:"ID,omitempty"`
	// Time is when the revision was committed.
	Time time.Time `msgpack:"t" json:"time"`

	/// Snapshot Metadata
	// Object is the full document as of this revision.
	Object any `msgpack:"o" json:"object,omitempty"`
}

type Revision struct {
	/// Revision Metadata
	// ID of the revision
	ID RevisionID `msgpack:"i" json:"ID,omitempty"`
	// PreviousID is the ID of the previous revision. Unset for the first revision.
	PreviousID RevisionID `msgpack:"<,omitempty" json:"previousID,omitempty"`
	// Initial is set on the first revision of a document, which has no changes.
	Initial bool `msgpack:"0,omitempty" json:"initial,omitempty"`
	// Time is when the revision was committed.
	Time time.Time `msgpack:"t" json:"time"`
	// Source describes where the document came from, e.g. a file path.
	Source string `msgpack:"f,omitempty" json:"source,omitempty"`

	/// Change Metadata
	// Changes turn the previous revision's document into this one.
	// see [treediff.Diff] for more details.
	Changes treediff.Changes `msgpack:"c" json:"changes,omitempty"`
}
