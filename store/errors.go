package store

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrPartitionIndexGap is returned by EnsurePartition when asked to create a
// partition at an index other than the current count for its kind. It
// signals a programming error in partition allocation and is never retried.
var ErrPartitionIndexGap = errors.New("partition index gap")

// ErrNoTableFound is returned by the schema migrator when the target table
// has no catalog entries, ie the initial table write did not succeed as
// expected. The partition is unusable.
var ErrNoTableFound = errors.New("no table found in backing file")

// PartitionWriteError reports that the storage engine refused to create or
// write a partition table after both creation strategies were attempted.
// It is fatal for that partition.
type PartitionWriteError struct {
	Table string
	Err   error
}

func (e *PartitionWriteError) Error() string {
	return fmt.Sprintf("partition %q: %s", e.Table, e.Err)
}

// Unwrap returns the underlying engine error.
func (e *PartitionWriteError) Unwrap() error { return e.Err }

// Cause returns the underlying engine error (pkg/errors compatibility).
func (e *PartitionWriteError) Cause() error { return e.Err }

// MigrationError reports a failed statement of the schema-migration
// sequence. The partition must be treated as unusable: the store discards
// and recreates it rather than resuming writes into it.
type MigrationError struct {
	Table string
	Stmt  string
	Err   error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("partition %q: migration statement %q: %s", e.Table, e.Stmt, e.Err)
}

// Unwrap returns the underlying engine error.
func (e *MigrationError) Unwrap() error { return e.Err }

// Cause returns the underlying engine error (pkg/errors compatibility).
func (e *MigrationError) Cause() error { return e.Err }

// BatchError aggregates per-kind failures of a feature batch write. A failed
// kind aborts only that kind's ingestion; other kinds' partitions are
// unaffected.
type BatchError struct {
	Kinds map[string]error
}

func (e *BatchError) Error() string {
	var s = "feature batch failed for kinds:"
	for kind, err := range e.Kinds {
		s += fmt.Sprintf(" %q (%s)", kind, err)
	}
	return s
}
