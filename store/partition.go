package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.hubsync.dev/core/geojson"
	"go.hubsync.dev/core/metrics"
)

// featureIDColumn is the deduplication key column of every partition table.
const featureIDColumn = "xyz_id"

// Partition is one backing table holding features of a single geometry kind.
// Its Index is assigned by EnsurePartition in strictly increasing order from
// zero and is immutable thereafter: re-opening a store reconstructs the same
// indices from the backing file's table listing.
type Partition struct {
	Kind  string
	Index int
	Table string
	Path  string
}

func tableName(kind string, idx int) string { return fmt.Sprintf("%s_%d", kind, idx) }

// Partitions returns the partitions of |kind|, in index order. The returned
// slice must not be modified.
func (s *Store) Partitions(kind string) []*Partition { return s.partitions[kind] }

// Kinds returns the geometry kinds having at least one partition, in display
// order.
func (s *Store) Kinds() []string {
	var kinds []string
	for _, kind := range []string{
		geojson.KindPoint, geojson.KindLine, geojson.KindPolygon,
		geojson.KindUnknown, geojson.KindNoGeom,
	} {
		if len(s.partitions[kind]) != 0 {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// EnsurePartition returns the partition of (kind, idx), creating it if idx
// equals the current partition count of the kind. Any other idx is a
// programming error surfaced as ErrPartitionIndexGap: partitions grow
// strictly append-only. Callers must always obtain partitions from
// EnsurePartition's return value, never by computing indices independently.
func (s *Store) EnsurePartition(kind string, idx int) (*Partition, error) {
	var lst = s.partitions[kind]

	if idx < len(lst) {
		return lst[idx], nil
	}
	if idx != len(lst) {
		return nil, errors.WithMessagef(ErrPartitionIndexGap,
			"kind %q index %d (current count %d)", kind, idx, len(lst))
	}

	var db, err = s.backingDB()
	if err != nil {
		return nil, &PartitionWriteError{Table: tableName(kind, idx), Err: err}
	}

	var table = tableName(kind, idx)

	// Write the initial, empty table and its index.
	for _, stmt := range []string{
		fmt.Sprintf(`CREATE TABLE "%s" ("fid" INTEGER PRIMARY KEY, "geom" TEXT, "properties" TEXT)`, table),
		fmt.Sprintf(`CREATE INDEX "%s_geom_idx" ON "%s" ("geom")`, table, table),
	} {
		if _, err = db.Exec(stmt); err != nil {
			return nil, &PartitionWriteError{Table: table, Err: err}
		}
	}

	// Retrofit the dedup constraint before the table is exposed. On failure
	// the partition is unusable and is not registered.
	if err = retrofitDedupConstraint(db, table); err != nil {
		return nil, err
	}

	var p = &Partition{Kind: kind, Index: idx, Table: table, Path: s.Path()}
	s.partitions[kind] = append(lst, p)
	metrics.StorePartitionsCreatedTotal.Inc()

	log.WithFields(log.Fields{
		"kind":  kind,
		"index": idx,
		"table": table,
		"path":  p.Path,
	}).Info("created partition")

	return p, nil
}

// WriteFeatureBatch ingests |features|, grouped by geometry kind and routed
// to each kind's partitions. Re-written feature IDs silently overwrite the
// prior row. A failure of one kind aborts that kind's ingestion only; other
// kinds proceed, and failures are reported together as a *BatchError.
func (s *Store) WriteFeatureBatch(features []geojson.Feature) error {
	var failed map[string]error

	for _, batch := range geojson.GroupByKind(features) {
		if err := s.writeKind(batch); err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[batch.Kind] = err
		}
	}
	if failed != nil {
		return &BatchError{Kinds: failed}
	}
	return nil
}

func (s *Store) writeKind(batch geojson.Batch) error {
	var p, err = s.partitionFor(batch.Kind, len(batch.Features))
	if err != nil {
		return err
	}
	var db *sql.DB
	if db, err = s.backingDB(); err != nil {
		return &PartitionWriteError{Table: p.Table, Err: err}
	}

	var tx *sql.Tx
	if tx, err = db.Begin(); err != nil {
		return &PartitionWriteError{Table: p.Table, Err: err}
	}
	var stmt *sql.Stmt
	if stmt, err = tx.Prepare(fmt.Sprintf(
		`INSERT INTO "%s" ("%s", "geom", "properties") VALUES (?, ?, ?)`,
		p.Table, featureIDColumn)); err != nil {
		_ = tx.Rollback()
		return &PartitionWriteError{Table: p.Table, Err: err}
	}

	var bytes int
	for _, f := range batch.Features {
		var geom, props []byte
		if f.Geometry != nil {
			if geom, err = json.Marshal(f.Geometry); err != nil {
				_ = tx.Rollback()
				return &PartitionWriteError{Table: p.Table, Err: err}
			}
		}
		if props, err = json.Marshal(f.Properties); err != nil {
			_ = tx.Rollback()
			return &PartitionWriteError{Table: p.Table, Err: err}
		}

		// NULL feature IDs are permitted and never collide; empty hub IDs
		// must not replace one another.
		var id interface{}
		if f.ID != "" {
			id = f.ID
		}
		if _, err = stmt.Exec(id, nullable(geom), nullable(props)); err != nil {
			_ = tx.Rollback()
			return &PartitionWriteError{Table: p.Table, Err: err}
		}
		bytes += len(geom) + len(props)
	}
	if err = tx.Commit(); err != nil {
		return &PartitionWriteError{Table: p.Table, Err: err}
	}
	metrics.StoreRowsUpsertedTotal.Add(float64(len(batch.Features)))

	log.WithFields(log.Fields{
		"kind":  batch.Kind,
		"table": p.Table,
		"rows":  len(batch.Features),
		"size":  humanize.Bytes(uint64(bytes)),
	}).Debug("wrote feature batch")

	return nil
}

func nullable(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// partitionFor selects the partition receiving a batch of |incoming|
// features of |kind|: the lowest-index partition with spare capacity, or a
// newly grown partition when all are full.
func (s *Store) partitionFor(kind string, incoming int) (*Partition, error) {
	var lst = s.partitions[kind]

	if s.cfg.MaxPartitionRows == 0 {
		if len(lst) != 0 {
			return lst[0], nil
		}
		return s.EnsurePartition(kind, 0)
	}

	for _, p := range lst {
		var n, err = s.RowCount(p)
		if err != nil {
			return nil, err
		}
		if n+incoming <= s.cfg.MaxPartitionRows {
			return p, nil
		}
	}
	return s.EnsurePartition(kind, len(lst))
}

// RowCount returns the current row count of a partition.
func (s *Store) RowCount(p *Partition) (int, error) {
	var db, err = s.backingDB()
	if err != nil {
		return 0, err
	}
	var n int
	if err = db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, p.Table)).Scan(&n); err != nil {
		return 0, &PartitionWriteError{Table: p.Table, Err: err}
	}
	return n, nil
}
