package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.hubsync.dev/core/geojson"
	"go.hubsync.dev/core/hub"
)

// DefaultExt is the default backing file extension.
const DefaultExt = "gpkg"

// Config configures a Store.
type Config struct {
	// Dir is the directory holding backing files and provenance sidecars.
	Dir string
	// Ext is the backing file extension. Defaults to DefaultExt.
	Ext string
	// MaxPartitionRows caps the row count of one partition table. When a
	// kind's lowest partitions are full, writes grow a new partition of the
	// next index. Zero means unlimited. The cap exists because embedded
	// single-file stores bound their simultaneous open connections.
	MaxPartitionRows int
}

// Store materializes one remote space into a SQLite backing file, with one
// table per (geometry kind, index) partition.
type Store struct {
	cfg  Config
	fs   afero.Fs
	meta hub.SpaceMeta
	conn hub.Connection
	id   Identity

	db *sql.DB
	// partitions maps geometry kind to its partitions in index order.
	partitions map[string][]*Partition
}

// NewStore returns a Store of the given space. |unique| of zero draws a
// fresh uniqueness token. The backing file is not touched until the first
// partition is created.
func NewStore(fs afero.Fs, cfg Config, conn hub.Connection, meta hub.SpaceMeta, tags string, unique int64) *Store {
	if cfg.Ext == "" {
		cfg.Ext = DefaultExt
	}
	if unique == 0 {
		unique = NewUnique()
	}
	return &Store{
		cfg:        cfg,
		fs:         fs,
		meta:       meta,
		conn:       conn,
		id:         Identity{SpaceID: meta.ID, Tags: tags, Unique: unique},
		partitions: make(map[string][]*Partition),
	}
}

// Identity returns the store's identity triplet.
func (s *Store) Identity() Identity { return s.id }

// Meta returns the store's space metadata provenance record.
func (s *Store) Meta() hub.SpaceMeta { return s.meta }

// Connection returns the store's connection descriptor provenance record.
func (s *Store) Connection() hub.Connection { return s.conn }

// Path returns the backing file path.
func (s *Store) Path() string {
	return filepath.Join(s.cfg.Dir, s.id.Filename(s.cfg.Ext))
}

// DB returns the backing database, opening it if required.
func (s *Store) DB() (*sql.DB, error) { return s.backingDB() }

// Close closes the backing database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	var err = s.db.Close()
	s.db = nil
	return err
}

// backingDB opens the backing file on first use. Opening is attempted first
// in add-layer mode (the file already exists), and on a data-source-creation
// failure retried once in create-new-file mode. The two failure causes are
// mutually exclusive; a second consecutive failure is surfaced as fatal with
// no further fallback.
func (s *Store) backingDB() (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	var path = s.Path()

	var db, err = openSQLite(path, false)
	if err != nil {
		log.WithFields(log.Fields{"path": path, "err": err}).
			Debug("backing file not openable; creating")
		db, err = openSQLite(path, true)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "opening backing file %s", path)
	}

	// Single logical writer: never allow two concurrent connections.
	db.SetMaxOpenConns(1)
	s.db = db
	return db, nil
}

func openSQLite(path string, create bool) (*sql.DB, error) {
	var mode = "rw"
	if create {
		mode = "rwc"
	}
	var db, err = sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=%s", path, mode))
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// provenance is the sidecar record persisted beside the backing file. Its
// keys match the metadata keys of the original hub layer integration, and
// all four fields round-trip exactly through a save / reload cycle.
type provenance struct {
	Meta   hub.SpaceMeta  `json:"xyz-hub"`
	Conn   hub.Connection `json:"xyz-hub-conn"`
	Tags   string         `json:"xyz-hub-tags"`
	Unique int64          `json:"xyz-hub-id"`
}

func (s *Store) sidecarPath() string { return s.Path() + ".meta.json" }

// SaveProvenance persists the store's provenance sidecar.
func (s *Store) SaveProvenance() error {
	var b, err = json.Marshal(provenance{
		Meta:   s.meta,
		Conn:   s.conn,
		Tags:   s.id.Tags,
		Unique: s.id.Unique,
	})
	if err != nil {
		return errors.WithMessage(err, "marshalling provenance")
	}
	if err = afero.WriteFile(s.fs, s.sidecarPath(), b, 0644); err != nil {
		return errors.WithMessagef(err, "writing %s", s.sidecarPath())
	}
	return nil
}

// OpenStore re-attaches to a previously created store given its backing file
// name. The provenance sidecar is loaded, and the backing file's tables are
// scanned to reconstruct the exact partition listing: indices of each kind
// must be contiguous from zero, in their original creation order.
func OpenStore(fs afero.Fs, cfg Config, filename string) (*Store, error) {
	if cfg.Ext == "" {
		cfg.Ext = DefaultExt
	}
	var path = filepath.Join(cfg.Dir, filename)

	var b, err = afero.ReadFile(fs, path+".meta.json")
	if err != nil {
		return nil, errors.WithMessagef(err, "reading provenance of %s", filename)
	}
	var p provenance
	if err = json.Unmarshal(b, &p); err != nil {
		return nil, errors.WithMessagef(err, "parsing provenance of %s", filename)
	}

	var s = &Store{
		cfg:        cfg,
		fs:         fs,
		meta:       p.Meta,
		conn:       p.Conn,
		id:         Identity{SpaceID: p.Meta.ID, Tags: p.Tags, Unique: p.Unique},
		partitions: make(map[string][]*Partition),
	}

	// Re-attachment opens the existing file only; it must not create one.
	if s.db, err = openSQLite(path, false); err != nil {
		return nil, errors.WithMessagef(err, "opening backing file %s", path)
	}
	s.db.SetMaxOpenConns(1)

	if err = s.scanPartitions(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// scanPartitions rebuilds the partition listing from the backing file's
// catalog.
func (s *Store) scanPartitions() error {
	var rows, err = s.db.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name NOT LIKE 'tmp_%'`)
	if err != nil {
		return errors.WithMessage(err, "scanning backing tables")
	}
	defer rows.Close()

	var byKind = make(map[string][]int)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return errors.WithMessage(err, "scanning table name")
		}
		var kind, idx, ok = parseTableName(name)
		if !ok {
			continue // Not a partition table.
		}
		byKind[kind] = append(byKind[kind], idx)
	}
	if err = rows.Err(); err != nil {
		return errors.WithMessage(err, "scanning backing tables")
	}

	for kind, indices := range byKind {
		sort.Ints(indices)
		for i, idx := range indices {
			if i != idx {
				return errors.WithMessagef(ErrPartitionIndexGap,
					"kind %q has table index %d at position %d", kind, idx, i)
			}
			s.partitions[kind] = append(s.partitions[kind], &Partition{
				Kind:  kind,
				Index: idx,
				Table: tableName(kind, idx),
				Path:  s.Path(),
			})
		}
	}
	return nil
}

// parseTableName splits a partition table name into its kind and index.
func parseTableName(name string) (kind string, idx int, ok bool) {
	var i = strings.LastIndex(name, "_")
	if i <= 0 || i == len(name)-1 {
		return "", 0, false
	}
	var n, err = strconv.Atoi(name[i+1:])
	if err != nil || n < 0 {
		return "", 0, false
	}
	if _, known := geojson.KindOrder(name[:i]); !known {
		return "", 0, false
	}
	return name[:i], n, true
}
