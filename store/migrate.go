package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.hubsync.dev/core/metrics"
)

// dedupConstraint is the column clause retrofitted onto every partition
// table: re-ingesting a feature ID replaces the older duplicate row.
var dedupConstraint = fmt.Sprintf(`"%s" TEXT UNIQUE ON CONFLICT REPLACE`, featureIDColumn)

// retrofitDedupConstraint performs the online schema rewrite which SQLite
// does not support directly: adding a column-level uniqueness constraint to
// an existing table. The table's catalog statements are captured, the
// CREATE TABLE is rewritten under a temporary name with the constraint
// injected before the closing clause of its column list, and the
// create / drop / rename swap plus re-application of the remaining catalog
// statements executes as one transaction. The table is guaranteed empty at
// migration time, so no data copy is required.
//
// A crash or error between the DROP and the COMMIT leaves the partition in
// an undefined state: the caller must treat it as unusable and recreate it
// rather than resume writes.
func retrofitDedupConstraint(db *sql.DB, table string) error {
	var ctx = context.Background()

	rows, err := db.QueryContext(ctx,
		`SELECT type, sql FROM sqlite_master WHERE tbl_name = ?`, table)
	if err != nil {
		return &MigrationError{Table: table, Err: err}
	}
	defer rows.Close()

	// Capture the table's catalog statements. One is the CREATE TABLE; the
	// rest (indexes, triggers) are re-applied verbatim after the swap.
	// Internal auto-indexes carry a NULL statement and are skipped.
	var createSQL string
	var others []string
	for rows.Next() {
		var typ string
		var stmt sql.NullString
		if err = rows.Scan(&typ, &stmt); err != nil {
			return &MigrationError{Table: table, Err: err}
		}
		if !stmt.Valid {
			continue
		}
		if typ == "table" && createSQL == "" {
			createSQL = stmt.String
		} else {
			others = append(others, stmt.String)
		}
	}
	if err = rows.Err(); err != nil {
		return &MigrationError{Table: table, Err: err}
	}
	if createSQL == "" {
		return errors.WithMessagef(ErrNoTableFound, "table %q", table)
	}

	var tmp = "tmp_" + table
	createSQL = strings.Replace(createSQL, table, tmp, 1)

	var tail = strings.LastIndex(createSQL, ")")
	if tail < 0 {
		return &MigrationError{Table: table, Stmt: createSQL,
			Err: errors.New("malformed CREATE TABLE statement")}
	}
	createSQL = createSQL[:tail] + ", " + dedupConstraint + createSQL[tail:]

	var sequence = []string{
		`PRAGMA foreign_keys = '0'`,
		`BEGIN TRANSACTION`,
		createSQL,
		`PRAGMA defer_foreign_keys = '1'`,
		fmt.Sprintf(`DROP TABLE "%s"`, table),
		fmt.Sprintf(`ALTER TABLE "%s" RENAME TO "%s"`, tmp, table),
		`PRAGMA defer_foreign_keys = '0'`,
	}
	sequence = append(sequence, others...)
	sequence = append(sequence, `COMMIT`, `PRAGMA foreign_keys = '1'`)

	// The sequence must run on a single connection: PRAGMAs and the open
	// transaction are connection state.
	conn, err := db.Conn(ctx)
	if err != nil {
		return &MigrationError{Table: table, Err: err}
	}
	defer conn.Close()

	for _, stmt := range sequence {
		if _, err = conn.ExecContext(ctx, stmt); err != nil {
			metrics.StoreMigrationFailuresTotal.Inc()
			log.WithFields(log.Fields{
				"table": table,
				"stmt":  stmt,
				"err":   err,
			}).Error("schema migration failed")
			return &MigrationError{Table: table, Stmt: stmt, Err: err}
		}
	}
	return nil
}
