// Package store provides the SQLite-backed persistence layer for clients
// and their interaction log.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const clientsSchemaSQL = `
CREATE TABLE IF NOT EXISTS clients (
	id                 TEXT PRIMARY KEY,
	first_name         TEXT NOT NULL,
	middle             TEXT NOT NULL DEFAULT '',
	last_name          TEXT NOT NULL,
	aka                TEXT NOT NULL DEFAULT '',
	gender             TEXT NOT NULL DEFAULT '',
	race               TEXT NOT NULL DEFAULT '',
	ethnicity          TEXT NOT NULL DEFAULT '',
	age                TEXT NOT NULL DEFAULT '',
	age_range          TEXT NOT NULL DEFAULT '',
	sexual_orientation TEXT NOT NULL DEFAULT '',
	height             TEXT NOT NULL DEFAULT '',
	weight             TEXT NOT NULL DEFAULT '',
	hair               TEXT NOT NULL DEFAULT '',
	eyes               TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	notes              TEXT NOT NULL DEFAULT '',
	phone              TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	veteran_status     INTEGER NOT NULL DEFAULT 0,
	disabled           INTEGER NOT NULL DEFAULT 0,
	disabled_details   TEXT NOT NULL DEFAULT '',
	living_situation   TEXT NOT NULL DEFAULT '',
	service_referrals  TEXT NOT NULL DEFAULT '[]',
	referred_from      TEXT NOT NULL DEFAULT '',
	contacts           INTEGER NOT NULL DEFAULT 0,
	last_contact       DATETIME NOT NULL,
	date_created       TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clients_created ON clients(created_at);
`

// interactionsDDL is reused by the legacy migration, which rebuilds the
// table under a temporary name.
const interactionsDDL = `
CREATE TABLE IF NOT EXISTS %s (
	id               TEXT PRIMARY KEY,
	client_id        TEXT NOT NULL REFERENCES clients(id),
	worker_id        TEXT NOT NULL DEFAULT '',
	worker_name      TEXT NOT NULL DEFAULT '',
	interaction_type TEXT NOT NULL,
	notes            TEXT NOT NULL DEFAULT '',
	latitude         REAL,
	longitude        REAL,
	accuracy         REAL,
	interaction_date DATETIME NOT NULL,
	created_at       DATETIME NOT NULL
)`

const interactionIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_interactions_client ON interactions(client_id);
CREATE INDEX IF NOT EXISTS idx_interactions_date ON interactions(interaction_date);
`

// DB wraps a sql.DB with case-record operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database, applies the schema, and
// migrates any legacy dual-schema interaction rows to the canonical
// column set.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(clientsSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply clients schema: %w", err)
	}
	if _, err := conn.Exec(fmt.Sprintf(interactionsDDL, "interactions")); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply interactions schema: %w", err)
	}
	if err := migrateLegacyInteractions(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: migrate legacy interactions: %w", err)
	}
	if _, err := conn.Exec(interactionIndexSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply interaction indexes: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Legacy interaction columns written by the pre-canonical intake paths.
var legacyInteractionColumns = []string{"log_type", "outreach_user", "location_lat", "location_lng"}

// migrateLegacyInteractions rebuilds the interactions table when it still
// carries legacy column names (log_type, outreach_user, location_lat,
// location_lng). Values are folded into the canonical columns with
// canonical-wins coalescing, then the legacy columns disappear with the
// old table. Runs at most once; a canonical-only table is left untouched.
func migrateLegacyInteractions(conn *sql.DB) error {
	cols, err := tableColumns(conn, "interactions")
	if err != nil {
		return err
	}
	legacy := false
	for _, c := range legacyInteractionColumns {
		if _, ok := cols[c]; ok {
			legacy = true
			break
		}
	}
	if !legacy {
		return nil
	}

	has := func(name string) bool {
		_, ok := cols[name]
		return ok
	}
	// Coalesce a canonical text column with its legacy twin. Empty
	// strings count as absent so that rows written under either naming
	// convention read back identically.
	textExpr := func(canonical, legacyName string) string {
		switch {
		case has(canonical) && has(legacyName):
			return fmt.Sprintf("COALESCE(NULLIF(%s, ''), %s, '')", canonical, legacyName)
		case has(canonical):
			return fmt.Sprintf("COALESCE(%s, '')", canonical)
		case has(legacyName):
			return fmt.Sprintf("COALESCE(%s, '')", legacyName)
		default:
			return "''"
		}
	}
	numExpr := func(canonical, legacyName string) string {
		switch {
		case has(canonical) && has(legacyName):
			return fmt.Sprintf("COALESCE(%s, %s)", canonical, legacyName)
		case has(canonical):
			return canonical
		case has(legacyName):
			return legacyName
		default:
			return "NULL"
		}
	}
	idExpr := "lower(hex(randomblob(16)))"
	if has("id") {
		idExpr = "id"
	}
	dateExpr := "CURRENT_TIMESTAMP"
	if has("interaction_date") {
		dateExpr = "interaction_date"
	} else if has("created_at") {
		dateExpr = "created_at"
	}
	createdExpr := "CURRENT_TIMESTAMP"
	if has("created_at") {
		createdExpr = "created_at"
	}

	exprs := []string{
		idExpr,
		textExpr("client_id", ""),
		textExpr("worker_id", ""),
		textExpr("worker_name", "outreach_user"),
		textExpr("interaction_type", "log_type"),
		textExpr("notes", ""),
		numExpr("latitude", "location_lat"),
		numExpr("longitude", "location_lng"),
		numExpr("accuracy", ""),
		dateExpr,
		createdExpr,
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(fmt.Sprintf(interactionsDDL, "interactions_canonical")); err != nil {
		return fmt.Errorf("create canonical table: %w", err)
	}
	copySQL := fmt.Sprintf(`
		INSERT INTO interactions_canonical
			(id, client_id, worker_id, worker_name, interaction_type, notes,
			 latitude, longitude, accuracy, interaction_date, created_at)
		SELECT %s FROM interactions
	`, strings.Join(exprs, ", "))
	if _, err := tx.Exec(copySQL); err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}
	if _, err := tx.Exec(`DROP TABLE interactions`); err != nil {
		return fmt.Errorf("drop legacy table: %w", err)
	}
	if _, err := tx.Exec(`ALTER TABLE interactions_canonical RENAME TO interactions`); err != nil {
		return fmt.Errorf("rename canonical table: %w", err)
	}

	return tx.Commit()
}

func tableColumns(conn *sql.DB, table string) (map[string]struct{}, error) {
	rows, err := conn.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return nil, err
		}
		out[name] = struct{}{}
	}
	return out, rows.Err()
}
