package store

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// legacyInteractionsDDL mirrors the hosted table after both write paths
// had extended it: canonical and legacy column names side by side.
const legacyInteractionsDDL = `
CREATE TABLE interactions (
	id               TEXT PRIMARY KEY,
	client_id        TEXT NOT NULL,
	worker_id        TEXT,
	worker_name      TEXT,
	interaction_type TEXT,
	notes            TEXT,
	location_lat     REAL,
	location_lng     REAL,
	log_type         TEXT,
	outreach_user    TEXT,
	latitude         REAL,
	longitude        REAL,
	location         TEXT,
	zone             TEXT,
	duration         INTEGER,
	interaction_date DATETIME,
	created_at       DATETIME
)`

func TestOpenMigratesLegacyInteractions(t *testing.T) {
	dbFile, err := os.CreateTemp("", "outreach-migrate-test-*.db")
	require.NoError(t, err)
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	path := dbFile.Name()

	// Create the canonical schema and a client for the rows to reference.
	db, err := Open(path)
	require.NoError(t, err)
	base := time.Now().UTC().Truncate(time.Second)
	client, err := db.InsertClient(testClient("Randel", base))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Replace the interactions table with the historical dual-schema
	// shape and write one row under each naming convention.
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`DROP TABLE interactions`)
	require.NoError(t, err)
	_, err = raw.Exec(legacyInteractionsDDL)
	require.NoError(t, err)

	// Newer writer: log_type / outreach_user / latitude / longitude.
	_, err = raw.Exec(`
		INSERT INTO interactions (id, client_id, log_type, outreach_user, notes, latitude, longitude, interaction_date, created_at)
		VALUES ('legacy-new', ?, 'service', 'jsmith', 'water delivered', 33.2, -117.2, ?, ?)
	`, client.ID, base.Add(time.Hour), base.Add(time.Hour))
	require.NoError(t, err)

	// Older writer: interaction_type / worker_name / location_lat / location_lng.
	_, err = raw.Exec(`
		INSERT INTO interactions (id, client_id, interaction_type, worker_name, notes, location_lat, location_lng, interaction_date, created_at)
		VALUES ('legacy-old', ?, 'contact', 'jsmith', 'checked in', 33.2, -117.2, ?, ?)
	`, client.ID, base, base)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	// Reopen: the migration folds both conventions into the canonical
	// columns and drops the legacy ones.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	interactions, err := db.ListInteractions(client.ID, 0)
	require.NoError(t, err)
	require.Len(t, interactions, 2)

	// Newest first: the log_type row.
	require.Equal(t, "legacy-new", interactions[0].ID)
	require.Equal(t, "service", interactions[0].Type)
	require.Equal(t, "jsmith", interactions[0].WorkerName)
	require.NotNil(t, interactions[0].Latitude)
	require.InDelta(t, 33.2, *interactions[0].Latitude, 1e-9)

	require.Equal(t, "legacy-old", interactions[1].ID)
	require.Equal(t, "contact", interactions[1].Type)
	require.Equal(t, "jsmith", interactions[1].WorkerName)
	require.NotNil(t, interactions[1].Longitude)
	require.InDelta(t, -117.2, *interactions[1].Longitude, 1e-9)

	cols, err := tableColumns(db.conn, "interactions")
	require.NoError(t, err)
	for _, legacy := range legacyInteractionColumns {
		_, ok := cols[legacy]
		require.False(t, ok, "legacy column %s survived migration", legacy)
	}
}

func TestOpenIsIdempotentOnCanonicalSchema(t *testing.T) {
	dbFile, err := os.CreateTemp("", "outreach-migrate-test-*.db")
	require.NoError(t, err)
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	path := dbFile.Name()

	db, err := Open(path)
	require.NoError(t, err)
	base := time.Now().UTC().Truncate(time.Second)
	client, err := db.InsertClient(testClient("Jane", base))
	require.NoError(t, err)
	_, err = db.AddInteraction(Interaction{
		ClientID: client.ID, Type: "contact", Notes: "n",
		InteractionDate: base, CreatedAt: base,
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening a canonical database must not touch the rows.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	interactions, err := db.ListInteractions(client.ID, 0)
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	require.Equal(t, "contact", interactions[0].Type)
}
