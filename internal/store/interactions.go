package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworks/outreach/internal/apperr"
)

// Interaction is one logged contact event between a worker and a client.
// Rows are immutable once created.
type Interaction struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"client_id"`
	WorkerID        string    `json:"worker_id"`
	WorkerName      string    `json:"worker_name"`
	Type            string    `json:"interaction_type"`
	Notes           string    `json:"notes"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	Accuracy        *float64  `json:"accuracy,omitempty"`
	InteractionDate time.Time `json:"interaction_date"`
	CreatedAt       time.Time `json:"created_at"`
}

const interactionColumns = `id, client_id, worker_id, worker_name,
	interaction_type, notes, latitude, longitude, accuracy,
	interaction_date, created_at`

func scanInteraction(row rowScanner) (Interaction, error) {
	var (
		in            Interaction
		lat, lng, acc sql.NullFloat64
	)
	err := row.Scan(
		&in.ID, &in.ClientID, &in.WorkerID, &in.WorkerName, &in.Type,
		&in.Notes, &lat, &lng, &acc, &in.InteractionDate, &in.CreatedAt,
	)
	if err != nil {
		return Interaction{}, err
	}
	if lat.Valid {
		in.Latitude = &lat.Float64
	}
	if lng.Valid {
		in.Longitude = &lng.Float64
	}
	if acc.Valid {
		in.Accuracy = &acc.Float64
	}
	return in, nil
}

// AddInteraction inserts an interaction row and bumps the owning client's
// denormalized counters in the same transaction: contacts is incremented
// relative to the stored value and last_contact advances to the event
// timestamp when it is later than the stored one. Returns the stored
// interaction.
func (db *DB) AddInteraction(in Interaction) (Interaction, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return Interaction{}, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var lastContact time.Time
	err = tx.QueryRow(`SELECT last_contact FROM clients WHERE id = ?`, in.ClientID).Scan(&lastContact)
	if errors.Is(err, sql.ErrNoRows) {
		return Interaction{}, apperr.ErrNotFound
	}
	if err != nil {
		return Interaction{}, fmt.Errorf("store: read client: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO interactions (`+interactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		in.ID, in.ClientID, in.WorkerID, in.WorkerName, in.Type, in.Notes,
		nullFloat(in.Latitude), nullFloat(in.Longitude), nullFloat(in.Accuracy),
		in.InteractionDate, in.CreatedAt,
	)
	if err != nil {
		return Interaction{}, fmt.Errorf("store: insert interaction: %w", err)
	}

	if in.InteractionDate.After(lastContact) {
		lastContact = in.InteractionDate
	}
	if _, err := tx.Exec(`
		UPDATE clients SET contacts = contacts + 1, last_contact = ? WHERE id = ?
	`, lastContact, in.ClientID); err != nil {
		return Interaction{}, fmt.Errorf("store: bump counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Interaction{}, fmt.Errorf("store: commit interaction: %w", err)
	}
	return db.GetInteraction(in.ID)
}

// GetInteraction returns a single interaction by id.
func (db *DB) GetInteraction(id string) (Interaction, error) {
	row := db.conn.QueryRow(`SELECT `+interactionColumns+` FROM interactions WHERE id = ?`, id)
	in, err := scanInteraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Interaction{}, apperr.ErrNotFound
	}
	if err != nil {
		return Interaction{}, fmt.Errorf("store: get interaction: %w", err)
	}
	return in, nil
}

// ListInteractions returns a client's interactions ordered by event
// timestamp, newest first. limit <= 0 means no limit.
func (db *DB) ListInteractions(clientID string, limit int) ([]Interaction, error) {
	q := `SELECT ` + interactionColumns + ` FROM interactions WHERE client_id = ? ORDER BY interaction_date DESC`
	args := []any{clientID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list interactions: %w", err)
	}
	defer rows.Close()

	out := []Interaction{}
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan interaction: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
