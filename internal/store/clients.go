package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworks/outreach/internal/apperr"
)

// Client is one tracked individual. Field names mirror the stored column
// names; optional attributes are legitimately empty rather than malformed
// (the two intake variants populate different supersets).
type Client struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"first_name"`
	Middle            string    `json:"middle"`
	LastName          string    `json:"last_name"`
	AKA               string    `json:"aka"`
	Gender            string    `json:"gender"`
	Race              string    `json:"race"`
	Ethnicity         string    `json:"ethnicity"`
	Age               string    `json:"age"`
	AgeRange          string    `json:"age_range"`
	SexualOrientation string    `json:"sexual_orientation"`
	Height            string    `json:"height"`
	Weight            string    `json:"weight"`
	Hair              string    `json:"hair"`
	Eyes              string    `json:"eyes"`
	Description       string    `json:"description"`
	Notes             string    `json:"notes"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email"`
	VeteranStatus     bool      `json:"veteran_status"`
	Disabled          bool      `json:"disabled"`
	DisabledDetails   string    `json:"disabled_details"`
	LivingSituation   string    `json:"living_situation"`
	ServiceReferrals  []string  `json:"service_referrals"`
	ReferredFrom      string    `json:"referred_from"`
	Contacts          int       `json:"contacts"`
	LastContact       time.Time `json:"last_contact"`
	DateCreated       string    `json:"date_created"`
	CreatedAt         time.Time `json:"created_at"`
}

const clientColumns = `id, first_name, middle, last_name, aka, gender, race,
	ethnicity, age, age_range, sexual_orientation, height, weight, hair, eyes,
	description, notes, phone, email, veteran_status, disabled, disabled_details,
	living_situation, service_referrals, referred_from, contacts, last_contact,
	date_created, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (Client, error) {
	var (
		c         Client
		referrals string
	)
	err := row.Scan(
		&c.ID, &c.FirstName, &c.Middle, &c.LastName, &c.AKA, &c.Gender, &c.Race,
		&c.Ethnicity, &c.Age, &c.AgeRange, &c.SexualOrientation, &c.Height,
		&c.Weight, &c.Hair, &c.Eyes, &c.Description, &c.Notes, &c.Phone,
		&c.Email, &c.VeteranStatus, &c.Disabled, &c.DisabledDetails,
		&c.LivingSituation, &referrals, &c.ReferredFrom, &c.Contacts,
		&c.LastContact, &c.DateCreated, &c.CreatedAt,
	)
	if err != nil {
		return Client{}, err
	}
	if err := json.Unmarshal([]byte(referrals), &c.ServiceReferrals); err != nil || c.ServiceReferrals == nil {
		c.ServiceReferrals = []string{}
	}
	return c, nil
}

// InsertClient persists a new client row and returns the stored record.
// A missing ID gets a generated UUID.
func (db *DB) InsertClient(c Client) (Client, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	referrals, _ := json.Marshal(nonNilStrings(c.ServiceReferrals))

	_, err := db.conn.Exec(`
		INSERT INTO clients (`+clientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.FirstName, c.Middle, c.LastName, c.AKA, c.Gender, c.Race,
		c.Ethnicity, c.Age, c.AgeRange, c.SexualOrientation, c.Height,
		c.Weight, c.Hair, c.Eyes, c.Description, c.Notes, c.Phone, c.Email,
		c.VeteranStatus, c.Disabled, c.DisabledDetails, c.LivingSituation,
		string(referrals), c.ReferredFrom, c.Contacts, c.LastContact,
		c.DateCreated, c.CreatedAt,
	)
	if err != nil {
		return Client{}, fmt.Errorf("store: insert client: %w", err)
	}
	return db.GetClient(c.ID)
}

// GetClient returns a single client by id.
func (db *DB) GetClient(id string) (Client, error) {
	row := db.conn.QueryRow(`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Client{}, apperr.ErrNotFound
	}
	if err != nil {
		return Client{}, fmt.Errorf("store: get client: %w", err)
	}
	return c, nil
}

// ListClients returns all clients ordered by creation time, newest first.
func (db *DB) ListClients() ([]Client, error) {
	rows, err := db.conn.Query(`SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list clients: %w", err)
	}
	defer rows.Close()

	out := []Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AllClientIDs returns every client id, for bulk repair runs.
func (db *DB) AllClientIDs() ([]string, error) {
	rows, err := db.conn.Query(`SELECT id FROM clients`)
	if err != nil {
		return nil, fmt.Errorf("store: all client ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// RecountClient recomputes the denormalized contacts/last_contact fields
// from the interaction log and returns the repaired row. With no logged
// interactions the contact count drops to zero and last_contact is left
// as stored.
func (db *DB) RecountClient(id string) (Client, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Client{}, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM interactions WHERE client_id = ?`, id).Scan(&count); err != nil {
		return Client{}, fmt.Errorf("store: count interactions: %w", err)
	}

	if count == 0 {
		res, err := tx.Exec(`UPDATE clients SET contacts = 0 WHERE id = ?`, id)
		if err != nil {
			return Client{}, fmt.Errorf("store: reset contacts: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return Client{}, apperr.ErrNotFound
		}
	} else {
		var latest time.Time
		err := tx.QueryRow(`
			SELECT interaction_date FROM interactions
			WHERE client_id = ?
			ORDER BY interaction_date DESC
			LIMIT 1
		`, id).Scan(&latest)
		if err != nil {
			return Client{}, fmt.Errorf("store: latest interaction: %w", err)
		}
		res, err := tx.Exec(`UPDATE clients SET contacts = ?, last_contact = ? WHERE id = ?`, count, latest, id)
		if err != nil {
			return Client{}, fmt.Errorf("store: update counters: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return Client{}, apperr.ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return Client{}, fmt.Errorf("store: commit recount: %w", err)
	}
	return db.GetClient(id)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
