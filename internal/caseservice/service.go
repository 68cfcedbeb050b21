// Package caseservice implements the case-management domain logic: client
// intake, interaction logging, and roster search.
package caseservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fieldworks/outreach/internal/apperr"
	"github.com/fieldworks/outreach/internal/geo"
	"github.com/fieldworks/outreach/internal/store"
)

// TypeInitialIntake is the interaction type written by the intake flow.
const TypeInitialIntake = "Initial Intake"

// InteractionTypes is the fixed set accepted by the interaction-logging
// path. The intake path writes TypeInitialIntake and is not bound by it.
var InteractionTypes = []string{
	"contact",    // Check-in / Contact
	"service",    // Service Provided
	"referral",   // Referral Made
	"follow_up",  // Follow-up
	"assessment", // Assessment
	"transport",  // Transportation
	"emergency",  // Emergency Response
}

func interactionTypeValues() []any {
	out := make([]any, len(InteractionTypes))
	for i, t := range InteractionTypes {
		out[i] = t
	}
	return out
}

// Locator acquires a best-effort location estimate.
type Locator interface {
	Lookup(ctx context.Context) (geo.Location, error)
}

// EventPublisher broadcasts record-change events to connected views.
type EventPublisher interface {
	PublishRecordEvent(kind, id string)
}

// Service coordinates the store, geolocation, and event broadcasting.
type Service struct {
	db            *store.DB
	locator       Locator
	events        EventPublisher
	defaultWorker string
	now           func() time.Time
}

// NewService creates a case service. locator and events may be nil.
func NewService(db *store.DB, locator Locator, events EventPublisher, defaultWorker string) *Service {
	if defaultWorker == "" {
		defaultWorker = "Unknown Worker"
	}
	return &Service{
		db:            db,
		locator:       locator,
		events:        events,
		defaultWorker: defaultWorker,
		now:           time.Now,
	}
}

// IntakeRequest carries the attributes collected by either intake form.
// Only the name fields are required; everything else is optional.
type IntakeRequest struct {
	FirstName         string   `json:"first_name"`
	Middle            string   `json:"middle"`
	LastName          string   `json:"last_name"`
	AKA               string   `json:"aka"`
	Gender            string   `json:"gender"`
	Race              string   `json:"race"`
	Ethnicity         string   `json:"ethnicity"`
	Age               string   `json:"age"`
	SexualOrientation string   `json:"sexual_orientation"`
	Height            string   `json:"height"`
	Weight            string   `json:"weight"`
	Hair              string   `json:"hair"`
	Eyes              string   `json:"eyes"`
	Description       string   `json:"description"`
	Notes             string   `json:"notes"`
	Phone             string   `json:"phone"`
	Email             string   `json:"email"`
	VeteranStatus     bool     `json:"veteran_status"`
	Disabled          bool     `json:"disabled"`
	DisabledDetails   string   `json:"disabled_details"`
	LivingSituation   string   `json:"living_situation"`
	ServiceReferrals  []string `json:"service_referrals"`
	ReferredFrom      string   `json:"referred_from"`

	WorkerID   string `json:"worker_id"`
	WorkerName string `json:"worker_name"`

	// Backdating: when set, EncounterDate/EncounterTime replace the wall
	// clock for every timestamp on the created records.
	Backdate      bool   `json:"backdate"`
	EncounterDate string `json:"encounter_date"`
	EncounterTime string `json:"encounter_time"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
}

// Validate checks the required name fields and backdate format.
func (r IntakeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.EncounterDate,
			validation.Required.When(r.Backdate),
			validation.Date("2006-01-02")),
		validation.Field(&r.EncounterTime,
			validation.Required.When(r.Backdate),
			validation.Date("15:04")),
	)
}

// encounterTime derives the single encounter timestamp shared by the
// client row and its first interaction.
func (r IntakeRequest) encounterTime(now time.Time) (time.Time, error) {
	if !r.Backdate {
		return now, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", r.EncounterDate+" "+r.EncounterTime, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid encounter timestamp", apperr.ErrValidation)
	}
	if t.After(now) {
		return time.Time{}, fmt.Errorf("%w: encounter timestamp is in the future", apperr.ErrValidation)
	}
	return t, nil
}

// Intake validates the request, creates the client row, and logs the
// initial interaction under the same encounter timestamp. Location is
// best-effort: a missing or failed lookup is recorded in the interaction
// note, never an error.
func (s *Service) Intake(ctx context.Context, req IntakeRequest) (store.Client, error) {
	if err := req.Validate(); err != nil {
		return store.Client{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	now := s.now()
	encounter, err := req.encounterTime(now)
	if err != nil {
		return store.Client{}, err
	}

	createdAt := now
	dateCreated := now.Format("2006-01-02")
	if req.Backdate {
		createdAt = encounter
		dateCreated = req.EncounterDate
	}

	lat, lng, acc, located := s.resolveLocation(ctx, req.Latitude, req.Longitude, req.Accuracy)

	client := store.Client{
		FirstName:         req.FirstName,
		Middle:            req.Middle,
		LastName:          req.LastName,
		AKA:               req.AKA,
		Gender:            req.Gender,
		Race:              req.Race,
		Ethnicity:         req.Ethnicity,
		Age:               req.Age,
		AgeRange:          AgeRange(req.Age),
		SexualOrientation: req.SexualOrientation,
		Height:            req.Height,
		Weight:            req.Weight,
		Hair:              req.Hair,
		Eyes:              req.Eyes,
		Description:       req.Description,
		Notes:             req.Notes,
		Phone:             req.Phone,
		Email:             req.Email,
		VeteranStatus:     req.VeteranStatus,
		Disabled:          req.Disabled,
		DisabledDetails:   req.DisabledDetails,
		LivingSituation:   req.LivingSituation,
		ServiceReferrals:  req.ServiceReferrals,
		ReferredFrom:      req.ReferredFrom,
		Contacts:          0, // the initial interaction bumps this to 1
		LastContact:       encounter,
		DateCreated:       dateCreated,
		CreatedAt:         createdAt,
	}

	stored, err := s.db.InsertClient(client)
	if err != nil {
		return store.Client{}, err
	}

	_, err = s.db.AddInteraction(store.Interaction{
		ClientID:        stored.ID,
		WorkerID:        req.WorkerID,
		WorkerName:      s.workerName(req.WorkerName),
		Type:            TypeInitialIntake,
		Notes:           intakeNote(req.Backdate, encounter, located, req.Notes),
		Latitude:        lat,
		Longitude:       lng,
		Accuracy:        acc,
		InteractionDate: encounter,
		CreatedAt:       createdAt,
	})
	if err != nil {
		return store.Client{}, err
	}

	s.publish("client.created", stored.ID)

	return s.db.GetClient(stored.ID)
}

// intakeNote builds the first interaction's note, recording backdating and
// location availability the way the legacy forms did.
func intakeNote(backdated bool, encounter time.Time, located bool, formNotes string) string {
	var b strings.Builder
	b.WriteString("Client intake completed")
	if backdated {
		b.WriteString(" (Backdated to " + encounter.Format("Jan 2, 2006 3:04 PM") + ")")
	}
	b.WriteString(". ")
	if located {
		b.WriteString("Location captured.")
	} else {
		b.WriteString("Location not available.")
	}
	if formNotes != "" {
		b.WriteString(" Notes: " + formNotes)
	}
	return b.String()
}

// LogInteractionRequest carries a subsequent interaction from the roster
// dialog. Type must come from InteractionTypes; Date is optional and may
// backdate the event day.
type LogInteractionRequest struct {
	Type       string   `json:"interaction_type"`
	Notes      string   `json:"notes"`
	Date       string   `json:"date"`
	WorkerID   string   `json:"worker_id"`
	WorkerName string   `json:"worker_name"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Accuracy   *float64 `json:"accuracy"`
}

// Validate checks the type tag, notes, and event date.
func (r LogInteractionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(interactionTypeValues()...)),
		validation.Field(&r.Notes, validation.Required),
		validation.Field(&r.Date, validation.Date("2006-01-02")),
	)
}

// LogInteraction validates and persists a subsequent interaction,
// advancing the client's counters atomically with the insert.
func (s *Service) LogInteraction(ctx context.Context, clientID string, req LogInteractionRequest) (store.Interaction, store.Client, error) {
	if err := req.Validate(); err != nil {
		return store.Interaction{}, store.Client{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	now := s.now()
	eventTime := now
	if req.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", req.Date, now.Location())
		if err != nil {
			return store.Interaction{}, store.Client{}, fmt.Errorf("%w: invalid date", apperr.ErrValidation)
		}
		// Keep the wall-clock time of day on the chosen date.
		eventTime = time.Date(day.Year(), day.Month(), day.Day(),
			now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
		if eventTime.After(now) {
			return store.Interaction{}, store.Client{}, fmt.Errorf("%w: date is in the future", apperr.ErrValidation)
		}
	}

	lat, lng, acc, _ := s.resolveLocation(ctx, req.Latitude, req.Longitude, req.Accuracy)

	in, err := s.db.AddInteraction(store.Interaction{
		ClientID:        clientID,
		WorkerID:        req.WorkerID,
		WorkerName:      s.workerName(req.WorkerName),
		Type:            req.Type,
		Notes:           req.Notes,
		Latitude:        lat,
		Longitude:       lng,
		Accuracy:        acc,
		InteractionDate: eventTime,
		CreatedAt:       now,
	})
	if err != nil {
		return store.Interaction{}, store.Client{}, err
	}

	s.publish("interaction.logged", clientID)

	client, err := s.db.GetClient(clientID)
	if err != nil {
		return store.Interaction{}, store.Client{}, err
	}
	return in, client, nil
}

// ListClients returns the full roster, newest first.
func (s *Service) ListClients(_ context.Context) ([]store.Client, error) {
	return s.db.ListClients()
}

// SearchClients filters the roster by a case-insensitive substring match
// over "first last" name, alias, and description. An empty query returns
// everything.
func (s *Service) SearchClients(ctx context.Context, query string) ([]store.Client, error) {
	clients, err := s.db.ListClients()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return clients, nil
	}
	out := []store.Client{}
	for _, c := range clients {
		if matchesQuery(c, q) {
			out = append(out, c)
		}
	}
	return out, nil
}

// matchesQuery expects q already lowercased.
func matchesQuery(c store.Client, q string) bool {
	name := strings.ToLower(c.FirstName + " " + c.LastName)
	return strings.Contains(name, q) ||
		strings.Contains(strings.ToLower(c.AKA), q) ||
		strings.Contains(strings.ToLower(c.Description), q)
}

// GetClient returns a single client.
func (s *Service) GetClient(_ context.Context, id string) (store.Client, error) {
	return s.db.GetClient(id)
}

// ListInteractions returns a client's interaction history, newest first.
func (s *Service) ListInteractions(_ context.Context, clientID string, limit int) ([]store.Interaction, error) {
	if _, err := s.db.GetClient(clientID); err != nil {
		return nil, err
	}
	return s.db.ListInteractions(clientID, limit)
}

// Recount repairs a client's denormalized counters from the interaction
// log.
func (s *Service) Recount(_ context.Context, clientID string) (store.Client, error) {
	c, err := s.db.RecountClient(clientID)
	if err != nil {
		return store.Client{}, err
	}
	s.publish("client.updated", clientID)
	return c, nil
}

// RecountAll repairs every client's counters. Returns the number of
// clients processed.
func (s *Service) RecountAll(ctx context.Context) (int, error) {
	ids, err := s.db.AllClientIDs()
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if _, err := s.db.RecountClient(id); err != nil {
			return 0, fmt.Errorf("recount %s: %w", id, err)
		}
	}
	return len(ids), nil
}

// resolveLocation picks request coordinates when present, otherwise asks
// the locator. Failure is not an error; the boolean reports availability.
func (s *Service) resolveLocation(ctx context.Context, lat, lng, acc *float64) (*float64, *float64, *float64, bool) {
	if lat != nil && lng != nil {
		return lat, lng, acc, true
	}
	if s.locator == nil {
		return nil, nil, nil, false
	}
	loc, err := s.locator.Lookup(ctx)
	if err != nil {
		return nil, nil, nil, false
	}
	return &loc.Latitude, &loc.Longitude, &loc.Accuracy, true
}

func (s *Service) workerName(name string) string {
	if name == "" {
		return s.defaultWorker
	}
	return name
}

func (s *Service) publish(kind, id string) {
	if s.events != nil {
		s.events.PublishRecordEvent(kind, id)
	}
}
