package api

import (
	"github.com/fieldworks/outreach/internal/caseservice"
	"github.com/fieldworks/outreach/internal/store"
)

// Client is the API representation of a client row (aliased from the
// store layer; column names double as JSON names).
type Client = store.Client

// Interaction is the API representation of an interaction row.
type Interaction = store.Interaction

// IntakeRequest is the request body for POST /clients.
type IntakeRequest = caseservice.IntakeRequest

// LogInteractionRequest is the request body for POST /clients/{id}/interactions.
type LogInteractionRequest = caseservice.LogInteractionRequest

// ClientListResponse wraps the roster listing.
type ClientListResponse struct {
	Clients []Client `json:"clients"`
	Total   int      `json:"total"`
}

// InteractionListResponse wraps a client's interaction history.
type InteractionListResponse struct {
	Interactions []Interaction `json:"interactions"`
	Total        int           `json:"total"`
}

// LogInteractionResponse returns the stored interaction together with the
// client's refreshed counters.
type LogInteractionResponse struct {
	Interaction Interaction `json:"interaction"`
	Client      Client      `json:"client"`
}
