package caseservice

import (
	"fmt"
	"strings"

	"github.com/fieldworks/outreach/internal/store"
)

// Human-readable labels for the interaction type tags.
var interactionTypeLabels = map[string]string{
	"contact":    "Check-in / Contact",
	"service":    "Service Provided",
	"referral":   "Referral Made",
	"follow_up":  "Follow-up",
	"assessment": "Assessment",
	"transport":  "Transportation",
	"emergency":  "Emergency Response",
}

// TypeLabel returns the display label for a type tag. Unknown tags (the
// free-form intake path) display as-is; an empty tag displays as
// "Contact".
func TypeLabel(tag string) string {
	if tag == "" {
		return "Contact"
	}
	if label, ok := interactionTypeLabels[tag]; ok {
		return label
	}
	return tag
}

const dateOnly = "2006-01-02"

func orFallback(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// ClientSummary renders a client record as the plain-text block workers
// paste into external reports.
func ClientSummary(c store.Client) string {
	var b strings.Builder
	b.WriteString("Client Information:\n")
	name := strings.Join(strings.Fields(c.FirstName+" "+c.Middle+" "+c.LastName), " ")
	fmt.Fprintf(&b, "Name: %s\n", name)
	if c.AKA != "" {
		fmt.Fprintf(&b, "AKA: %s\n", c.AKA)
	}
	fmt.Fprintf(&b, "Gender: %s\n", orFallback(c.Gender, "Not specified"))
	fmt.Fprintf(&b, "Ethnicity: %s\n", orFallback(c.Ethnicity, "Not specified"))
	fmt.Fprintf(&b, "Age: %s\n", orFallback(c.Age, "Not specified"))
	fmt.Fprintf(&b, "Height: %s\n", orFallback(c.Height, "Not specified"))
	fmt.Fprintf(&b, "Weight: %s\n", orFallback(c.Weight, "Not specified"))
	fmt.Fprintf(&b, "Hair: %s\n", orFallback(c.Hair, "Not specified"))
	fmt.Fprintf(&b, "Eyes: %s\n", orFallback(c.Eyes, "Not specified"))
	fmt.Fprintf(&b, "Description: %s\n", orFallback(c.Description, "None"))
	fmt.Fprintf(&b, "Notes: %s\n", orFallback(c.Notes, "None"))
	if c.LastContact.IsZero() {
		b.WriteString("Last Contact: Never\n")
	} else {
		fmt.Fprintf(&b, "Last Contact: %s\n", c.LastContact.Format(dateOnly))
	}
	fmt.Fprintf(&b, "Total Contacts: %d\n", c.Contacts)
	fmt.Fprintf(&b, "Date Added: %s", c.CreatedAt.Format(dateOnly))
	return b.String()
}

// InteractionText renders one interaction as a shareable note.
func InteractionText(in store.Interaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interaction - %s\n", in.InteractionDate.Format(dateOnly))
	fmt.Fprintf(&b, "Worker: %s\n", orFallback(in.WorkerName, "Unknown"))
	fmt.Fprintf(&b, "Type: %s\n", TypeLabel(in.Type))
	if in.Latitude != nil && in.Longitude != nil {
		fmt.Fprintf(&b, "Location: %.6f, %.6f\n", *in.Latitude, *in.Longitude)
	} else {
		b.WriteString("Location: Not recorded\n")
	}
	fmt.Fprintf(&b, "\nNotes:\n%s", in.Notes)
	return b.String()
}
