// Package family serves the relative-facing portal: validation of
// patient-id + token links, credential login, the patient dashboard, and
// care registration gated by the token's capability set.
package family

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bedside-care/bedside/internal/models"
	"github.com/bedside-care/bedside/internal/tokens"
	"go.uber.org/zap"
)

// EventStore is the slice of the event repository the portal needs
type EventStore interface {
	ListEventsForPatient(patientID string) ([]models.CareEvent, error)
	CreateEvent(e *models.CareEvent) error
}

// Family is the relative-facing portal surface
type Family struct {
	tokens        *tokens.Manager
	events        EventStore
	loc           *time.Location
	autoProvision bool
	logger        *zap.Logger
}

// New creates the family portal. loc is the zone used for report day
// bucketing; autoProvision controls whether a stale link mints a
// replacement editor token instead of failing the visit.
func New(manager *tokens.Manager, events EventStore, loc *time.Location, autoProvision bool, logger *zap.Logger) *Family {
	return &Family{
		tokens:        manager,
		events:        events,
		loc:           loc,
		autoProvision: autoProvision,
		logger:        logger,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
