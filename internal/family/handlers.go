package family

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bedside-care/bedside/internal/models"
	"github.com/bedside-care/bedside/internal/reports"
	"github.com/bedside-care/bedside/internal/tokens"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type accessResponse struct {
	IsValid     bool                `json:"is_valid"`
	Patient     *models.Patient     `json:"patient,omitempty"`
	Role        models.Role         `json:"role,omitempty"`
	Permissions *models.Permissions `json:"permissions,omitempty"`
	// set when a stale link was replaced by a freshly minted token
	ReplacementToken *models.AccessToken `json:"replacement_token,omitempty"`
}

// resolve validates the link's token pair, optionally minting a replacement
// editor token when the visit carried an invalid one.
func (f *Family) resolve(ctx context.Context, patientID, token string) (*accessResponse, error) {
	result, err := f.tokens.Validate(ctx, patientID, token)
	if err != nil {
		return nil, err
	}

	if !result.IsValid && f.autoProvision {
		minted, err := f.tokens.Generate(ctx, patientID, models.RoleEditor)
		if err != nil {
			return nil, err
		}
		f.logger.Info("auto-provisioned replacement family token",
			zap.String("patient_id", patientID),
			zap.String("token_id", minted.ID),
		)
		// retry validation once with the minted token
		result, err = f.tokens.Validate(ctx, patientID, minted.Token)
		if err != nil {
			return nil, err
		}
		if result.IsValid {
			perms := tokens.DerivePermissions(result.Token.Role)
			return &accessResponse{
				IsValid:          true,
				Patient:          result.Patient,
				Role:             result.Token.Role,
				Permissions:      &perms,
				ReplacementToken: minted,
			}, nil
		}
	}

	if !result.IsValid {
		return &accessResponse{IsValid: false}, nil
	}

	perms := tokens.DerivePermissions(result.Token.Role)
	return &accessResponse{
		IsValid:     true,
		Patient:     result.Patient,
		Role:        result.Token.Role,
		Permissions: &perms,
	}, nil
}

func (f *Family) handleValidate(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	token := chi.URLParam(r, "token")

	access, err := f.resolve(r.Context(), patientID, token)
	if err != nil {
		f.logger.Error("family link validation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if !access.IsValid {
		respondJSON(w, http.StatusUnauthorized, access)
		return
	}
	respondJSON(w, http.StatusOK, access)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (f *Family) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	record, patient, err := f.tokens.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		f.logger.Error("family login failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if record == nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	perms := tokens.DerivePermissions(record.Role)
	respondJSON(w, http.StatusOK, accessResponse{
		IsValid:     true,
		Patient:     patient,
		Role:        record.Role,
		Permissions: &perms,
	})
}

func (f *Family) handleDashboard(w http.ResponseWriter, r *http.Request) {
	access, ok := f.requireView(w, r)
	if !ok {
		return
	}

	events, err := f.events.ListEventsForPatient(access.Patient.ID)
	if err != nil {
		f.logger.Error("failed to load care events", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"patient": access.Patient,
		"report":  reports.Aggregate(events, f.loc),
	})
}

func (f *Family) handleListCare(w http.ResponseWriter, r *http.Request) {
	access, ok := f.requireView(w, r)
	if !ok {
		return
	}

	events, err := f.events.ListEventsForPatient(access.Patient.ID)
	if err != nil {
		f.logger.Error("failed to load care events", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if events == nil {
		events = []models.CareEvent{}
	}
	respondJSON(w, http.StatusOK, events)
}

func (f *Family) handleRegisterCare(w http.ResponseWriter, r *http.Request) {
	access, ok := f.requireView(w, r)
	if !ok {
		return
	}

	var event models.CareEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if !canRegister(*access.Permissions, event.Type) {
		respondError(w, http.StatusForbidden, "token does not permit registering this event type")
		return
	}

	event.ID = ""
	event.PatientID = access.Patient.ID
	if err := f.events.CreateEvent(&event); err != nil {
		f.logger.Error("failed to register care event", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

// requireView resolves the link and rejects the request unless the token can
// at least view the patient.
func (f *Family) requireView(w http.ResponseWriter, r *http.Request) (*accessResponse, bool) {
	patientID := chi.URLParam(r, "patientID")
	token := chi.URLParam(r, "token")

	access, err := f.resolve(r.Context(), patientID, token)
	if err != nil {
		f.logger.Error("family link validation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "something went wrong")
		return nil, false
	}
	if !access.IsValid || !access.Permissions.CanView {
		respondError(w, http.StatusUnauthorized, "invalid family link")
		return nil, false
	}
	return access, true
}

func canRegister(p models.Permissions, t models.EventType) bool {
	switch t {
	case models.EventDrink:
		return p.CanRegisterLiquids
	case models.EventMed:
		return p.CanRegisterMedications
	case models.EventMeal:
		return p.CanRegisterMeals
	case models.EventBathroom, models.EventNote:
		return p.CanRegisterActivities
	default:
		return false
	}
}
