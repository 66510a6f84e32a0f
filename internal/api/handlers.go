package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bedside-care/bedside/internal/database"
	"github.com/bedside-care/bedside/internal/exchange"
	"github.com/bedside-care/bedside/internal/models"
	"github.com/bedside-care/bedside/internal/reports"
	"github.com/bedside-care/bedside/internal/tokens"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (api *Api) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (api *Api) respondError(w http.ResponseWriter, status int, message string) {
	api.respondJSON(w, status, map[string]string{"error": message})
}

// --- Patients ---

func (api *Api) ListPatientsHandler(w http.ResponseWriter, r *http.Request) {
	patients, err := api.db.ListPatients()
	if err != nil {
		api.logger.Error("failed to list patients", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if patients == nil {
		patients = []*models.Patient{}
	}
	api.respondJSON(w, http.StatusOK, patients)
}

func (api *Api) CreatePatientHandler(w http.ResponseWriter, r *http.Request) {
	var patient models.Patient
	if err := json.NewDecoder(r.Body).Decode(&patient); err != nil {
		api.respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(patient.Name) == "" {
		api.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	patient.ID = ""
	if err := api.db.CreatePatient(&patient); err != nil {
		api.logger.Error("failed to create patient", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	api.respondJSON(w, http.StatusCreated, patient)
}

func (api *Api) GetPatientHandler(w http.ResponseWriter, r *http.Request) {
	patient, err := api.db.GetPatient(chi.URLParam(r, "patientID"))
	if err != nil {
		if errors.Is(err, database.ErrPatientNotFound) {
			api.respondError(w, http.StatusNotFound, "patient not found")
			return
		}
		api.logger.Error("failed to get patient", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	api.respondJSON(w, http.StatusOK, patient)
}

func (api *Api) UpdatePatientHandler(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	var patient models.Patient
	if err := json.NewDecoder(r.Body).Decode(&patient); err != nil {
		api.respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(patient.Name) == "" {
		api.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	patient.ID = patientID
	if err := api.db.UpdatePatient(&patient); err != nil {
		if errors.Is(err, database.ErrPatientNotFound) {
			api.respondError(w, http.StatusNotFound, "patient not found")
			return
		}
		api.logger.Error("failed to update patient", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	api.respondJSON(w, http.StatusOK, patient)
}

// DischargePatientHandler marks the patient inactive and revokes every
// family token attached to them.
func (api *Api) DischargePatientHandler(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	if err := api.db.DischargePatient(patientID); err != nil {
		if errors.Is(err, database.ErrPatientNotFound) {
			api.respondError(w, http.StatusNotFound, "patient not found")
			return
		}
		api.logger.Error("failed to discharge patient", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	if err := api.tokens.RevokeAllForPatient(r.Context(), patientID, "patient discharged"); err != nil {
		api.logger.Error("failed to revoke family tokens on discharge",
			zap.String("patient_id", patientID), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Care events ---

func (api *Api) ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := api.db.ListEventsForPatient(chi.URLParam(r, "patientID"))
	if err != nil {
		api.logger.Error("failed to list events", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if events == nil {
		events = []models.CareEvent{}
	}
	api.respondJSON(w, http.StatusOK, events)
}

func (api *Api) CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	var event models.CareEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		api.respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if event.Type == "" {
		api.respondError(w, http.StatusBadRequest, "type is required")
		return
	}

	event.ID = ""
	event.PatientID = chi.URLParam(r, "patientID")
	if err := api.db.CreateEvent(&event); err != nil {
		api.logger.Error("failed to create event", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	api.respondJSON(w, http.StatusCreated, event)
}

func (api *Api) DeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.db.DeleteEvent(chi.URLParam(r, "eventID")); err != nil {
		if errors.Is(err, database.ErrEventNotFound) {
			api.respondError(w, http.StatusNotFound, "event not found")
			return
		}
		api.logger.Error("failed to delete event", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Reports ---

func (api *Api) ReportHandler(w http.ResponseWriter, r *http.Request) {
	events, err := api.db.ListEventsForPatient(chi.URLParam(r, "patientID"))
	if err != nil {
		api.logger.Error("failed to load events for report", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	api.respondJSON(w, http.StatusOK, reports.Aggregate(events, api.loc))
}

// --- Export / import ---

func (api *Api) ExportHandler(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	contentType, err := exchange.ContentType(format)
	if err != nil {
		api.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := api.db.ListEventsForPatient(patientID)
	if err != nil {
		api.logger.Error("failed to load events for export", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	var buf bytes.Buffer
	switch format {
	case "json":
		err = exchange.WriteJSON(&buf, events)
	case "csv":
		err = exchange.WriteCSV(&buf, events)
	case "xlsx":
		err = exchange.WriteXLSX(&buf, events)
	}
	if err != nil {
		api.logger.Error("failed to encode export", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	if api.archiver != nil {
		if _, err := api.archiver.ArchiveExport(r.Context(), patientID, format, bytes.NewReader(buf.Bytes())); err != nil {
			// archive failure must not block the download
			api.logger.Warn("failed to archive export", zap.Error(err))
		}
	}

	filename := fmt.Sprintf("care-events-%s-%s.%s", patientID, time.Now().Format("20060102"), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

func (api *Api) ImportHandler(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	if _, err := api.db.GetPatient(patientID); err != nil {
		if errors.Is(err, database.ErrPatientNotFound) {
			api.respondError(w, http.StatusNotFound, "patient not found")
			return
		}
		api.logger.Error("failed to check patient for import", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	var (
		result *models.ImportResult
		err    error
	)
	if strings.Contains(r.Header.Get("Content-Type"), "text/csv") {
		result, err = api.importer.ImportCSV(r.Context(), patientID, r.Body)
	} else {
		result, err = api.importer.ImportJSON(r.Context(), patientID, r.Body)
	}
	if err != nil {
		api.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	api.respondJSON(w, http.StatusOK, result)
}

// --- Family token management ---

type createTokenRequest struct {
	Role string `json:"role"`
}

func (api *Api) CreateFamilyTokenHandler(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	if _, err := api.db.GetPatient(patientID); err != nil {
		if errors.Is(err, database.ErrPatientNotFound) {
			api.respondError(w, http.StatusNotFound, "patient not found")
			return
		}
		api.logger.Error("failed to check patient for token", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	var req createTokenRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	role := models.RoleEditor
	if req.Role != "" {
		role = models.ParseRole(req.Role)
		if role == models.RoleUnknown {
			api.respondError(w, http.StatusBadRequest, "role must be editor or viewer")
			return
		}
	}

	token, err := api.tokens.Generate(r.Context(), patientID, role)
	if err != nil {
		api.logger.Error("failed to generate family token", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	api.respondJSON(w, http.StatusCreated, token)
}

func (api *Api) ListFamilyTokensHandler(w http.ResponseWriter, r *http.Request) {
	active, err := api.tokens.ListActiveForPatient(r.Context(), chi.URLParam(r, "patientID"))
	if err != nil {
		api.logger.Error("failed to list family tokens", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if active == nil {
		active = []models.AccessToken{}
	}
	api.respondJSON(w, http.StatusOK, active)
}

func (api *Api) RevokeFamilyTokenHandler(w http.ResponseWriter, r *http.Request) {
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		reason = "revoked by staff"
	}

	err := api.tokens.Revoke(r.Context(), chi.URLParam(r, "tokenID"), reason)
	if err != nil {
		if errors.Is(err, tokens.ErrTokenNotFound) {
			api.respondError(w, http.StatusNotFound, "token not found")
			return
		}
		api.logger.Error("failed to revoke family token", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
