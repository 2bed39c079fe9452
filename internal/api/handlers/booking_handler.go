package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/openclinic/vaccine-scheduler/internal/api/middleware"
	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
)

// BookingService defines the interface for booking operations
type BookingService interface {
	Reserve(ctx context.Context, patientID string, date time.Time, vaccineName string) (*entities.Appointment, error)
	Cancel(ctx context.Context, appointmentID string, requestedBy string) error
}

// BookingHandler handles reservation and cancellation requests
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{
		service: service,
	}
}

type reserveRequest struct {
	Date        string `json:"date"`
	VaccineName string `json:"vaccine_name"`
}

// Reserve handles POST /api/appointments
func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if actor.Role != entities.UserRolePatient {
		respondWithError(w, http.StatusForbidden, "only patients can reserve appointments")
		return
	}

	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	date, err := time.Parse(entities.DateFormat, req.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
		return
	}

	appointment, err := h.service.Reserve(r.Context(), actor.Username, date, req.VaccineName)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, appointment)
}

// Cancel handles DELETE /api/appointments/{id}
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	appointmentID := r.PathValue("id")
	if appointmentID == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	if err := h.service.Cancel(r.Context(), appointmentID, actor.Username); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "cancelled",
	})
}
