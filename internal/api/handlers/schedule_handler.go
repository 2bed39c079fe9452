package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/openclinic/vaccine-scheduler/internal/api/middleware"
	"github.com/openclinic/vaccine-scheduler/internal/application/services"
	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
)

// ScheduleService defines the interface for schedule queries and
// availability uploads
type ScheduleService interface {
	SearchSchedule(ctx context.Context, date time.Time) (*services.DaySchedule, error)
	ListAppointments(ctx context.Context, username string) ([]*entities.Appointment, error)
	PublishAvailability(ctx context.Context, date time.Time, caregiverID string) error
}

// ScheduleHandler handles schedule queries and availability uploads
type ScheduleHandler struct {
	service ScheduleService
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(service ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
	}
}

// GetSchedule handles GET /api/schedule/{date}
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	dateStr := r.PathValue("date")
	date, err := time.Parse(entities.DateFormat, dateStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
		return
	}

	schedule, err := h.service.SearchSchedule(r.Context(), date)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, schedule)
}

// ListAppointments handles GET /api/appointments
func (h *ScheduleHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	appointments, err := h.service.ListAppointments(r.Context(), actor.Username)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": appointments,
	})
}

type publishAvailabilityRequest struct {
	Date string `json:"date"`
}

// PublishAvailability handles POST /api/availabilities
func (h *ScheduleHandler) PublishAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if actor.Role != entities.UserRoleCaregiver {
		respondWithError(w, http.StatusForbidden, "only caregivers can publish availability")
		return
	}

	var req publishAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	date, err := time.Parse(entities.DateFormat, req.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
		return
	}

	if err := h.service.PublishAvailability(r.Context(), date, actor.Username); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"date":         req.Date,
		"caregiver_id": actor.Username,
	})
}
