package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/openclinic/vaccine-scheduler/internal/api/middleware"
	"github.com/openclinic/vaccine-scheduler/internal/domain/entities"
)

// VaccineService defines the interface for inventory operations
type VaccineService interface {
	AddDoses(ctx context.Context, vaccineName string, count int) (int, error)
}

// VaccineReader defines the read side of the inventory
type VaccineReader interface {
	GetVaccine(ctx context.Context, name string) (*entities.Vaccine, error)
}

// VaccineHandler handles vaccine inventory requests
type VaccineHandler struct {
	service VaccineService
	reader  VaccineReader
}

// NewVaccineHandler creates a new vaccine handler
func NewVaccineHandler(service VaccineService, reader VaccineReader) *VaccineHandler {
	return &VaccineHandler{
		service: service,
		reader:  reader,
	}
}

type addDosesRequest struct {
	Doses int `json:"doses"`
}

// AddDoses handles POST /api/vaccines/{name}/doses
func (h *VaccineHandler) AddDoses(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if actor.Role != entities.UserRoleCaregiver {
		respondWithError(w, http.StatusForbidden, "only caregivers can add doses")
		return
	}

	name := r.PathValue("name")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "vaccine name is required")
		return
	}

	var req addDosesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	doses, err := h.service.AddDoses(r.Context(), name, req.Doses)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"name":            name,
		"available_doses": doses,
	})
}

// GetVaccine handles GET /api/vaccines/{name}
func (h *VaccineHandler) GetVaccine(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "vaccine name is required")
		return
	}

	vaccine, err := h.reader.GetVaccine(r.Context(), name)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, vaccine)
}
