package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"clinicacrm/middlewares"
	"clinicacrm/models"
	"clinicacrm/services"
	"clinicacrm/utils"
)

// ReferenceHandler serves the simple reference collections (medicos,
// especialidades, procedimentos); they share one CRUD shape.
type ReferenceHandler struct {
	service    services.DataService
	collection string
	label      string
}

func NewReferenceHandler(service services.DataService, collection, label string) *ReferenceHandler {
	return &ReferenceHandler{service: service, collection: collection, label: label}
}

func (h *ReferenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.ReferenceInput
	rec, err := utils.DecodeRecordAndValidate(w, r, &input)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actor := middlewares.ActorFromContext(r.Context())
	created, src, err := h.service.Create(ctx, h.collection, actor, rec)
	if err != nil {
		utils.HandleMessageResponse(w, fmt.Sprintf("Failed to save %s, try again", h.label), http.StatusInternalServerError)
		return
	}
	utils.HandleDataResponse(w, fmt.Sprintf("%s created successfully", h.label), string(src), created, http.StatusCreated)
}

func (h *ReferenceHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	recs, src, err := h.service.GetAll(ctx, h.collection)
	if err != nil {
		utils.HandleMessageResponse(w, fmt.Sprintf("Failed to load %s, try again", h.label), http.StatusInternalServerError)
		return
	}
	utils.HandleDataResponse(w, fmt.Sprintf("%s retrieved successfully", h.label), string(src), recs, http.StatusOK)
}

func (h *ReferenceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rec, src, err := h.service.GetByID(ctx, h.collection, id)
	if err != nil {
		utils.HandleMessageResponse(w, fmt.Sprintf("Failed to load %s, try again", h.label), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		utils.HandleMessageResponse(w, fmt.Sprintf("%s not found", h.label), http.StatusNotFound)
		return
	}
	utils.HandleDataResponse(w, fmt.Sprintf("%s retrieved successfully", h.label), string(src), rec, http.StatusOK)
}

func (h *ReferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var input models.ReferenceInput
	rec, err := utils.DecodeRecordAndValidate(w, r, &input)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actor := middlewares.ActorFromContext(r.Context())
	updated, src, err := h.service.Update(ctx, h.collection, id, actor, rec)
	if err != nil {
		utils.HandleMessageResponse(w, fmt.Sprintf("Failed to save %s, try again", h.label), http.StatusInternalServerError)
		return
	}
	utils.HandleDataResponse(w, fmt.Sprintf("%s updated successfully", h.label), string(src), updated, http.StatusOK)
}

// Delete removes the record without touching leads that reference it;
// dangling ids resolve to "N/A" at display time.
func (h *ReferenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := h.service.Delete(ctx, h.collection, id); err != nil {
		utils.HandleMessageResponse(w, fmt.Sprintf("Failed to delete %s, try again", h.label), http.StatusInternalServerError)
		return
	}
	utils.HandleMessageResponse(w, fmt.Sprintf("%s deleted successfully", h.label), http.StatusOK)
}
