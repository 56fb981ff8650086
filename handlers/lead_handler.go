package handlers

import (
	"context"
	"net/http"
	"time"

	"clinicacrm/middlewares"
	"clinicacrm/models"
	"clinicacrm/services"
	"clinicacrm/utils"
)

type LeadHandler struct {
	service services.DataService
}

func NewLeadHandler(service services.DataService) *LeadHandler {
	return &LeadHandler{service: service}
}

func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var input models.LeadInput
	rec, err := utils.DecodeRecordAndValidate(w, r, &input)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Duplicate-contact rule lives at the calling edge, not inside the
	// data service.
	exists, err := h.phoneExists(ctx, input.Telefone)
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to save lead, try again", http.StatusInternalServerError)
		return
	}
	if exists {
		utils.HandleMessageResponse(w, "A lead with this phone number already exists", http.StatusConflict)
		return
	}

	actor := middlewares.ActorFromContext(r.Context())
	created, src, err := h.service.Create(ctx, models.CollectionLeads, actor, rec)
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to save lead, try again", http.StatusInternalServerError)
		return
	}
	utils.HandleDataResponse(w, "Lead created successfully", string(src), created, http.StatusCreated)
}

func (h *LeadHandler) GetAllLeads(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	leads, src, err := h.service.GetAll(ctx, models.CollectionLeads)
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to load leads, try again", http.StatusInternalServerError)
		return
	}
	utils.HandleDataResponse(w, "Leads retrieved successfully", string(src), leads, http.StatusOK)
}

func (h *LeadHandler) GetLeadByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	lead, src, err := h.service.GetByID(ctx, models.CollectionLeads, id)
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to load lead, try again", http.StatusInternalServerError)
		return
	}
	if lead == nil {
		utils.HandleMessageResponse(w, "Lead not found", http.StatusNotFound)
		return
	}
	utils.HandleDataResponse(w, "Lead retrieved successfully", string(src), lead, http.StatusOK)
}

func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var input models.LeadInput
	rec, err := utils.DecodeRecordAndValidate(w, r, &input)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	actor := middlewares.ActorFromContext(r.Context())
	updated, src, err := h.service.Update(ctx, models.CollectionLeads, id, actor, rec)
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to save lead, try again", http.StatusInternalServerError)
		return
	}
	utils.HandleDataResponse(w, "Lead updated successfully", string(src), updated, http.StatusOK)
}

func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := h.service.Delete(ctx, models.CollectionLeads, id); err != nil {
		utils.HandleMessageResponse(w, "Failed to delete lead, try again", http.StatusInternalServerError)
		return
	}
	utils.HandleMessageResponse(w, "Lead deleted successfully", http.StatusOK)
}

func (h *LeadHandler) phoneExists(ctx context.Context, phone string) (bool, error) {
	normalized := utils.NormalizePhone(phone)
	if normalized == "" {
		return false, nil
	}
	leads, _, err := h.service.GetAll(ctx, models.CollectionLeads)
	if err != nil {
		return false, err
	}
	for _, lead := range leads {
		existing, _ := lead["telefone"].(string)
		if existing != "" && utils.NormalizePhone(existing) == normalized {
			return true, nil
		}
	}
	return false, nil
}
