package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"clinicacrm/middlewares"
	"clinicacrm/services"
)

type MigrationHandler struct {
	service services.MigrationService
}

func NewMigrationHandler(service services.MigrationService) *MigrationHandler {
	return &MigrationHandler{service: service}
}

func (h *MigrationHandler) UserTracking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	actor := middlewares.ActorFromContext(r.Context())
	writeSummary(w, h.service.MigrateLeadsForUserTracking(ctx, actor))
}

func (h *MigrationHandler) Tags(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	writeSummary(w, h.service.MigrateLeadsForTags(ctx))
}

func (h *MigrationHandler) OutrosProfissionais(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	writeSummary(w, h.service.MigrateOutrosProfissionaisFields(ctx))
}

func (h *MigrationHandler) LeadsFields(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	writeSummary(w, h.service.MigrateLeadsFields(ctx))
}

func writeSummary(w http.ResponseWriter, summary services.MigrationSummary) {
	status := http.StatusOK
	if !summary.Success {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(summary)
}
