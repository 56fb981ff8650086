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

// TagHandler is the reference handler for tags plus the cascade on delete:
// tags are the one reference whose removal sweeps lead references clean.
type TagHandler struct {
	*ReferenceHandler
	service services.DataService
}

func NewTagHandler(service services.DataService) *TagHandler {
	return &TagHandler{
		ReferenceHandler: NewReferenceHandler(service, models.CollectionTags, "Tag"),
		service:          service,
	}
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	actor := middlewares.ActorFromContext(r.Context())
	leadsUpdated, src, err := h.service.DeleteTagWithCascade(ctx, id, actor)
	if err != nil {
		utils.HandleMessageResponse(w, "Failed to delete tag, try again", http.StatusInternalServerError)
		return
	}
	utils.HandleDataResponse(w, "Tag deleted successfully", string(src), map[string]interface{}{
		"leads_updated": leadsUpdated,
	}, http.StatusOK)
}
