package routes

import (
	"net/http"

	"clinicacrm/handlers"
	"clinicacrm/middlewares"
	"clinicacrm/monitoring"
)

type Handlers struct {
	Auth           *handlers.AuthHandler
	Leads          *handlers.LeadHandler
	Medicos        *handlers.ReferenceHandler
	Especialidades *handlers.ReferenceHandler
	Procedimentos  *handlers.ReferenceHandler
	Tags           *handlers.TagHandler
	Migrations     *handlers.MigrationHandler
}

// SetupRoutes wires the API. Auth endpoints and the operational endpoints
// are open; everything touching data requires a valid token.
func SetupRoutes(h Handlers, jwtSecret string) http.Handler {
	mux := http.NewServeMux()
	jwt := middlewares.JWTMiddleware(jwtSecret)

	// Auth
	mux.Handle("POST /api/auth/signup", http.HandlerFunc(h.Auth.SignUp))
	mux.Handle("POST /api/auth/signin", http.HandlerFunc(h.Auth.SignIn))
	mux.Handle("POST /api/auth/signout", http.HandlerFunc(h.Auth.SignOut))
	mux.Handle("POST /api/auth/reset-password", http.HandlerFunc(h.Auth.ResetPassword))

	// Leads
	mux.Handle("POST /api/leads", jwt(http.HandlerFunc(h.Leads.CreateLead)))
	mux.Handle("GET /api/leads", jwt(http.HandlerFunc(h.Leads.GetAllLeads)))
	mux.Handle("GET /api/leads/{id}", jwt(http.HandlerFunc(h.Leads.GetLeadByID)))
	mux.Handle("PUT /api/leads/{id}", jwt(http.HandlerFunc(h.Leads.UpdateLead)))
	mux.Handle("DELETE /api/leads/{id}", jwt(http.HandlerFunc(h.Leads.DeleteLead)))

	// Reference collections
	registerReference(mux, jwt, "/api/medicos", h.Medicos)
	registerReference(mux, jwt, "/api/especialidades", h.Especialidades)
	registerReference(mux, jwt, "/api/procedimentos", h.Procedimentos)

	// Tags share the reference CRUD but deleting one cascades over leads.
	mux.Handle("POST /api/tags", jwt(http.HandlerFunc(h.Tags.Create)))
	mux.Handle("GET /api/tags", jwt(http.HandlerFunc(h.Tags.GetAll)))
	mux.Handle("GET /api/tags/{id}", jwt(http.HandlerFunc(h.Tags.GetByID)))
	mux.Handle("PUT /api/tags/{id}", jwt(http.HandlerFunc(h.Tags.Update)))
	mux.Handle("DELETE /api/tags/{id}", jwt(http.HandlerFunc(h.Tags.Delete)))

	// Migration sweeps
	mux.Handle("POST /api/migrations/user-tracking", jwt(http.HandlerFunc(h.Migrations.UserTracking)))
	mux.Handle("POST /api/migrations/tags", jwt(http.HandlerFunc(h.Migrations.Tags)))
	mux.Handle("POST /api/migrations/outros-profissionais", jwt(http.HandlerFunc(h.Migrations.OutrosProfissionais)))
	mux.Handle("POST /api/migrations/leads-fields", jwt(http.HandlerFunc(h.Migrations.LeadsFields)))

	// Operational
	mux.Handle("GET /metrics", monitoring.Handler())
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	return middlewares.MetricsMiddleware(mux)
}

func registerReference(mux *http.ServeMux, jwt func(http.Handler) http.Handler, prefix string, h *handlers.ReferenceHandler) {
	mux.Handle("POST "+prefix, jwt(http.HandlerFunc(h.Create)))
	mux.Handle("GET "+prefix, jwt(http.HandlerFunc(h.GetAll)))
	mux.Handle("GET "+prefix+"/{id}", jwt(http.HandlerFunc(h.GetByID)))
	mux.Handle("PUT "+prefix+"/{id}", jwt(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE "+prefix+"/{id}", jwt(http.HandlerFunc(h.Delete)))
}
