package app

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jonwraymond/agentguard/auth"
	"github.com/jonwraymond/agentguard/health"
)

// AuditReader may read the audit report.
var AuditReader = auth.RequireRoles(auth.RoleAdmin, auth.RoleAuditor).
	Or(auth.RequirePermissions(auth.PermAuditRead))

// Identity is the body of GET /v1/whoami.
type Identity struct {
	UserID      string   `json:"userId"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	ServiceID   string   `json:"serviceId"`
	ServiceType string   `json:"serviceType"`
}

// Router returns the HTTP surface:
//
//	GET /healthz, /readyz, /health   health endpoints, unauthenticated
//	GET /v1/whoami                   caller identity, guarded by the resource table
//	GET /v1/audit/report             compliance report, guarded by AuditReader
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	health.RegisterHandlers(r, a.health)

	r.Route("/v1", func(r chi.Router) {
		r.With(auth.RequireAccessFunc(a.gate, a.resources.ForRequest)).Get("/whoami", a.whoami)
		r.With(auth.RequireAccess(a.gate, AuditReader)).Get("/audit/report", a.auditReport)
	})
	return r
}

func (a *App) whoami(w http.ResponseWriter, r *http.Request) {
	sc := auth.SecurityContextFromContext(r.Context())
	if sc == nil {
		writeJSON(w, http.StatusOK, Identity{UserID: auth.UnknownUser, Roles: []string{}, Permissions: []string{}})
		return
	}
	writeJSON(w, http.StatusOK, Identity{
		UserID:      sc.UserID(),
		Roles:       sc.Roles(),
		Permissions: sc.Permissions(),
		ServiceID:   sc.ServiceID(),
		ServiceType: sc.ServiceType(),
	})
}

func (a *App) auditReport(w http.ResponseWriter, _ *http.Request) {
	if a.trail == nil {
		http.Error(w, "audit trail disabled", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a.trail.Report())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
