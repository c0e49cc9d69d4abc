package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/agroflow/logicapture/internal/buildinfo"
	"github.com/agroflow/logicapture/internal/chat"
	"github.com/agroflow/logicapture/internal/config"
	"github.com/agroflow/logicapture/internal/database"
	"github.com/agroflow/logicapture/internal/middleware"
	"github.com/agroflow/logicapture/internal/models"
	"github.com/agroflow/logicapture/internal/records"
	"github.com/agroflow/logicapture/internal/websocket"
	"github.com/agroflow/logicapture/web"
)

// Router wraps the mux router with the application dependencies.
type Router struct {
	*mux.Router
	db        *database.DB
	cfg       *config.Config
	hub       *websocket.Hub
	records   *records.Service
	assistant *chat.Assistant
}

// NewRouter creates the HTTP router with all routes.
func NewRouter(db *database.DB, cfg *config.Config, hub *websocket.Hub, assistant *chat.Assistant) *Router {
	r := &Router{
		Router:    mux.NewRouter(),
		db:        db,
		cfg:       cfg,
		hub:       hub,
		records:   records.NewService(db.DB),
		assistant: assistant,
	}

	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	auth := middleware.Auth(cfg.JWTSecret)
	loginLimit := middleware.NewRateLimiter(10, 15*time.Minute)

	// Auth
	authAPI := r.PathPrefix("/api/v1/auth").Subrouter()
	authAPI.Handle("/login", loginLimit.Middleware(http.HandlerFunc(r.login))).Methods("POST")
	authAPI.Handle("/me", auth(http.HandlerFunc(r.me))).Methods("GET")

	adminOnly := func(h http.HandlerFunc) http.Handler {
		return auth(middleware.RequireRole(models.RoleAdmin)(h))
	}
	authAPI.Handle("/usuarios", adminOnly(r.listUsers)).Methods("GET")
	authAPI.Handle("/usuarios", adminOnly(r.createUser)).Methods("POST")
	authAPI.Handle("/usuarios/{id}", adminOnly(r.toggleUser)).Methods("DELETE")
	authAPI.Handle("/usuarios/{username}/password", adminOnly(r.resetPassword)).Methods("PATCH")
	authAPI.Handle("/usuarios/{username}/desbloquear", adminOnly(r.unlockUser)).Methods("PATCH")

	// Records
	regs := r.PathPrefix("/api/v1/registros").Subrouter()
	regs.Use(auth)
	regs.HandleFunc("", r.createRecord).Methods("POST")
	regs.HandleFunc("/historial", r.listHistory).Methods("GET")
	regs.HandleFunc("/procesados", r.listProcessed).Methods("GET")
	regs.HandleFunc("/dashboard-stats", r.dashboardStats).Methods("GET")
	regs.HandleFunc("/export/sap-pdf", r.exportSapPDF).Methods("POST")
	regs.HandleFunc("/{id:[0-9]+}/sap", r.sapRow).Methods("GET")
	regs.HandleFunc("/{id:[0-9]+}/procesar", r.processRecord).Methods("POST")
	regs.HandleFunc("/{id:[0-9]+}/cerrar", r.processRecord).Methods("POST") // legacy alias
	regs.HandleFunc("/{id:[0-9]+}/anular", r.annulRecord).Methods("POST")
	regs.Handle("/{id:[0-9]+}/editar",
		middleware.RequireRole(models.RoleAdmin, models.RoleSupervisor)(http.HandlerFunc(r.editRecord))).Methods("PATCH")

	// Catalogs
	veh := r.PathPrefix("/api/v1/vehiculos").Subrouter()
	veh.Use(auth)
	veh.HandleFunc("", r.createVehicle).Methods("POST")
	veh.HandleFunc("", r.listVehicles).Methods("GET")
	veh.HandleFunc("/por-placas", r.vehicleByPlates).Methods("GET")
	veh.HandleFunc("/{id:[0-9]+}/transportista", r.reassignVehicleCarrier).Methods("PATCH")

	// Audit
	r.Handle("/api/v1/auditoria",
		auth(middleware.RequireRole(models.RoleAdmin, models.RoleGerencia, models.RoleSupervisor)(
			http.HandlerFunc(r.listAudit)))).Methods("GET")

	// Chat assistant
	r.Handle("/api/v1/chat/pregunta", auth(http.HandlerFunc(r.chatAnswer))).Methods("POST")

	// Scanner relay. Push and the websocket are unauthenticated on purpose:
	// the mobile device only holds the pairing token.
	scan := r.PathPrefix("/api/v1/scanner").Subrouter()
	scan.HandleFunc("/push/{token}", r.scannerPush).Methods("POST")
	scan.HandleFunc("/ws/{token}", r.scannerWS).Methods("GET")
	scan.Handle("/pairing/{token}/qr", auth(http.HandlerFunc(r.pairingQR))).Methods("GET")

	// Mobile capture page
	r.HandleFunc("/scanner/{token}", r.scannerPage).Methods("GET")

	// Static assets
	if staticFS, err := web.GetFileSystem(); err == nil {
		r.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	} else {
		log.Printf("⚠️  Static assets unavailable: %v", err)
	}

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"commit":  buildinfo.CommitHash,
		"started": buildinfo.StartTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
