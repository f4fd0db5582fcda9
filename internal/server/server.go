package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ejcalderongt/clinica/internal/handler"
	"github.com/ejcalderongt/clinica/internal/middleware"
	"github.com/ejcalderongt/clinica/internal/store"
	ws "github.com/ejcalderongt/clinica/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	nurseH       *handler.NurseHandler
	patientH     *handler.PatientHandler
	noteH        *handler.NoteHandler
	medicationH  *handler.MedicationHandler
	nurseStore   *store.NurseStore
	sessionStore *store.SessionStore
	logger       *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	nurseStore := store.NewNurseStore(db)
	sessionStore := store.NewSessionStore(db)
	patientStore := store.NewPatientStore(db)
	noteStore := store.NewNoteStore(db)
	medicationStore := store.NewMedicationStore(db)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(nurseStore, sessionStore, logger.With("component", "auth")),
		nurseH:       handler.NewNurseHandler(nurseStore, sessionStore, logger.With("component", "usuarios")),
		patientH:     handler.NewPatientHandler(patientStore, noteStore, medicationStore, hub, logger.With("component", "pacientes")),
		noteH:        handler.NewNoteHandler(noteStore, hub, logger.With("component", "notas")),
		medicationH:  handler.NewMedicationHandler(medicationStore, hub, logger.With("component", "medicamentos")),
		nurseStore:   nurseStore,
		sessionStore: sessionStore,
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// NurseStore returns the account store for seed bootstrap.
func (s *Server) NurseStore() *store.NurseStore {
	return s.nurseStore
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/login", s.authH.Login)
	outerMux.HandleFunc("POST /api/logout", s.authH.Logout)
	outerMux.HandleFunc("POST /api/cambiar-clave", s.authH.ChangePassword)
	outerMux.HandleFunc("GET /api/status", s.authH.Status)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.nurseStore)
	// The /api/ catch-all puts every path not registered above behind the
	// auth guard, so unauthenticated callers get a uniform 401 for unknown
	// paths and wrong methods instead of a 404/405 that maps the routes.
	outerMux.Handle("/api/", authMiddleware(protectedMux))
	outerMux.Handle("GET /ws", authMiddleware(ws.Handle(s.hub, s.logger.With("component", "websocket"))))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/cambiar-mi-clave", s.authH.ChangeOwnPassword)

	// Patient routes
	mux.HandleFunc("GET /api/pacientes", s.patientH.List)
	mux.HandleFunc("POST /api/pacientes", s.patientH.Create)
	mux.HandleFunc("GET /api/pacientes/{id}", s.patientH.Get)

	// Nursing note routes
	mux.HandleFunc("GET /api/notas", s.noteH.List)
	mux.HandleFunc("POST /api/notas", s.noteH.Create)

	// Medication routes
	mux.HandleFunc("GET /api/medicamentos", s.medicationH.List)
	mux.HandleFunc("POST /api/medicamentos", s.medicationH.Create)
	mux.HandleFunc("POST /api/pacientes/{paciente_id}/medicamentos", s.medicationH.Assign)

	// Account management — admin only
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET /api/admin/usuarios", s.nurseH.List)
	adminMux.HandleFunc("POST /api/admin/usuarios", s.nurseH.Create)
	adminMux.HandleFunc("PUT /api/admin/usuarios/{id}", s.nurseH.Update)
	adminMux.HandleFunc("DELETE /api/admin/usuarios/{id}", s.nurseH.Deactivate)
	mux.Handle("/api/admin/", middleware.RequireAdmin(adminMux))
}
