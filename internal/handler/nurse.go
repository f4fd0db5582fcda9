package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ejcalderongt/clinica/internal/model"
	"github.com/ejcalderongt/clinica/internal/store"
)

// NurseHandler exposes the admin-only account management endpoints.
type NurseHandler struct {
	nurses   *store.NurseStore
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewNurseHandler(ns *store.NurseStore, ss *store.SessionStore, logger *slog.Logger) *NurseHandler {
	return &NurseHandler{nurses: ns, sessions: ss, logger: logger}
}

type nurseRequest struct {
	Codigo           string `json:"codigo"`
	Clave            string `json:"clave"`
	Nombre           string `json:"nombre"`
	Apellidos        string `json:"apellidos"`
	Turno            string `json:"turno"`
	Rol              string `json:"rol"`
	CanManageBilling bool   `json:"puede_gestionar_cobros"`
	Activo           *bool  `json:"activo"`
}

func (h *NurseHandler) List(w http.ResponseWriter, r *http.Request) {
	nurses, err := h.nurses.List()
	if err != nil {
		h.logger.Error("list nurses", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if nurses == nil {
		nurses = []model.Nurse{}
	}
	writeJSON(w, http.StatusOK, nurses)
}

// Create registers a new account. It starts in the forced-password-change
// state, so the first login routes through the change flow.
func (h *NurseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req nurseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	req.Codigo = strings.TrimSpace(req.Codigo)
	if req.Codigo == "" || req.Nombre == "" || req.Apellidos == "" || req.Turno == "" {
		writeError(w, http.StatusBadRequest, "Faltan campos obligatorios")
		return
	}
	if len(req.Clave) < minPasswordLen {
		writeError(w, http.StatusBadRequest, msgWeakPassword)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Clave), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	nurse, err := h.nurses.Create(&model.Nurse{
		Codigo:             req.Codigo,
		PasswordHash:       string(hash),
		Nombre:             req.Nombre,
		Apellidos:          req.Apellidos,
		Turno:              req.Turno,
		Rol:                req.Rol,
		CanManageBilling:   req.CanManageBilling,
		Activo:             true,
		MustChangePassword: true,
		FirstLogin:         true,
	})
	if errors.Is(err, store.ErrDuplicateCode) {
		writeError(w, http.StatusBadRequest, "El código de usuario ya existe")
		return
	}
	if err != nil {
		h.logger.Error("create nurse", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusCreated, nurse)
}

// Update edits an account. The password only changes when a new one is sent,
// and any password set here must meet the same minimum length as the
// self-service flow.
func (h *NurseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req nurseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	// Validate the optional password up front so a rejected request leaves
	// the row completely untouched.
	clave := strings.TrimSpace(req.Clave)
	if clave != "" && len(clave) < minPasswordLen {
		writeError(w, http.StatusBadRequest, msgWeakPassword)
		return
	}

	activo := true
	if req.Activo != nil {
		activo = *req.Activo
	}

	nurse, err := h.nurses.Update(id, strings.TrimSpace(req.Codigo), req.Nombre,
		req.Apellidos, req.Turno, req.Rol, req.CanManageBilling, activo)
	if errors.Is(err, store.ErrProtectedAccount) {
		writeError(w, http.StatusBadRequest, "No se puede modificar el usuario administrador")
		return
	}
	if errors.Is(err, store.ErrDuplicateCode) {
		writeError(w, http.StatusBadRequest, "El código de usuario ya existe")
		return
	}
	if err != nil {
		h.logger.Error("update nurse", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if nurse == nil {
		writeError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}

	if clave != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(clave), bcrypt.DefaultCost)
		if err != nil {
			h.logger.Error("hash password", "error", err)
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		if err := h.nurses.UpdatePassword(id, string(hash), false); err != nil {
			h.logger.Error("update password", "error", err)
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		// A credential set by the admin invalidates open sessions too.
		if err := h.sessions.DeleteByNurseID(id); err != nil {
			h.logger.Error("invalidate sessions", "error", err)
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
	}

	writeJSON(w, http.StatusOK, nurse)
}

// Deactivate soft-deletes an account and kills its open sessions. The
// administrator is immune.
func (h *NurseHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	nurse, err := h.nurses.Deactivate(id)
	if errors.Is(err, store.ErrProtectedAccount) {
		writeError(w, http.StatusBadRequest, "No se puede eliminar el usuario administrador")
		return
	}
	if err != nil {
		h.logger.Error("deactivate nurse", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if nurse == nil {
		writeError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}

	if err := h.sessions.DeleteByNurseID(id); err != nil {
		h.logger.Error("invalidate sessions", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Usuario desactivado correctamente"})
}
