package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ejcalderongt/clinica/internal/auth"
	"github.com/ejcalderongt/clinica/internal/model"
	"github.com/ejcalderongt/clinica/internal/store"
)

// minPasswordLen applies to every path that sets a password, including the
// admin account-management endpoints.
const minPasswordLen = 6

const (
	msgInvalidCredentials = "Código o clave incorrectos"
	msgWrongPassword      = "Clave actual incorrecta"
	msgWeakPassword       = "La nueva clave debe tener al menos 6 caracteres"
	msgInternalError      = "Error interno del servidor"
)

type AuthHandler struct {
	nurses   *store.NurseStore
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewAuthHandler(ns *store.NurseStore, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{nurses: ns, sessions: ss, logger: logger}
}

type loginRequest struct {
	Codigo string `json:"codigo"`
	Clave  string `json:"clave"`
}

type loginResponse struct {
	Success             bool                 `json:"success"`
	RequiereCambioClave bool                 `json:"requiere_cambio_clave,omitempty"`
	Enfermero           *model.PublicProfile `json:"enfermero,omitempty"`
	Message             string               `json:"message,omitempty"`
}

// Login has three outcomes: invalid credentials (uniform 401, regardless of
// whether the code or the password was wrong), a pending password change
// (200, no session), and an authenticated session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	req.Codigo = strings.TrimSpace(req.Codigo)

	nurse, err := h.nurses.GetActiveByCode(req.Codigo)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if nurse == nil {
		// Unknown and inactive codes answer exactly like a wrong password.
		h.invalidCredentials(w)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(nurse.PasswordHash), []byte(req.Clave)); err != nil {
		h.invalidCredentials(w)
		return
	}

	if nurse.PendingChange() {
		profile := nurse.PendingProfile()
		writeJSON(w, http.StatusOK, loginResponse{
			Success:             true,
			RequiereCambioClave: true,
			Enfermero:           &profile,
		})
		return
	}

	data, err := json.Marshal(model.SessionData{
		NombreCompleto: nurse.Nombre + " " + nurse.Apellidos,
	})
	if err != nil {
		h.logger.Error("marshal session data", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	sess, err := h.sessions.Create(nurse.ID, string(data))
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	h.setSessionCookie(w, r, sess.Token)

	profile := nurse.Profile()
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Enfermero: &profile})
}

func (h *AuthHandler) invalidCredentials(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, loginResponse{
		Success: false,
		Message: msgInvalidCredentials,
	})
}

// Logout destroys the cookie session, if any. Always answers success.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type statusResponse struct {
	Authenticated       bool                 `json:"authenticated"`
	RequiereCambioClave bool                 `json:"requiere_cambio_clave,omitempty"`
	Enfermero           *model.PublicProfile `json:"enfermero,omitempty"`
}

// Status introspects the current session without extending its lifetime.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusOK, statusResponse{})
		return
	}

	sess, err := h.sessions.GetByToken(cookie.Value)
	if err != nil {
		h.logger.Error("status session lookup", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if sess == nil {
		writeJSON(w, http.StatusOK, statusResponse{})
		return
	}

	nurse, err := h.nurses.GetByID(sess.NurseID)
	if err != nil {
		h.logger.Error("status nurse lookup", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if nurse == nil {
		writeJSON(w, http.StatusOK, statusResponse{})
		return
	}

	profile := nurse.Profile()
	writeJSON(w, http.StatusOK, statusResponse{
		Authenticated:       true,
		RequiereCambioClave: nurse.PendingChange(),
		Enfermero:           &profile,
	})
}

type changePasswordRequest struct {
	Codigo      string `json:"codigo"`
	ClaveActual string `json:"claveActual"`
	NuevaClave  string `json:"nuevaClave"`
}

type changePasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ChangePassword is the pre-authenticated entry point, used from the
// forced-change flow before any session exists. The caller identifies the
// account by business code and proves the current password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	nurse, err := h.nurses.GetActiveByCode(strings.TrimSpace(req.Codigo))
	if err != nil {
		h.logger.Error("change password lookup", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if nurse == nil {
		writeError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}

	h.applyPasswordChange(w, nurse, req.ClaveActual, req.NuevaClave, false)
}

// ChangeOwnPassword is the self-service entry point. It runs behind the auth
// middleware and takes the account id from the session, never from the body.
func (h *AuthHandler) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No autenticado")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	nurse, err := h.nurses.GetByID(ac.NurseID)
	if err != nil {
		h.logger.Error("change own password lookup", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if nurse == nil {
		writeError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}

	h.applyPasswordChange(w, nurse, req.ClaveActual, req.NuevaClave, true)
}

// applyPasswordChange runs the shared contract: verify the current password,
// enforce the minimum length, replace the hash with the pending flags cleared,
// and destroy every session of the account. Killing the sessions is a
// deliberate anti-replay step: a stolen token dies with the old credential.
// clearCookie additionally expires the caller's own cookie (self-service path).
func (h *AuthHandler) applyPasswordChange(w http.ResponseWriter, nurse *model.Nurse, current, next string, clearCookie bool) {
	if err := bcrypt.CompareHashAndPassword([]byte(nurse.PasswordHash), []byte(current)); err != nil {
		writeJSON(w, http.StatusBadRequest, changePasswordResponse{Success: false, Message: msgWrongPassword})
		return
	}

	if len(next) < minPasswordLen {
		writeJSON(w, http.StatusBadRequest, changePasswordResponse{Success: false, Message: msgWeakPassword})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if err := h.nurses.UpdatePassword(nurse.ID, string(hash), true); err != nil {
		h.logger.Error("update password", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if err := h.sessions.DeleteByNurseID(nurse.ID); err != nil {
		h.logger.Error("invalidate sessions", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if clearCookie {
		h.clearSessionCookie(w)
	}
	writeJSON(w, http.StatusOK, changePasswordResponse{Success: true, Message: "Clave actualizada correctamente"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(store.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
