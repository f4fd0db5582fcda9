package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ejcalderongt/clinica/internal/auth"
	"github.com/ejcalderongt/clinica/internal/model"
	"github.com/ejcalderongt/clinica/internal/store"
	"github.com/ejcalderongt/clinica/internal/websocket"
)

type NoteHandler struct {
	notes  *store.NoteStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewNoteHandler(ns *store.NoteStore, hub *websocket.Hub, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: ns, hub: hub, logger: logger}
}

type noteRequest struct {
	Fecha         string `json:"fecha"`
	Hora          string `json:"hora"`
	PatientID     int64  `json:"paciente_id"`
	Observaciones string `json:"observaciones"`
	Medicamentos  string `json:"medicamentos_administrados"`
	Tratamientos  string `json:"tratamientos"`
}

// Create records a nursing note. The author is always the session account,
// never a client-supplied id.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	req.Observaciones = strings.TrimSpace(req.Observaciones)
	if req.Fecha == "" || req.Hora == "" || req.PatientID == 0 || req.Observaciones == "" {
		writeError(w, http.StatusBadRequest, "Faltan campos obligatorios")
		return
	}

	nurseID := auth.NurseID(r.Context())

	note, err := h.notes.Create(req.Fecha, req.Hora, req.PatientID, nurseID,
		req.Observaciones, req.Medicamentos, req.Tratamientos)
	if err != nil {
		h.logger.Error("create note", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewEvent("nota", "created", note.ID))
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.List()
	if err != nil {
		h.logger.Error("list notes", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}
