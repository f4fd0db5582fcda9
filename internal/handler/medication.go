package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ejcalderongt/clinica/internal/model"
	"github.com/ejcalderongt/clinica/internal/store"
	"github.com/ejcalderongt/clinica/internal/websocket"
)

type MedicationHandler struct {
	medications *store.MedicationStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewMedicationHandler(ms *store.MedicationStore, hub *websocket.Hub, logger *slog.Logger) *MedicationHandler {
	return &MedicationHandler{medications: ms, hub: hub, logger: logger}
}

func (h *MedicationHandler) List(w http.ResponseWriter, r *http.Request) {
	meds, err := h.medications.List()
	if err != nil {
		h.logger.Error("list medications", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if meds == nil {
		meds = []model.Medication{}
	}
	writeJSON(w, http.StatusOK, meds)
}

func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Medication
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	req.Nombre = strings.TrimSpace(req.Nombre)
	if req.Nombre == "" {
		writeError(w, http.StatusBadRequest, "El nombre es obligatorio")
		return
	}

	med, err := h.medications.Create(req.Nombre, req.Descripcion, req.UnidadMedida)
	if err != nil {
		h.logger.Error("create medication", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewEvent("medicamento", "created", med.ID))
	}
	writeJSON(w, http.StatusCreated, med)
}

// Assign links a medication to a patient with its dosing plan.
func (h *MedicationHandler) Assign(w http.ResponseWriter, r *http.Request) {
	patientID, err := parseIDParam(r, "paciente_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req model.PatientMedication
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	req.PatientID = patientID

	if req.MedicationID == 0 || req.Dosis == "" || req.Frecuencia == "" || req.FechaInicio == "" {
		writeError(w, http.StatusBadRequest, "Faltan campos obligatorios")
		return
	}

	pm, err := h.medications.Assign(&req)
	if err != nil {
		h.logger.Error("assign medication", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewEvent("medicamento_paciente", "created", pm.ID))
	}
	writeJSON(w, http.StatusCreated, pm)
}
