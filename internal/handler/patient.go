package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ejcalderongt/clinica/internal/model"
	"github.com/ejcalderongt/clinica/internal/store"
	"github.com/ejcalderongt/clinica/internal/websocket"
)

type PatientHandler struct {
	patients    *store.PatientStore
	notes       *store.NoteStore
	medications *store.MedicationStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewPatientHandler(ps *store.PatientStore, ns *store.NoteStore, ms *store.MedicationStore, hub *websocket.Hub, logger *slog.Logger) *PatientHandler {
	return &PatientHandler{patients: ps, notes: ns, medications: ms, hub: hub, logger: logger}
}

func (h *PatientHandler) broadcast(ev websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
}

func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patients.List()
	if err != nil {
		h.logger.Error("list patients", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if patients == nil {
		patients = []model.Patient{}
	}
	writeJSON(w, http.StatusOK, patients)
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Patient
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	req.NumeroExpediente = strings.TrimSpace(req.NumeroExpediente)
	if req.NumeroExpediente == "" || req.Nombre == "" || req.Apellidos == "" {
		writeError(w, http.StatusBadRequest, "Faltan campos obligatorios")
		return
	}
	// Room assignment only applies to inpatients.
	if req.TipoPaciente != "interno" {
		req.CuartoAsignado = ""
	}

	patient, err := h.patients.Create(&req)
	if errors.Is(err, store.ErrDuplicateCode) {
		writeError(w, http.StatusBadRequest, "El número de expediente ya existe")
		return
	}
	if err != nil {
		h.logger.Error("create patient", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	h.broadcast(websocket.NewEvent("paciente", "created", patient.ID))
	writeJSON(w, http.StatusCreated, patient)
}

type patientDetail struct {
	Paciente     *model.Patient            `json:"paciente"`
	Notas        []model.Note              `json:"notas"`
	Medicamentos []model.PatientMedication `json:"medicamentos"`
}

// Get returns the patient together with their notes and active medications,
// the aggregate the chart view consumes.
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	patient, err := h.patients.GetByID(id)
	if err != nil {
		h.logger.Error("get patient", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if patient == nil {
		writeError(w, http.StatusNotFound, "Paciente no encontrado")
		return
	}

	notes, err := h.notes.ListByPatient(id)
	if err != nil {
		h.logger.Error("list patient notes", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}

	meds, err := h.medications.ListByPatient(id)
	if err != nil {
		h.logger.Error("list patient medications", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if meds == nil {
		meds = []model.PatientMedication{}
	}

	writeJSON(w, http.StatusOK, patientDetail{Paciente: patient, Notas: notes, Medicamentos: meds})
}
