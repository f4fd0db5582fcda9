package model

import "time"

// Note is a nursing note tied to a patient and the nurse who wrote it.
type Note struct {
	ID             int64     `json:"id"`
	Fecha          string    `json:"fecha"`
	Hora           string    `json:"hora"`
	PatientID      int64     `json:"paciente_id"`
	NurseID        int64     `json:"enfermero_id"`
	Observaciones  string    `json:"observaciones"`
	Medicamentos   string    `json:"medicamentos_administrados,omitempty"`
	Tratamientos   string    `json:"tratamientos,omitempty"`
	FechaRegistro  time.Time `json:"fecha_registro"`
	NurseNombre    string    `json:"enfermero_nombre,omitempty"`
	NurseApellidos string    `json:"enfermero_apellidos,omitempty"`
}
