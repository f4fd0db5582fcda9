package model

type Medication struct {
	ID           int64  `json:"id"`
	Nombre       string `json:"nombre"`
	Descripcion  string `json:"descripcion,omitempty"`
	UnidadMedida string `json:"unidad_medida,omitempty"`
	Activo       bool   `json:"activo"`
}

// PatientMedication is a medication assigned to a patient with its dosing plan.
type PatientMedication struct {
	ID           int64  `json:"id"`
	PatientID    int64  `json:"paciente_id"`
	MedicationID int64  `json:"medicamento_id"`
	Dosis        string `json:"dosis"`
	Frecuencia   string `json:"frecuencia"`
	Horarios     string `json:"horarios,omitempty"`
	Indicaciones string `json:"indicaciones,omitempty"`
	FechaInicio  string `json:"fecha_inicio"`
	FechaFin     string `json:"fecha_fin,omitempty"`
	Activo       bool   `json:"activo"`
	Nombre       string `json:"medicamento_nombre,omitempty"`
	UnidadMedida string `json:"unidad_medida,omitempty"`
}
