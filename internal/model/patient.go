package model

import "time"

type Patient struct {
	ID                 int64     `json:"id"`
	NumeroExpediente   string    `json:"numero_expediente"`
	Nombre             string    `json:"nombre"`
	Apellidos          string    `json:"apellidos"`
	FechaNacimiento    string    `json:"fecha_nacimiento"`
	DocumentoIdentidad string    `json:"documento_identidad"`
	Nacionalidad       string    `json:"nacionalidad"`
	ContactoEmergencia string    `json:"contacto_emergencia_nombre,omitempty"`
	TelefonoEmergencia string    `json:"contacto_emergencia_telefono,omitempty"`
	TelefonoPrincipal  string    `json:"telefono_principal,omitempty"`
	TelefonoSecundario string    `json:"telefono_secundario,omitempty"`
	TipoSangre         string    `json:"tipo_sangre"`
	Padecimientos      string    `json:"padecimientos,omitempty"`
	InformacionGeneral string    `json:"informacion_general,omitempty"`
	TipoPaciente       string    `json:"tipo_paciente"`
	CuartoAsignado     string    `json:"cuarto_asignado,omitempty"`
	FechaRegistro      time.Time `json:"fecha_registro"`
	Activo             bool      `json:"activo"`
}
