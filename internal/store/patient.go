package store

import (
	"database/sql"
	"fmt"

	"github.com/ejcalderongt/clinica/internal/model"
)

type PatientStore struct {
	db *sql.DB
}

func NewPatientStore(db *sql.DB) *PatientStore {
	return &PatientStore{db: db}
}

func scanPatient(scanner interface{ Scan(...any) error }) (*model.Patient, error) {
	var p model.Patient
	err := scanner.Scan(
		&p.ID, &p.NumeroExpediente, &p.Nombre, &p.Apellidos, &p.FechaNacimiento,
		&p.DocumentoIdentidad, &p.Nacionalidad, &p.ContactoEmergencia,
		&p.TelefonoEmergencia, &p.TelefonoPrincipal, &p.TelefonoSecundario,
		&p.TipoSangre, &p.Padecimientos, &p.InformacionGeneral, &p.TipoPaciente,
		&p.CuartoAsignado, &p.FechaRegistro, &p.Activo,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const patientCols = `id, numero_expediente, nombre, apellidos, fecha_nacimiento,
	documento_identidad, nacionalidad, contacto_emergencia_nombre,
	contacto_emergencia_telefono, telefono_principal, telefono_secundario,
	tipo_sangre, padecimientos, informacion_general, tipo_paciente,
	cuarto_asignado, fecha_registro, activo`

func (s *PatientStore) Create(p *model.Patient) (*model.Patient, error) {
	result, err := s.db.Exec(
		`INSERT INTO pacientes (numero_expediente, nombre, apellidos,
			fecha_nacimiento, documento_identidad, nacionalidad,
			contacto_emergencia_nombre, contacto_emergencia_telefono,
			telefono_principal, telefono_secundario, tipo_sangre, padecimientos,
			informacion_general, tipo_paciente, cuarto_asignado)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.NumeroExpediente, p.Nombre, p.Apellidos, p.FechaNacimiento,
		p.DocumentoIdentidad, p.Nacionalidad, p.ContactoEmergencia,
		p.TelefonoEmergencia, p.TelefonoPrincipal, p.TelefonoSecundario,
		p.TipoSangre, p.Padecimientos, p.InformacionGeneral, p.TipoPaciente,
		p.CuartoAsignado,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PatientStore) GetByID(id int64) (*model.Patient, error) {
	row := s.db.QueryRow(`SELECT `+patientCols+` FROM pacientes WHERE id = ?`, id)
	p, err := scanPatient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

// List returns active patients, newest first.
func (s *PatientStore) List() ([]model.Patient, error) {
	rows, err := s.db.Query(
		`SELECT ` + patientCols + ` FROM pacientes WHERE activo = 1 ORDER BY fecha_registro DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var patients []model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, *p)
	}
	return patients, rows.Err()
}
