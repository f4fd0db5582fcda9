package store

import (
	"database/sql"
	"fmt"

	"github.com/ejcalderongt/clinica/internal/model"
)

type MedicationStore struct {
	db *sql.DB
}

func NewMedicationStore(db *sql.DB) *MedicationStore {
	return &MedicationStore{db: db}
}

func (s *MedicationStore) Create(nombre, descripcion, unidadMedida string) (*model.Medication, error) {
	result, err := s.db.Exec(
		`INSERT INTO medicamentos (nombre, descripcion, unidad_medida) VALUES (?, ?, ?)`,
		nombre, descripcion, unidadMedida,
	)
	if err != nil {
		return nil, fmt.Errorf("insert medication: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MedicationStore) GetByID(id int64) (*model.Medication, error) {
	row := s.db.QueryRow(
		`SELECT id, nombre, descripcion, unidad_medida, activo FROM medicamentos WHERE id = ?`, id,
	)
	var m model.Medication
	err := row.Scan(&m.ID, &m.Nombre, &m.Descripcion, &m.UnidadMedida, &m.Activo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get medication: %w", err)
	}
	return &m, nil
}

func (s *MedicationStore) List() ([]model.Medication, error) {
	rows, err := s.db.Query(
		`SELECT id, nombre, descripcion, unidad_medida, activo FROM medicamentos WHERE activo = 1 ORDER BY nombre`,
	)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()

	var meds []model.Medication
	for rows.Next() {
		var m model.Medication
		if err := rows.Scan(&m.ID, &m.Nombre, &m.Descripcion, &m.UnidadMedida, &m.Activo); err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

// Assign links a medication to a patient with its dosing plan.
func (s *MedicationStore) Assign(pm *model.PatientMedication) (*model.PatientMedication, error) {
	result, err := s.db.Exec(
		`INSERT INTO medicamentos_paciente (paciente_id, medicamento_id, dosis,
			frecuencia, horarios, indicaciones, fecha_inicio, fecha_fin)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pm.PatientID, pm.MedicationID, pm.Dosis, pm.Frecuencia, pm.Horarios,
		pm.Indicaciones, pm.FechaInicio, pm.FechaFin,
	)
	if err != nil {
		return nil, fmt.Errorf("assign medication: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetAssignment(id)
}

func (s *MedicationStore) GetAssignment(id int64) (*model.PatientMedication, error) {
	row := s.db.QueryRow(
		`SELECT mp.id, mp.paciente_id, mp.medicamento_id, mp.dosis, mp.frecuencia,
			mp.horarios, mp.indicaciones, mp.fecha_inicio, mp.fecha_fin, mp.activo,
			m.nombre, m.unidad_medida
		 FROM medicamentos_paciente mp
		 JOIN medicamentos m ON mp.medicamento_id = m.id
		 WHERE mp.id = ?`, id,
	)
	pm, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return pm, nil
}

// ListByPatient returns the active medication assignments for a patient.
func (s *MedicationStore) ListByPatient(patientID int64) ([]model.PatientMedication, error) {
	rows, err := s.db.Query(
		`SELECT mp.id, mp.paciente_id, mp.medicamento_id, mp.dosis, mp.frecuencia,
			mp.horarios, mp.indicaciones, mp.fecha_inicio, mp.fecha_fin, mp.activo,
			m.nombre, m.unidad_medida
		 FROM medicamentos_paciente mp
		 JOIN medicamentos m ON mp.medicamento_id = m.id
		 WHERE mp.paciente_id = ? AND mp.activo = 1`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.PatientMedication
	for rows.Next() {
		pm, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *pm)
	}
	return assignments, rows.Err()
}

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.PatientMedication, error) {
	var pm model.PatientMedication
	err := scanner.Scan(
		&pm.ID, &pm.PatientID, &pm.MedicationID, &pm.Dosis, &pm.Frecuencia,
		&pm.Horarios, &pm.Indicaciones, &pm.FechaInicio, &pm.FechaFin,
		&pm.Activo, &pm.Nombre, &pm.UnidadMedida,
	)
	if err != nil {
		return nil, err
	}
	return &pm, nil
}
