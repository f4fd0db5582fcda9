package store

import (
	"database/sql"
	"fmt"

	"github.com/ejcalderongt/clinica/internal/model"
)

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	err := scanner.Scan(
		&n.ID, &n.Fecha, &n.Hora, &n.PatientID, &n.NurseID, &n.Observaciones,
		&n.Medicamentos, &n.Tratamientos, &n.FechaRegistro,
		&n.NurseNombre, &n.NurseApellidos,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

const noteCols = `n.id, n.fecha, n.hora, n.paciente_id, n.enfermero_id,
	n.observaciones, n.medicamentos_administrados, n.tratamientos,
	n.fecha_registro, e.nombre, e.apellidos`

const noteFrom = ` FROM notas_enfermeria n JOIN enfermeros e ON n.enfermero_id = e.id`

func (s *NoteStore) Create(fecha, hora string, patientID, nurseID int64, observaciones, medicamentos, tratamientos string) (*model.Note, error) {
	result, err := s.db.Exec(
		`INSERT INTO notas_enfermeria (fecha, hora, paciente_id, enfermero_id,
			observaciones, medicamentos_administrados, tratamientos)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fecha, hora, patientID, nurseID, observaciones, medicamentos, tratamientos,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *NoteStore) GetByID(id int64) (*model.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteCols+noteFrom+` WHERE n.id = ?`, id)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func (s *NoteStore) List() ([]model.Note, error) {
	rows, err := s.db.Query(`SELECT ` + noteCols + noteFrom + ` ORDER BY n.fecha DESC, n.hora DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()
	return collectNotes(rows)
}

func (s *NoteStore) ListByPatient(patientID int64) ([]model.Note, error) {
	rows, err := s.db.Query(
		`SELECT `+noteCols+noteFrom+` WHERE n.paciente_id = ? ORDER BY n.fecha DESC, n.hora DESC`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes by patient: %w", err)
	}
	defer rows.Close()
	return collectNotes(rows)
}

func collectNotes(rows *sql.Rows) ([]model.Note, error) {
	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}
