package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ejcalderongt/clinica/internal/model"
)

type NurseStore struct {
	db *sql.DB
}

func NewNurseStore(db *sql.DB) *NurseStore {
	return &NurseStore{db: db}
}

func scanNurse(scanner interface{ Scan(...any) error }) (*model.Nurse, error) {
	var n model.Nurse
	err := scanner.Scan(
		&n.ID, &n.Codigo, &n.PasswordHash, &n.Nombre, &n.Apellidos, &n.Turno,
		&n.Rol, &n.IsAdmin, &n.CanManageBilling, &n.Activo,
		&n.MustChangePassword, &n.FirstLogin, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

const nurseCols = `id, codigo, clave, nombre, apellidos, turno, rol, es_admin,
	puede_gestionar_cobros, activo, debe_cambiar_clave, primer_login, fecha_registro`

// Create inserts a new account. The PasswordHash field must already hold a
// bcrypt hash; plaintext never reaches this layer.
func (s *NurseStore) Create(n *model.Nurse) (*model.Nurse, error) {
	result, err := s.db.Exec(
		`INSERT INTO enfermeros (codigo, clave, nombre, apellidos, turno, rol,
			es_admin, puede_gestionar_cobros, activo, debe_cambiar_clave, primer_login)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Codigo, n.PasswordHash, n.Nombre, n.Apellidos, n.Turno, n.Rol,
		n.IsAdmin, n.CanManageBilling, n.Activo, n.MustChangePassword, n.FirstLogin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("insert nurse: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *NurseStore) GetByID(id int64) (*model.Nurse, error) {
	row := s.db.QueryRow(`SELECT `+nurseCols+` FROM enfermeros WHERE id = ?`, id)
	n, err := scanNurse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get nurse: %w", err)
	}
	return n, nil
}

func (s *NurseStore) GetByCode(codigo string) (*model.Nurse, error) {
	row := s.db.QueryRow(`SELECT `+nurseCols+` FROM enfermeros WHERE codigo = ?`, codigo)
	n, err := scanNurse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get nurse by code: %w", err)
	}
	return n, nil
}

// GetActiveByCode looks up an account by business code, restricted to active
// rows. Deactivated accounts are invisible to login.
func (s *NurseStore) GetActiveByCode(codigo string) (*model.Nurse, error) {
	row := s.db.QueryRow(
		`SELECT `+nurseCols+` FROM enfermeros WHERE codigo = ? AND activo = 1`,
		codigo,
	)
	n, err := scanNurse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active nurse by code: %w", err)
	}
	return n, nil
}

func (s *NurseStore) List() ([]model.Nurse, error) {
	rows, err := s.db.Query(`SELECT ` + nurseCols + ` FROM enfermeros ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("list nurses: %w", err)
	}
	defer rows.Close()

	var nurses []model.Nurse
	for rows.Next() {
		n, err := scanNurse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan nurse: %w", err)
		}
		nurses = append(nurses, *n)
	}
	return nurses, rows.Err()
}

// Update edits profile fields. The administrator row keeps its identity: its
// codigo, admin claim, and active flag cannot be changed through here.
func (s *NurseStore) Update(id int64, codigo, nombre, apellidos, turno, rol string, canManageBilling, activo bool) (*model.Nurse, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.IsAdmin && (codigo != existing.Codigo || !activo) {
		return nil, ErrProtectedAccount
	}

	_, err = s.db.Exec(
		`UPDATE enfermeros SET codigo = ?, nombre = ?, apellidos = ?, turno = ?,
			rol = ?, puede_gestionar_cobros = ?, activo = ? WHERE id = ?`,
		codigo, nombre, apellidos, turno, rol, canManageBilling, activo, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("update nurse: %w", err)
	}
	return s.GetByID(id)
}

// UpdatePassword replaces the credential hash in a single statement. When
// clearFlags is set, the forced-change and first-login flags reset atomically
// with the hash.
func (s *NurseStore) UpdatePassword(id int64, hash string, clearFlags bool) error {
	var err error
	if clearFlags {
		_, err = s.db.Exec(
			`UPDATE enfermeros SET clave = ?, debe_cambiar_clave = 0, primer_login = 0 WHERE id = ?`,
			hash, id,
		)
	} else {
		_, err = s.db.Exec(`UPDATE enfermeros SET clave = ? WHERE id = ?`, hash, id)
	}
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Deactivate soft-deletes an account. The administrator cannot be deactivated.
func (s *NurseStore) Deactivate(id int64) (*model.Nurse, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.IsAdmin {
		return nil, ErrProtectedAccount
	}

	if _, err := s.db.Exec(`UPDATE enfermeros SET activo = 0 WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("deactivate nurse: %w", err)
	}
	return s.GetByID(id)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
