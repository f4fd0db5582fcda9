package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ejcalderongt/clinica/internal/model"
)

// SessionTTL is the fixed session lifetime. Reads never extend it; only
// creation and explicit writes set a fresh expiry.
const SessionTTL = 30 * 24 * time.Hour

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	err := scanner.Scan(&s.Token, &s.NurseID, &s.Data, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const sessionCols = `token, enfermero_id, data, expires_at, created_at`

// Create generates a new session with a crypto-random token and fixed expiry.
func (s *SessionStore) Create(nurseID int64, data string) (*model.Session, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)
	expiresAt := time.Now().UTC().Add(SessionTTL)

	_, err := s.db.Exec(
		`INSERT INTO sessions (token, enfermero_id, data, expires_at) VALUES (?, ?, ?, ?)`,
		token, nurseID, data, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE token = ?`, token)
	return scanSession(row)
}

// GetByToken returns the session for the given token, or nil if expired or
// not found. Expiry is checked here so an expired row behaves exactly like a
// missing one.
func (s *SessionStore) GetByToken(token string) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE token = ?`, token)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	if !sess.ExpiresAt.After(time.Now().UTC()) {
		return nil, nil
	}
	return sess, nil
}

// UpdateData rewrites the auxiliary payload. As an explicit write it also
// resets the expiry clock.
func (s *SessionStore) UpdateData(token, data string) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET data = ?, expires_at = ? WHERE token = ?`,
		data, time.Now().UTC().Add(SessionTTL), token,
	)
	if err != nil {
		return fmt.Errorf("update session data: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(token string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteByNurseID removes every session belonging to the account. Called on
// password change so stolen tokens die with the old credential.
func (s *SessionStore) DeleteByNurseID(nurseID int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE enfermero_id = ?`, nurseID)
	if err != nil {
		return fmt.Errorf("delete sessions by nurse: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
