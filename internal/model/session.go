package model

import "time"

// Session is a persisted login session. Token is the opaque capability held
// by the client; Data carries auxiliary state serialized as JSON.
type Session struct {
	Token     string    `json:"token"`
	NurseID   int64     `json:"enfermero_id"`
	Data      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionData is the auxiliary payload serialized into Session.Data.
type SessionData struct {
	NombreCompleto string `json:"nombre_completo,omitempty"`
}
