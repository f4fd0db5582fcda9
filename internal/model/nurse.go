package model

import "time"

// Nurse is a staff account. Codigo is the business key used to log in;
// the surrogate ID only exists for foreign keys. PasswordHash is never
// serialized.
type Nurse struct {
	ID                 int64     `json:"id"`
	Codigo             string    `json:"codigo"`
	PasswordHash       string    `json:"-"`
	Nombre             string    `json:"nombre"`
	Apellidos          string    `json:"apellidos"`
	Turno              string    `json:"turno"`
	Rol                string    `json:"rol,omitempty"`
	IsAdmin            bool      `json:"es_admin"`
	CanManageBilling   bool      `json:"puede_gestionar_cobros"`
	Activo             bool      `json:"activo"`
	MustChangePassword bool      `json:"-"`
	FirstLogin         bool      `json:"-"`
	CreatedAt          time.Time `json:"fecha_registro"`
}

// PendingChange reports whether login must short-circuit into the
// password-change flow. The administrator is always exempt.
func (n *Nurse) PendingChange() bool {
	if n.IsAdmin {
		return false
	}
	return n.MustChangePassword || n.FirstLogin
}

// PublicProfile is the identity payload returned by login and status
// responses. It never carries credential material.
type PublicProfile struct {
	ID        int64  `json:"id"`
	Codigo    string `json:"codigo"`
	Nombre    string `json:"nombre"`
	Apellidos string `json:"apellidos"`
	Turno     string `json:"turno,omitempty"`
	Activo    bool   `json:"activo"`
}

// Profile returns the public view of the account.
func (n *Nurse) Profile() PublicProfile {
	return PublicProfile{
		ID:        n.ID,
		Codigo:    n.Codigo,
		Nombre:    n.Nombre,
		Apellidos: n.Apellidos,
		Turno:     n.Turno,
		Activo:    n.Activo,
	}
}

// PendingProfile is the reduced payload for the requiere_cambio_clave
// response: just enough for the client to route to the change form.
func (n *Nurse) PendingProfile() PublicProfile {
	return PublicProfile{
		ID:        n.ID,
		Codigo:    n.Codigo,
		Nombre:    n.Nombre,
		Apellidos: n.Apellidos,
	}
}
