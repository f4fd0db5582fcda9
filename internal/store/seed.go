package store

import (
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/ejcalderongt/clinica/internal/model"
)

type seedAccount struct {
	codigo    string
	clave     string
	nombre    string
	apellidos string
	turno     string
	rol       string
	admin     bool
}

// SeedAccounts inserts the default accounts on first boot. Existing codes are
// left untouched, so reruns are harmless. Non-administrator seeds start in the
// forced-password-change state.
func SeedAccounts(nurses *NurseStore, adminPassword string, logger *slog.Logger) error {
	defaults := []seedAccount{
		{codigo: "admin", clave: adminPassword, nombre: "Admin", apellidos: "Sistema", turno: "todos", rol: "Administrador", admin: true},
		{codigo: "erick", clave: adminPassword, nombre: "Erick", apellidos: "Usuario", turno: "mañana"},
		{codigo: "cintia", clave: adminPassword, nombre: "Cintia", apellidos: "Usuario", turno: "tarde"},
		{codigo: "ENF001", clave: "123456", nombre: "Enfermero", apellidos: "De Prueba", turno: "mañana"},
	}

	for _, acc := range defaults {
		existing, err := nurses.GetByCode(acc.codigo)
		if err != nil {
			return fmt.Errorf("seed lookup %s: %w", acc.codigo, err)
		}
		if existing != nil {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(acc.clave), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed hash %s: %w", acc.codigo, err)
		}

		_, err = nurses.Create(&model.Nurse{
			Codigo:             acc.codigo,
			PasswordHash:       string(hash),
			Nombre:             acc.nombre,
			Apellidos:          acc.apellidos,
			Turno:              acc.turno,
			Rol:                acc.rol,
			IsAdmin:            acc.admin,
			Activo:             true,
			MustChangePassword: !acc.admin,
			FirstLogin:         !acc.admin,
		})
		if err != nil {
			return fmt.Errorf("seed create %s: %w", acc.codigo, err)
		}
		logger.Info("seeded account", "codigo", acc.codigo)
	}
	return nil
}
