package entity

import "time"

// Roles conocidos. El conjunto es extensible vía configuración (AUTH_ALLOWED_ROLES).
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User es el registro de credenciales: username único, hash de password y rol.
type User struct {
	Username     string
	PasswordHash string // bcrypt o argon2id, nunca el password plano
	Role         string
	CreatedAt    time.Time
}

// Principal identidad autenticada. Se deriva de un token válido o de un login y no se modifica.
type Principal struct {
	Username string
	Role     string
}

// IsAdmin indica si el principal puede ver los documentos de todos los usuarios.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// PrincipalOf construye el principal a partir del registro de credenciales.
func PrincipalOf(u *User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{Username: u.Username, Role: u.Role}
}
