package dto

import "time"

// RegisterRequest entrada para registro: username, password y rol opcional (employee por defecto).
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterResponse eco del registro sin password ni hash.
type RegisterResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginRequest credenciales en form-urlencoded (compatible con OAuth2 password flow).
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// TokenResponse bearer token emitido tras un login exitoso.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
