// Package password implementa el hashing lento y con sal de los passwords de usuario.
// Soporta bcrypt (por defecto) y argon2id; Verify detecta el algoritmo por el prefijo
// del hash almacenado, de modo que cambiar PASSWORD_HASHER no invalida hashes existentes.
package password

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// ErrTooLong el password supera el límite del algoritmo (72 bytes en bcrypt).
var ErrTooLong = errors.New("password: demasiado largo")

// Algoritmos soportados.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Hasher contrato de hash + verificación.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) bool
}

// Bcrypt hasher sobre golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt construye el hasher; cost fuera de rango usa bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// bcrypt solo lee los primeros 72 bytes
const bcryptMaxBytes = 72

func (b *Bcrypt) Hash(plain string) (string, error) {
	if len(plain) > bcryptMaxBytes {
		return "", ErrTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// Verify rechaza passwords de más de 72 bytes: bcrypt ignoraría el resto y aceptaría
// cualquier sufijo sobre un prefijo correcto.
func (b *Bcrypt) Verify(plain, encoded string) bool {
	if len(plain) > bcryptMaxBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain)) == nil
}

// Argon2id hasher sobre github.com/alexedwards/argon2id (formato $argon2id$v=19$m=...).
type Argon2id struct {
	params *argon2id.Params
}

// NewArgon2id construye el hasher; params nil usa argon2id.DefaultParams.
func NewArgon2id(params *argon2id.Params) *Argon2id {
	if params == nil {
		params = argon2id.DefaultParams
	}
	return &Argon2id{params: params}
}

func (a *Argon2id) Hash(plain string) (string, error) {
	hash, err := argon2id.CreateHash(plain, a.params)
	if err != nil {
		return "", fmt.Errorf("argon2id: %w", err)
	}
	return hash, nil
}

func (a *Argon2id) Verify(plain, encoded string) bool {
	ok, err := argon2id.ComparePasswordAndHash(plain, encoded)
	return err == nil && ok
}

// Service hashea con el algoritmo configurado y verifica con el que indique el hash.
type Service struct {
	primary  Hasher
	bcrypt   *Bcrypt
	argon2id *Argon2id
}

var _ Hasher = (*Service)(nil)

// New construye el servicio para el algoritmo dado (bcrypt | argon2id).
func New(algorithm string) (*Service, error) {
	s := &Service{bcrypt: NewBcrypt(bcrypt.DefaultCost), argon2id: NewArgon2id(nil)}
	switch algorithm {
	case AlgorithmBcrypt, "":
		s.primary = s.bcrypt
	case AlgorithmArgon2id:
		s.primary = s.argon2id
	default:
		return nil, fmt.Errorf("password: algoritmo no soportado %q", algorithm)
	}
	return s, nil
}

// NewWith construye el servicio con hashers explícitos (tests con costo mínimo).
func NewWith(primary Hasher, b *Bcrypt, a *Argon2id) *Service {
	return &Service{primary: primary, bcrypt: b, argon2id: a}
}

// Hash genera el hash con el algoritmo primario.
func (s *Service) Hash(plain string) (string, error) {
	return s.primary.Hash(plain)
}

// Verify compara plain contra encoded; un hash vacío o de formato desconocido nunca verifica.
func (s *Service) Verify(plain, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, "$argon2id$"):
		return s.argon2id != nil && s.argon2id.Verify(plain, encoded)
	case strings.HasPrefix(encoded, "$2a$"), strings.HasPrefix(encoded, "$2b$"), strings.HasPrefix(encoded, "$2y$"):
		return s.bcrypt != nil && s.bcrypt.Verify(plain, encoded)
	default:
		return false
	}
}
