package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/docs-api/internal/application/dto"
	"github.com/jhoicas/docs-api/internal/domain"
	"github.com/jhoicas/docs-api/internal/domain/entity"
	"github.com/jhoicas/docs-api/internal/domain/repository"
	"github.com/jhoicas/docs-api/pkg/jwt"
	"github.com/jhoicas/docs-api/pkg/logger"
	"github.com/jhoicas/docs-api/pkg/metrics"
	"github.com/jhoicas/docs-api/pkg/password"
)

// DefaultTokenTTL vigencia de un token si la configuración no indica otra.
const DefaultTokenTTL = 30 * time.Minute

// Config parámetros de registro y emisión de tokens.
type Config struct {
	TokenTTL     time.Duration
	AllowedRoles []string
}

// AuthUseCase casos de uso de autenticación: registro, login y validación de bearer tokens.
type AuthUseCase struct {
	users   repository.UserRepository
	hasher  password.Hasher
	tokens  *jwt.Manager
	cfg     Config
	log     *logger.Logger
	metrics *metrics.Collector

	// hash de relleno para que un username inexistente cueste lo mismo que un password incorrecto
	dummyHash string
}

// NewAuthUseCase construye el caso de uso de auth. Falla si el hasher no puede generar
// el hash de relleno.
func NewAuthUseCase(
	users repository.UserRepository,
	hasher password.Hasher,
	tokens *jwt.Manager,
	cfg Config,
	log *logger.Logger,
	m *metrics.Collector,
) (*AuthUseCase, error) {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if len(cfg.AllowedRoles) == 0 {
		cfg.AllowedRoles = []string{entity.RoleEmployee, entity.RoleAdmin}
	}
	if log == nil {
		log = logger.Nop()
	}
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("hash de relleno: %w", err)
	}
	return &AuthUseCase{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		cfg:       cfg,
		log:       log.Named("auth"),
		metrics:   m,
		dummyHash: dummy,
	}, nil
}

// Register crea el registro de credenciales. Devuelve domain.ErrConflict si el username ya existe
// y domain.ErrInvalidInput si faltan campos o el rol no está permitido.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username y password son requeridos", domain.ErrInvalidInput)
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = entity.RoleEmployee
	}
	if !slices.Contains(uc.cfg.AllowedRoles, role) {
		return nil, fmt.Errorf("%w: rol %q no permitido", domain.ErrInvalidInput, role)
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, fmt.Errorf("%w: password demasiado largo", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.metrics.ObserveRegistration("conflict")
			return nil, err
		}
		uc.metrics.ObserveRegistration("error")
		return nil, fmt.Errorf("crear usuario: %w", err)
	}

	uc.metrics.ObserveRegistration("ok")
	uc.log.Info().Str("username", username).Str("role", role).Msg("usuario registrado")
	return &dto.RegisterResponse{Username: user.Username, Role: user.Role}, nil
}

// Authenticate verifica username/password y devuelve el principal.
// Username inexistente y password incorrecto devuelven el mismo domain.ErrInvalidCredentials;
// la causa solo queda en el log de debug. El username se normaliza igual que en Register.
func (uc *AuthUseCase) Authenticate(ctx context.Context, username, plain string) (*entity.Principal, error) {
	username = strings.TrimSpace(username)
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.hasher.Verify(plain, uc.dummyHash)
			uc.log.Debug().Str("username", username).Str("reason", "unknown_user").Msg("login rechazado")
			uc.metrics.ObserveLogin("invalid")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if !uc.hasher.Verify(plain, user.PasswordHash) {
		uc.log.Debug().Str("username", username).Str("reason", "bad_password").Msg("login rechazado")
		uc.metrics.ObserveLogin("invalid")
		return nil, domain.ErrInvalidCredentials
	}
	uc.metrics.ObserveLogin("ok")
	return entity.PrincipalOf(user), nil
}

// Login autentica y emite un bearer token con el TTL configurado.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.TokenResponse, error) {
	principal, err := uc.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}
	return uc.IssueToken(principal, uc.cfg.TokenTTL)
}

// IssueToken emite un token para el principal con la vigencia indicada.
func (uc *AuthUseCase) IssueToken(p *entity.Principal, ttl time.Duration) (*dto.TokenResponse, error) {
	token, exp, err := uc.tokens.Generate(p.Username, p.Role, ttl)
	if err != nil {
		return nil, fmt.Errorf("emitir token: %w", err)
	}
	return &dto.TokenResponse{AccessToken: token, TokenType: "bearer", ExpiresAt: exp}, nil
}

// ValidateToken verifica firma y expiración y resuelve el subject contra el store de credenciales.
// Cualquier rechazo devuelve domain.ErrUnauthorized; el rol se toma del registro, no del claim.
func (uc *AuthUseCase) ValidateToken(ctx context.Context, token string) (*entity.Principal, error) {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		uc.log.Debug().Err(err).Msg("token rechazado")
		uc.metrics.ObserveTokenRejected()
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Debug().Str("username", claims.Subject).Msg("token de usuario inexistente")
			uc.metrics.ObserveTokenRejected()
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("resolver subject: %w", err)
	}
	return entity.PrincipalOf(user), nil
}
