package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/docs-api/internal/application/auth"
	"github.com/jhoicas/docs-api/internal/application/dto"
	"github.com/jhoicas/docs-api/internal/domain"
	"github.com/jhoicas/docs-api/internal/domain/entity"
	"github.com/jhoicas/docs-api/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/docs-api/pkg/jwt"
	"github.com/jhoicas/docs-api/pkg/logger"
	"github.com/jhoicas/docs-api/pkg/password"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testSecret = "test-secret-key-for-unit-tests"

type fixture struct {
	uc    *auth.AuthUseCase
	users *memory.UserRepo
	now   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{users: memory.NewUserRepository(), now: &now}

	tokens, err := pkgjwt.NewManager(testSecret, "HS256", "docs-api-test")
	require.NoError(t, err)
	tokens.WithClock(func() time.Time { return *f.now })

	hasher := password.NewBcrypt(bcrypt.MinCost)
	f.uc, err = auth.NewAuthUseCase(f.users, hasher, tokens, auth.Config{}, logger.Nop(), nil)
	require.NoError(t, err)
	return f
}

func (f *fixture) register(t *testing.T, username, pw, role string) {
	t.Helper()
	_, err := f.uc.Register(context.Background(), dto.RegisterRequest{Username: username, Password: pw, Role: role})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Register
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_DuplicadoRetornaConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "pw1", Role: "employee"})
	require.NoError(t, err, "el primer registro debe funcionar")
	assert.Equal(t, &dto.RegisterResponse{Username: "alice", Role: "employee"}, out)

	_, err = f.uc.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "otro"})
	assert.ErrorIs(t, err, domain.ErrConflict, "el segundo registro del mismo username falla")
}

func TestRegister_RolPorDefectoEmployee(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Register(context.Background(), dto.RegisterRequest{Username: "bob", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleEmployee, out.Role)
}

func TestRegister_NoGuardaPasswordPlano(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pw1", "")

	u, err := f.users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)
}

func TestRegister_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []dto.RegisterRequest{
		{Username: "", Password: "pw"},
		{Username: "   ", Password: "pw"},
		{Username: "carol", Password: ""},
		{Username: "carol", Password: "pw", Role: "root"},
	}
	for _, in := range cases {
		_, err := f.uc.Register(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "in=%+v", in)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Authenticate / Login
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthenticate_OK(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pw1", "admin")

	p, err := f.uc.Authenticate(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, &entity.Principal{Username: "alice", Role: "admin"}, p)
}

func TestAuthenticate_ErrorUniforme(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pw1", "")
	ctx := context.Background()

	_, errUnknown := f.uc.Authenticate(ctx, "nadie", "pw1")
	_, errWrong := f.uc.Authenticate(ctx, "alice", "incorrecto")

	require.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	require.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error(), "no se distingue usuario inexistente de password incorrecto")
}

func TestLogin_PasswordLargoConSufijoIncorrecto(t *testing.T) {
	f := newFixture(t)
	pw := strings.Repeat("a", 72)
	f.register(t, "alice", pw, "")

	_, err := f.uc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: pw + "WRONG"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.uc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: pw})
	assert.NoError(t, err)
}

func TestAuthenticate_UsernameConEspacios(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice ", "pw1", "")

	p, err := f.uc.Authenticate(context.Background(), "alice ", "pw1")
	require.NoError(t, err, "el login normaliza el username igual que el registro")
	assert.Equal(t, "alice", p.Username)

	_, err = f.uc.Authenticate(context.Background(), "  alice", "pw1")
	assert.NoError(t, err)
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("sin entropía") }
func (failingHasher) Verify(string, string) bool  { return false }

func TestNewAuthUseCase_HasherRoto(t *testing.T) {
	tokens, err := pkgjwt.NewManager(testSecret, "HS256", "docs-api-test")
	require.NoError(t, err)

	_, err = auth.NewAuthUseCase(memory.NewUserRepository(), failingHasher{}, tokens, auth.Config{}, logger.Nop(), nil)
	assert.Error(t, err)
}

func TestLogin_EmiteBearerToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pw1", "")

	out, err := f.uc.Login(context.Background(), dto.LoginRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", out.TokenType)
	assert.NotEmpty(t, out.AccessToken)
	assert.True(t, out.ExpiresAt.Equal(f.now.Add(auth.DefaultTokenTTL)), "TTL por defecto de 30 minutos")
}

// ──────────────────────────────────────────────────────────────────────────────
// ValidateToken
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateToken_AntesYDespuesDelTTL(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pw1", "")
	ctx := context.Background()

	tok, err := f.uc.IssueToken(&entity.Principal{Username: "alice", Role: "employee"}, 10*time.Minute)
	require.NoError(t, err)

	*f.now = f.now.Add(9 * time.Minute)
	p, err := f.uc.ValidateToken(ctx, tok.AccessToken)
	require.NoError(t, err, "antes de T el token es válido")
	assert.Equal(t, "alice", p.Username)

	*f.now = f.now.Add(2 * time.Minute)
	_, err = f.uc.ValidateToken(ctx, tok.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "después de T el token expira")
}

func TestValidateToken_SubjectInexistente(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pw1", "")
	ctx := context.Background()

	tok, err := f.uc.Login(ctx, dto.LoginRequest{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	f.users.Delete("alice")
	_, err = f.uc.ValidateToken(ctx, tok.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "un subject sin registro de credenciales es rechazado")
}

func TestValidateToken_RolDesdeElStore(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pw1", "employee")

	// token con un claim de rol manipulado pero firma válida
	tok, err := f.uc.IssueToken(&entity.Principal{Username: "alice", Role: "admin"}, time.Minute)
	require.NoError(t, err)

	p, err := f.uc.ValidateToken(context.Background(), tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "employee", p.Role)
}

func TestValidateToken_Malformado(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.ValidateToken(context.Background(), "no-es-un-jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
