package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/docs-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 30, cfg.JWT.Expiration, "el TTL por defecto es de 30 minutos")
	assert.Equal(t, "uploaded_files", cfg.Storage.UploadDir)
	assert.Equal(t, config.StorageLocal, cfg.Storage.Provider)
	assert.Equal(t, []string{"employee", "admin"}, cfg.Auth.AllowedRoles)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_SinSecretFalla(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "memory")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_ListaDeRoles(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTH_ALLOWED_ROLES", " employee , admin,auditor ,")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"employee", "admin", "auditor"}, cfg.Auth.AllowedRoles)
}

func TestValidate_DriversDesconocidos(t *testing.T) {
	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: "x", Algorithm: "RS256", Expiration: 30},
		Auth:    config.AuthConfig{PasswordHasher: "md5", AllowedRoles: []string{"employee"}},
		DB:      config.DBConfig{Driver: "mongo"},
		Storage: config.StorageConfig{Provider: "ftp", MaxUploadBytes: 1},
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"JWT_ALGORITHM", "PASSWORD_HASHER", "STORE_DRIVER", "STORAGE_PROVIDER"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "docs", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/docs?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", c.ConnectionString())
}
