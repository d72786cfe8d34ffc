package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente .env).
// Se carga una sola vez al arrancar el proceso.
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	Auth    AuthConfig
	HTTP    HTTPConfig
	Storage StorageConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env         string // development, staging, production
	Name        string
	LogLevel    string
	SwaggerFile string
}

// Drivers de persistencia soportados.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	Driver      string // postgres | memory
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	Migrate     bool // aplicar migraciones embebidas al arrancar
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de los bearer tokens.
type JWTConfig struct {
	Secret     string
	Algorithm  string // HS256, HS384, HS512
	Expiration int    // minutos
	Issuer     string
}

// AuthConfig configuración de registro y hashing de passwords.
type AuthConfig struct {
	PasswordHasher string   // bcrypt | argon2id
	AllowedRoles   []string // roles aceptados en /register
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Proveedores de blob storage soportados.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// StorageConfig configuración del blob store de archivos subidos.
type StorageConfig struct {
	Provider       string // local | s3
	UploadDir      string
	MaxUploadBytes int
	S3             S3Config
}

// S3Config credenciales de un bucket S3/MinIO.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde .env).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, UPLOAD_DIR, etc.
func Load() (*Config, error) {
	// .env solo para desarrollo local; godotenv no pisa variables ya definidas.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("cargar .env: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:         getString(v, "APP_ENV", "development"),
			Name:        getString(v, "APP_NAME", "docs-api"),
			LogLevel:    getString(v, "LOG_LEVEL", "info"),
			SwaggerFile: getString(v, "SWAGGER_FILE", "./docs/swagger.json"),
		},
		DB: DBConfig{
			Driver:      getString(v, "STORE_DRIVER", StoreDriverPostgres),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "docs"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			Migrate:     getBool(v, "DB_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Algorithm:  getString(v, "JWT_ALGORITHM", "HS256"),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 30),
			Issuer:     getString(v, "JWT_ISSUER", "docs-api"),
		},
		Auth: AuthConfig{
			PasswordHasher: getString(v, "PASSWORD_HASHER", "bcrypt"),
			AllowedRoles:   getList(v, "AUTH_ALLOWED_ROLES", []string{"employee", "admin"}),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Storage: StorageConfig{
			Provider:       getString(v, "STORAGE_PROVIDER", StorageLocal),
			UploadDir:      getString(v, "UPLOAD_DIR", "uploaded_files"),
			MaxUploadBytes: getInt(v, "UPLOAD_MAX_BYTES", 32<<20),
			S3: S3Config{
				Endpoint:  getString(v, "S3_ENDPOINT", ""),
				Region:    getString(v, "S3_REGION", "us-east-1"),
				Bucket:    getString(v, "S3_BUCKET", ""),
				AccessKey: getString(v, "S3_ACCESS_KEY", ""),
				SecretKey: getString(v, "S3_SECRET_KEY", ""),
				UseSSL:    getBool(v, "S3_USE_SSL", false),
				PathStyle: getBool(v, "S3_PATH_STYLE", true),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifica que los valores obligatorios estén presentes y que los drivers sean conocidos.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET es requerido"))
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM no soportado: %q", c.JWT.Algorithm))
	}
	if c.JWT.Expiration <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINUTES debe ser positivo"))
	}
	switch c.Auth.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_HASHER no soportado: %q", c.Auth.PasswordHasher))
	}
	if len(c.Auth.AllowedRoles) == 0 {
		errs = append(errs, errors.New("AUTH_ALLOWED_ROLES no puede estar vacío"))
	}
	switch c.DB.Driver {
	case StoreDriverPostgres:
		if c.DB.DatabaseURL == "" && c.DB.Host == "" {
			errs = append(errs, errors.New("DATABASE_URL o DB_HOST es requerido"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER no soportado: %q", c.DB.Driver))
	}
	switch c.Storage.Provider {
	case StorageLocal:
		if c.Storage.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR es requerido"))
		}
	case StorageS3:
		if c.Storage.S3.Endpoint == "" || c.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_ENDPOINT y S3_BUCKET son requeridos"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_PROVIDER no soportado: %q", c.Storage.Provider))
	}
	if c.Storage.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES debe ser positivo"))
	}
	return errors.Join(errs...)
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

// getList lee una lista separada por comas ("employee,admin").
func getList(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	var out []string
	for _, s := range strings.Split(v.GetString(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
