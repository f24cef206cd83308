package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string
	SeedData bool

	CORSAllowedOrigins []string

	DB     DBConfig
	Auth   AuthConfig
	JWT    JWTConfig
	Paging PagingConfig
	SMTP   SMTPConfig
	Report ReportConfig
}

// DBConfig selects the database driver and connection string.
type DBConfig struct {
	Driver string // "postgres" or "sqlite3"
	Conn   string
}

// AuthConfig bounds the credentials accepted at registration.
type AuthConfig struct {
	UsernameMinLength int
	UsernameMaxLength int
	PasswordMinLength int
	PasswordMaxLength int
	BcryptCost        int
}

// JWTConfig holds bearer token settings.
type JWTConfig struct {
	Issuer         string
	Audience       string
	Secret         string
	ExpiresMinutes int
}

// PagingConfig holds book listing defaults.
type PagingConfig struct {
	DefaultPageNumber int
	DefaultPageSize   int
	MaxPageSize       int
	MaxSearchLength   int
}

// SMTPConfig holds outgoing mail settings for the catalog report.
type SMTPConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	SenderEmail string
}

// ReportConfig schedules the catalog report. An empty Cron disables it.
type ReportConfig struct {
	Cron      string
	Recipient string
}

// NewConfig loads configuration from environment variables.
// A .env file in the working directory, if present, is loaded first
// and never overrides variables that are already set.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	intEnv := func(key string, defaultVal int) int {
		v, err := getEnvInt(key, defaultVal)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	boolEnv := func(key string, defaultVal bool) bool {
		v, err := getEnvBool(key, defaultVal)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		SeedData:           boolEnv("SEED_DATA", true),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DB: DBConfig{
			Driver: getEnv("DB_DRIVER", "postgres"),
			Conn:   getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=library sslmode=disable"),
		},
		Auth: AuthConfig{
			UsernameMinLength: intEnv("AUTH_USERNAME_MIN_LENGTH", 3),
			UsernameMaxLength: intEnv("AUTH_USERNAME_MAX_LENGTH", 50),
			PasswordMinLength: intEnv("AUTH_PASSWORD_MIN_LENGTH", 6),
			PasswordMaxLength: intEnv("AUTH_PASSWORD_MAX_LENGTH", 72),
			BcryptCost:        intEnv("AUTH_BCRYPT_COST", 10),
		},
		JWT: JWTConfig{
			Issuer:         getEnv("JWT_ISSUER", "library-service"),
			Audience:       getEnv("JWT_AUDIENCE", "library-clients"),
			Secret:         getEnv("JWT_SECRET", ""),
			ExpiresMinutes: intEnv("JWT_EXPIRES_MINUTES", 60),
		},
		Paging: PagingConfig{
			DefaultPageNumber: intEnv("PAGING_DEFAULT_PAGE_NUMBER", 1),
			DefaultPageSize:   intEnv("PAGING_DEFAULT_PAGE_SIZE", 10),
			MaxPageSize:       intEnv("PAGING_MAX_PAGE_SIZE", 100),
			MaxSearchLength:   intEnv("PAGING_MAX_SEARCH_LENGTH", 100),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnv("SMTP_PORT", "587"),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderEmail: getEnv("SENDER_EMAIL", "library@localhost"),
		},
		Report: ReportConfig{
			Cron:      getEnv("REPORT_CRON", ""),
			Recipient: getEnv("REPORT_RECIPIENT", ""),
		},
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	if c.DB.Conn == "" {
		return fmt.Errorf("DB_CONN is required")
	}
	if c.DB.Driver != "postgres" && c.DB.Driver != "sqlite3" {
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite3, got %q", c.DB.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes for HS256")
	}
	if c.JWT.ExpiresMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRES_MINUTES must be positive")
	}
	if err := checkBounds("AUTH_USERNAME", c.Auth.UsernameMinLength, c.Auth.UsernameMaxLength); err != nil {
		return err
	}
	if err := checkBounds("AUTH_PASSWORD", c.Auth.PasswordMinLength, c.Auth.PasswordMaxLength); err != nil {
		return err
	}
	// bcrypt ignores everything past 72 bytes
	if c.Auth.PasswordMaxLength > 72 {
		return fmt.Errorf("AUTH_PASSWORD_MAX_LENGTH cannot exceed 72")
	}
	if c.Paging.MaxPageSize < 1 {
		return fmt.Errorf("PAGING_MAX_PAGE_SIZE must be at least 1")
	}
	if c.Paging.DefaultPageNumber < 1 {
		return fmt.Errorf("PAGING_DEFAULT_PAGE_NUMBER must be at least 1")
	}
	if c.Paging.DefaultPageSize < 1 || c.Paging.DefaultPageSize > c.Paging.MaxPageSize {
		return fmt.Errorf("PAGING_DEFAULT_PAGE_SIZE must be between 1 and %d", c.Paging.MaxPageSize)
	}
	if c.Paging.MaxSearchLength < 1 {
		return fmt.Errorf("PAGING_MAX_SEARCH_LENGTH must be at least 1")
	}
	if c.Report.Cron != "" && c.Report.Recipient == "" {
		return fmt.Errorf("REPORT_RECIPIENT is required when REPORT_CRON is set")
	}
	return nil
}

// String returns a string representation of the config with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, DB: %s, JWT: %s/%s ***, Report: %q}",
		c.Port, c.DB.Driver, c.JWT.Issuer, c.JWT.Audience, c.Report.Cron)
}

func checkBounds(prefix string, lo, hi int) error {
	if lo < 1 {
		return fmt.Errorf("%s_MIN_LENGTH must be at least 1", prefix)
	}
	if hi < lo {
		return fmt.Errorf("%s_MAX_LENGTH must not be less than %s_MIN_LENGTH", prefix, prefix)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		return b, nil
	}
	return defaultVal, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
