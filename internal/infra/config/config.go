package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// ErrConfigurationMissing means a setting needed for sending mail is not set.
// It is not fatal on its own; it only matters once a mail session is opened.
var ErrConfigurationMissing = errors.New("missing email configuration")

const (
	defaultSMTPServer  = "smtp.gmail.com"
	defaultSMTPPort    = 465
	defaultSMTPTimeout = 30 * time.Second
	defaultDatabaseURL = "scripts/storage.db"
	defaultLogFile     = "logs/emailsender.log"
	defaultCronDaily   = "0 8 * * *"
)

// SMTPConfig holds the mail submission settings.
type SMTPConfig struct {
	Server   string
	Port     int
	Address  string // sender address, also the login user
	Password string
	Timeout  time.Duration
}

// Missing returns the names of unset variables required for sending.
func (c SMTPConfig) Missing() []string {
	var missing []string
	if c.Server == "" {
		missing = append(missing, "SMTP_SERVER")
	}
	if c.Port == 0 {
		missing = append(missing, "SMTP_PORT")
	}
	if c.Address == "" {
		missing = append(missing, "EMAIL_ADDRESS")
	}
	if c.Password == "" {
		missing = append(missing, "EMAIL_PASSWORD")
	}
	return missing
}

// Validate returns ErrConfigurationMissing naming every unset variable.
func (c SMTPConfig) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}
	return nil
}

// AppConfig holds all configuration for the application
type AppConfig struct {
	SMTP          SMTPConfig
	DatabaseURL   string
	LogLevel      string
	Environment   string
	LogFile       string // empty disables file output
	CronSpecDaily string
}

// Load reads configuration from environment variables and the given .env files
// (".env" when none is given). Missing files are ignored and existing
// variables are never overridden.
// Only malformed values are errors; unset mail credentials are reported by SMTPConfig.Validate.
func Load(envFiles ...string) (*AppConfig, error) {
	_ = godotenv.Load(envFiles...)

	cfg := &AppConfig{}
	var err error

	cfg.SMTP.Server = getEnv("SMTP_SERVER", defaultSMTPServer)

	cfg.SMTP.Port = defaultSMTPPort
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		cfg.SMTP.Port, err = strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
	}

	cfg.SMTP.Address = os.Getenv("EMAIL_ADDRESS")
	cfg.SMTP.Password = os.Getenv("EMAIL_PASSWORD")

	cfg.SMTP.Timeout = defaultSMTPTimeout
	if timeoutStr := os.Getenv("SMTP_TIMEOUT"); timeoutStr != "" {
		cfg.SMTP.Timeout, err = time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_TIMEOUT: %w", err)
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))

	// LOG_FILE set to an empty value turns file logging off.
	if v, ok := os.LookupEnv("LOG_FILE"); ok {
		cfg.LogFile = v
	} else {
		cfg.LogFile = defaultLogFile
	}

	cfg.CronSpecDaily = getEnv("CRON_SPEC_DAILY", defaultCronDaily)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
