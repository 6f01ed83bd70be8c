package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	OAuth    OAuthConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	BaseURL     string // Public base URL for share links
	Environment string // "development", "production", "test"
	Debug       bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StorageConfig controls where uploaded drawings are kept.
type StorageConfig struct {
	Dir       string // Root directory for image blobs
	PublicURL string // Base URL under which stored keys are served
}

type OAuthConfig struct {
	GitHub  OAuthProviderConfig
	Bangumi OAuthProviderConfig
	OIDC    OIDCConfig
}

type OAuthProviderConfig struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type OIDCConfig struct {
	Enabled      bool
	ClientID     string
	ClientSecret string
	RedirectURL  string
	IssuerURL    string
	Scopes       []string
}

type EmailConfig struct {
	Provider     string // "resend" or "console"
	FromAddress  string
	FromName     string
	ResendAPIKey string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnvInt("SERVER_PORT", 8080),
			BaseURL:     getEnvNonEmpty("APP_BASE_URL", "http://localhost:8080"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvBool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "drawwat"),
			Password: getEnv("DB_PASSWORD", "drawwat"),
			DBName:   getEnv("DB_NAME", "drawwat"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Dir:       getEnvNonEmpty("STORAGE_DIR", "data/images"),
			PublicURL: getEnvNonEmpty("STORAGE_PUBLIC_URL", "http://localhost:8080/images"),
		},
		OAuth: OAuthConfig{
			GitHub: OAuthProviderConfig{
				Enabled:      getEnvBool("GITHUB_OAUTH_ENABLED", false),
				ClientID:     getEnv("GITHUB_OAUTH_CLIENT_ID", ""),
				ClientSecret: getEnv("GITHUB_OAUTH_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("GITHUB_OAUTH_REDIRECT_URL", ""),
			},
			Bangumi: OAuthProviderConfig{
				Enabled:      getEnvBool("BANGUMI_OAUTH_ENABLED", false),
				ClientID:     getEnv("BANGUMI_OAUTH_CLIENT_ID", ""),
				ClientSecret: getEnv("BANGUMI_OAUTH_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("BANGUMI_OAUTH_REDIRECT_URL", ""),
			},
			OIDC: OIDCConfig{
				Enabled:      getEnvBool("OIDC_ENABLED", false),
				ClientID:     getEnv("OIDC_CLIENT_ID", ""),
				ClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("OIDC_REDIRECT_URL", ""),
				IssuerURL:    getEnvNonEmpty("OIDC_ISSUER_URL", "https://accounts.google.com"),
				Scopes:       getEnvList("OIDC_SCOPES", []string{"openid", "email", "profile"}),
			},
		},
		Email: EmailConfig{
			Provider:     getEnv("EMAIL_PROVIDER", "console"),
			FromAddress:  getEnv("EMAIL_FROM_ADDRESS", "noreply@drawwat.com"),
			FromName:     getEnv("EMAIL_FROM_NAME", "DrawWat"),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvNonEmpty(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValues []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return defaultValues
		}
		parts := strings.Split(trimmed, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			item := strings.TrimSpace(part)
			if item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	return defaultValues
}
