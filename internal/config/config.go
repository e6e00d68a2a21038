package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	LogLevel             string

	JWTSecret string

	// Directory selects where share targets are resolved: "local" uses
	// the service's own users table, "http" an external Keycloak-style
	// admin API.
	DirectoryMode     string
	DirectoryURL      string
	DirectoryRealm    string
	DirectoryClientID string
	DirectoryUsername string
	DirectoryPassword string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		LogLevel:             getenv("LOG_LEVEL", "info"),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.JWTSecret = mustGetenv("JWT_SECRET")

	cfg.DirectoryMode = getenv("DIRECTORY_MODE", "local")
	if cfg.DirectoryMode == "http" {
		cfg.DirectoryURL = mustGetenv("DIRECTORY_URL")
		cfg.DirectoryRealm = getenv("DIRECTORY_REALM", "sharednotes")
		cfg.DirectoryClientID = getenv("DIRECTORY_CLIENT_ID", "admin-cli")
		cfg.DirectoryUsername = mustGetenv("DIRECTORY_ADMIN_USERNAME")
		cfg.DirectoryPassword = mustGetenv("DIRECTORY_ADMIN_PASSWORD")
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
