package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	commonerrors "github.com/Soodgit/ai-code-documenter/internal/common/errors"
)

type ServerConfig struct {
	HTTPPort           string
	DatabaseURL        string
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Environment        string
	RequestTimeout     time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	DocsCacheTTL       time.Duration
	ProviderURL        string
	ProviderAPIKey     string
	ProviderModel      string
	ProviderTimeout    time.Duration
}

func (c ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

func LoadServerConfig() (ServerConfig, error) {
	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return ServerConfig{}, err
	}

	accessSecret, err := mustEnv("ACCESS_TOKEN_SECRET")
	if err != nil {
		return ServerConfig{}, err
	}

	refreshSecret, err := mustEnv("REFRESH_TOKEN_SECRET")
	if err != nil {
		return ServerConfig{}, err
	}

	if err := validateTokenSecrets(accessSecret, refreshSecret); err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		HTTPPort:           getEnv("PORT", constants.DefaultHTTPPort),
		DatabaseURL:        databaseURL,
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenTTL:     getDurationEnv("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),
		RefreshTokenTTL:    getDurationEnv("REFRESH_TOKEN_TTL", constants.DefaultRefreshTokenTTL),
		Environment:        getEnv("ENVIRONMENT", "development"),
		RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getIntEnv("REDIS_DB", 0),
		DocsCacheTTL:       getDurationEnv("DOCS_CACHE_TTL", constants.DefaultDocsCacheTTL),
		ProviderURL:        getEnv("PROVIDER_URL", ""),
		ProviderAPIKey:     getEnv("PROVIDER_API_KEY", ""),
		ProviderModel:      getEnv("PROVIDER_MODEL", "gpt-4o-mini"),
		ProviderTimeout:    getDurationEnv("PROVIDER_TIMEOUT", constants.DefaultProviderTimeout),
	}, nil
}

type ClientConfig struct {
	ServerURL string
	TokenPath string
	Timeout   time.Duration
}

func LoadClientConfig() ClientConfig {
	tokenPath := getEnv("DOCCTL_TOKEN_FILE", "")
	if tokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		tokenPath = filepath.Join(home, ".docctl", "token.json")
	}

	return ClientConfig{
		ServerURL: getEnv("DOCCTL_SERVER_URL", "http://localhost:8080"),
		TokenPath: tokenPath,
		Timeout:   getDurationEnv("DOCCTL_TIMEOUT", constants.DefaultRequestTimeout),
	}
}

func validateTokenSecrets(access, refresh string) error {
	if len(access) < constants.TokenSecretMinLen {
		return fmt.Errorf("%w: ACCESS_TOKEN_SECRET has %d bytes", commonerrors.ErrInvalidTokenSecret, len(access))
	}
	if len(refresh) < constants.TokenSecretMinLen {
		return fmt.Errorf("%w: REFRESH_TOKEN_SECRET has %d bytes", commonerrors.ErrInvalidTokenSecret, len(refresh))
	}
	if access == refresh {
		return commonerrors.ErrSameTokenSecrets
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
