package config

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Port                 string
	Env                  string // either prod or dev, dev enables console logging
	DatabaseURL          string
	DatabaseMaxOpenConns int
	SessionKey           []byte
	JwtSigningKey        []byte
	AdminEmail           string // credentials accepted by POST /auth/token
	AdminPasswordHash    string // bcrypt hash of the admin password
	SentryDSN            string
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	v.SetDefault("PORT", "3001")
	v.SetDefault("ENV", "dev")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 20)

	env := strings.ToLower(v.GetString("ENV"))
	if env != "dev" && env != "prod" {
		return Config{}, fmt.Errorf("ENV must be one of dev, prod: got %q", env)
	}
	databaseURL := v.GetString("DATABASE_URL")
	if databaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL cannot be empty")
	}
	maxOpenConns := v.GetInt("DATABASE_MAX_OPEN_CONNS")
	if maxOpenConns < 1 {
		return Config{}, fmt.Errorf("DATABASE_MAX_OPEN_CONNS must be positive")
	}
	sessionKeyString := v.GetString("SESSION_KEY")
	if sessionKeyString == "" {
		return Config{}, fmt.Errorf("SESSION_KEY cannot be empty")
	}
	sessionKeyBytes, err := base64.StdEncoding.DecodeString(sessionKeyString)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to decode session key to bytes")
	}
	jwtSigningKey := v.GetString("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		return Config{}, fmt.Errorf("JWT_SIGNING_KEY cannot be empty")
	}
	jwtSigningKeyBytes, err := base64.StdEncoding.DecodeString(jwtSigningKey)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to decode jwt signing key to bytes")
	}
	adminEmail := v.GetString("ADMIN_EMAIL")
	adminPasswordHash := v.GetString("ADMIN_PASSWORD_HASH")
	if (adminEmail == "") != (adminPasswordHash == "") {
		return Config{}, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD_HASH must be set together")
	}

	return Config{
		Port:                 v.GetString("PORT"),
		Env:                  env,
		DatabaseURL:          databaseURL,
		DatabaseMaxOpenConns: maxOpenConns,
		SessionKey:           sessionKeyBytes,
		JwtSigningKey:        jwtSigningKeyBytes,
		AdminEmail:           adminEmail,
		AdminPasswordHash:    adminPasswordHash,
		SentryDSN:            v.GetString("SENTRY_DSN"),
	}, nil
}
