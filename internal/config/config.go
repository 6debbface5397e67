package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBAdapter string
	JwtSecret string

	MongoURI string
	MongoDB  string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getduration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func New() (*Config, error) {
	// .env file is optional, continue with environment variables
	_ = godotenv.Load()

	c := &Config{
		Port:      getenv("PORT", "8080"),
		DBAdapter: getenv("DB_ADAPTER", "mongo"),
		JwtSecret: getenv("JWT_SECRET", "change-me"),
		MongoURI:  getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:   getenv("MONGODB_DB", "openchallenge"),
	}

	var err error
	if c.AccessTokenTTL, err = getduration("ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if c.RefreshTokenTTL, err = getduration("REFRESH_TOKEN_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}

	if c.DBAdapter == "mongo" && c.MongoURI == "" {
		return nil, errors.New("MONGODB_URI must be set when DB_ADAPTER=mongo")
	}

	env := strings.ToLower(getenv("ENV", getenv("FLASK_ENV", "")))
	if env == "production" || env == "prod" {
		if c.JwtSecret == "" || c.JwtSecret == "change-me" {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
	}

	if _, err := strconv.Atoi(c.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT: %s", c.Port)
	}

	return c, nil
}
