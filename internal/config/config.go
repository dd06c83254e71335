package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret         string
	SessionTTLDays    int
	SessionCookieName string

	LoginAttemptLimit  int
	LoginAttemptWindow time.Duration

	SuperadminEmail    string
	SuperadminPassword string
	SuperadminName     string

	OTLPEndpoint string
}

func Load() Config {
	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:         getEnv("JWT_SECRET", "dev-only-secret"),
		SessionTTLDays:    getEnvInt("SESSION_TTL_DAYS", 30),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "session_token"),

		LoginAttemptLimit:  getEnvInt("LOGIN_ATTEMPT_LIMIT", 5),
		LoginAttemptWindow: time.Duration(getEnvInt("LOGIN_ATTEMPT_WINDOW_MINUTES", 15)) * time.Minute,

		SuperadminEmail:    getEnv("SUPERADMIN_EMAIL", ""),
		SuperadminPassword: getEnv("SUPERADMIN_PASSWORD", ""),
		SuperadminName:     getEnv("SUPERADMIN_NAME", "Superadmin"),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "newsdesk")
	pass := getEnv("DB_PASSWORD", "newsdesk")
	name := getEnv("DB_NAME", "newsdesk")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
