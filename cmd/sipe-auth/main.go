package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sipe-hr/sipe-auth/pkg/app"
	"github.com/sipe-hr/sipe-auth/pkg/client"
	"github.com/sipe-hr/sipe-auth/pkg/login"
	"github.com/sipe-hr/sipe-auth/pkg/login/authapi"
	"github.com/sipe-hr/sipe-auth/pkg/notification"
	"github.com/sipe-hr/sipe-auth/pkg/ratelimit"
	"github.com/sipe-hr/sipe-auth/pkg/revocation"
	"github.com/sipe-hr/sipe-auth/pkg/token"
)

type DbConfig struct {
	Host     string `env:"SIPE_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"SIPE_PG_PORT" env-default:"5432"`
	Database string `env:"SIPE_PG_DATABASE" env-default:"sipe_db"`
	User     string `env:"SIPE_PG_USER" env-default:"sipe"`
	Password string `env:"SIPE_PG_PASSWORD" env-default:"pwd"`
}

func (d DbConfig) toDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type JwtConfig struct {
	Secret             string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer             string `env:"JWT_ISSUER" env-default:"SIPE"`
	AccessTokenExpiry  string `env:"ACCESS_TOKEN_EXPIRY" env-default:"15m"`
	RefreshTokenExpiry string `env:"REFRESH_TOKEN_EXPIRY" env-default:"168h"`
	CookieHttpOnly     bool   `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure       bool   `env:"COOKIE_SECURE" env-default:"true"`
}

type LoginConfig struct {
	BcryptCost int `env:"BCRYPT_COST" env-default:"10"`
}

type EmailConfig struct {
	Host     string `env:"EMAIL_HOST" env-default:""`
	Port     uint16 `env:"EMAIL_PORT" env-default:"587"`
	Username string `env:"EMAIL_USERNAME" env-default:""`
	Password string `env:"EMAIL_PASSWORD" env-default:""`
	From     string `env:"EMAIL_FROM" env-default:"noreply@sipe.local"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"true"`
}

type Config struct {
	AppConfig   app.AppConfig
	DbConfig    DbConfig
	RedisConfig RedisConfig
	JwtConfig   JwtConfig
	LoginConfig LoginConfig
	EmailConfig EmailConfig
}

func parseExpiry(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid token expiry, using default", "value", value, "default", fallback)
		return fallback
	}
	return d
}

func newNotifier(config EmailConfig) notification.Notifier {
	if config.Host == "" {
		slog.Info("No SMTP host configured, lockout notices disabled")
		return notification.NoopNotifier{}
	}
	notifier, err := notification.NewEmailNotifier(notification.SMTPConfig{
		Host:     config.Host,
		Port:     int(config.Port),
		TLS:      config.TLS,
		Username: config.Username,
		Password: config.Password,
		From:     config.From,
	})
	if err != nil {
		slog.Error("Failed to create email notifier, lockout notices disabled", "err", err)
		return notification.NoopNotifier{}
	}
	return notifier
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		slog.Info("Configuration loaded from .env file")
	}

	config := Config{}
	cleanenv.ReadEnv(&config)

	pool, err := pgxpool.New(context.Background(), config.DbConfig.toDatabaseURL())
	if err != nil {
		slog.Error("Failed creating dbpool",
			"db", config.DbConfig.Database, "host", config.DbConfig.Host, "port", config.DbConfig.Port)
		os.Exit(-1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.RedisConfig.Addr,
		Password: config.RedisConfig.Password,
		DB:       config.RedisConfig.DB,
	})
	defer redisClient.Close()

	registry := revocation.NewRegistry(
		revocation.NewPostgresStore(pool),
		revocation.NewRedisCache(redisClient),
	)

	// Expired revocations and sessions are dead weight once the tokens
	// they cover can no longer verify
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := registry.CleanupExpired(context.Background()); err != nil {
				slog.Warn("Revocation cleanup failed", "err", err)
			}
		}
	}()

	generator := &token.JwtTokenGenerator{
		Secret: config.JwtConfig.Secret,
		Issuer: config.JwtConfig.Issuer,
	}
	tokens := token.NewService(generator,
		token.WithAccessTokenExpiry(parseExpiry(config.JwtConfig.AccessTokenExpiry, token.DefaultAccessTokenExpiry)),
		token.WithRefreshTokenExpiry(parseExpiry(config.JwtConfig.RefreshTokenExpiry, token.DefaultRefreshTokenExpiry)),
	)

	credentialRepo := login.NewPostgresCredentialRepository(pool)
	hasher := login.NewBcryptHasher(config.LoginConfig.BcryptCost)
	governor := login.NewAttemptGovernor(credentialRepo, newNotifier(config.EmailConfig))
	authService := login.NewAuthService(credentialRepo, hasher, tokens, registry, governor)

	cookies := token.NewCookieSetter(config.JwtConfig.CookieHttpOnly, config.JwtConfig.CookieSecure)
	authMiddleware := client.NewMiddleware(authService, cookies)
	handle := authapi.NewHandle(
		authapi.WithAuthService(authService),
		authapi.WithCookieSetter(cookies),
	)

	server := app.New(app.WithConfig(config.AppConfig))
	server.R.Use(authMiddleware.Verifier)
	server.R.Route("/auth", func(r chi.Router) {
		r.Use(ratelimit.PerIP(ratelimit.DefaultConfig()))
		handle.Routes(r)
	})

	server.Run()
}
