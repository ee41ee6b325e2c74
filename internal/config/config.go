package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string // optional; enables the invite log
	RedisURL            string
	AdminAPIBaseURL     string // admin/projects/... and fhir/R4/... resolve against it
	AdminAPIToken       string // bearer token sent to the admin API
	DefaultProjectID    string // used when the session carries no project
	ProjectCacheTTL     time.Duration
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
}

const defaultProjectCacheTTL = 5 * time.Minute

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	ttl := viper.GetDuration("PROJECT_CACHE_TTL")
	if ttl <= 0 {
		ttl = defaultProjectCacheTTL
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         viper.GetString("DATABASE_URL"),
		RedisURL:            redisURL(viper.GetString("REDIS_URL")),
		AdminAPIBaseURL:     strings.TrimSpace(viper.GetString("ADMIN_API_BASE_URL")),
		AdminAPIToken:       viper.GetString("ADMIN_API_TOKEN"),
		DefaultProjectID:    viper.GetString("DEFAULT_PROJECT_ID"),
		ProjectCacheTTL:     ttl,
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
	}, nil
}

func redisURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "redis://localhost:6379/0"
	}
	return s
}
