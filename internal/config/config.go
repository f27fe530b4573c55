package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	Environment    string
	HTTPAddr       string
	TelegramToken  string
	Location       *time.Location
	PlannerDays    int
	Consultation   time.Duration
	DBMaxConns     int32
	DBMinConns     int32
	AutoMigrate    bool
	CORSOrigins    []string
	MetricsEnabled bool
}

// Load читает конфигурацию из окружения, предварительно подгружая .env
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию из функции чтения переменных
func FromEnv(getenv func(string) string) (*Config, error) {
	r := reader{getenv: getenv}

	cfg := &Config{
		DBDSN:          getenv("DB_DSN"),
		Environment:    r.str("ENV", "development"),
		HTTPAddr:       r.str("HTTP_ADDR", ":8080"),
		TelegramToken:  getenv("TELEGRAM_TOKEN"),
		PlannerDays:    r.integer("PLANNER_DAYS", 10),
		Consultation:   time.Duration(r.integer("CONSULTATION_MINUTES", 30)) * time.Minute,
		DBMaxConns:     int32(r.integer("DB_MAX_CONNS", 20)),
		DBMinConns:     int32(r.integer("DB_MIN_CONNS", 2)),
		AutoMigrate:    r.boolean("AUTO_MIGRATE", true),
		CORSOrigins:    r.list("CORS_ORIGINS", []string{"*"}),
		MetricsEnabled: r.boolean("METRICS_ENABLED", true),
	}

	tz := r.str("TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("TIMEZONE: %v", err))
	}
	cfg.Location = loc

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		r.errs = append(r.errs, "DB_DSN is required but not set")
	}
	if cfg.PlannerDays <= 0 {
		r.errs = append(r.errs, "PLANNER_DAYS must be positive")
	}
	if cfg.Consultation <= 0 {
		r.errs = append(r.errs, "CONSULTATION_MINUTES must be positive")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		r.errs = append(r.errs, "DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}

	if len(r.errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(r.errs, "; "))
	}

	return cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// BotEnabled бот запускается только при заданном токене
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

type reader struct {
	getenv func(string) string
	errs   []string
}

func (r *reader) str(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *reader) integer(key string, def int) int {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (r *reader) boolean(key string, def bool) bool {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func (r *reader) list(key string, def []string) []string {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
