package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Relational store (identity, departments, notifications and, in sql
	// mode, tasks)
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Task store backend: "sql" or "mongo"
	TaskStore string
	MongoURI  string
	MongoDB   string

	// Redis is optional; the overdue sweep falls back to an in-process lock
	RedisAddr     string
	RedisPassword string

	JWTSecret   string
	TokenTTL    time.Duration
	GinMode     string
	CORSOrigins []string

	RateLimitPerMin int
	RateLimitBurst  int

	OverdueInterval time.Duration
	OpenAIAPIKey    string

	// First admin account, created at startup when the email is unused
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

var defaults = map[string]any{
	"PORT":               "8080",
	"DB_DRIVER":          "mysql",
	"DB_HOST":            "localhost",
	"DB_PORT":            "3306",
	"DB_USER":            "emsuser",
	"DB_PASSWORD":        "emspassword",
	"DB_NAME":            "ems",
	"TASK_STORE":         "sql",
	"MONGO_URI":          "mongodb://localhost:27017",
	"MONGO_DB":           "ems",
	"REDIS_ADDR":         "",
	"REDIS_PASSWORD":     "",
	"JWT_SECRET":         "default-secret-key-change-me",
	"TOKEN_TTL":          "24h",
	"GIN_MODE":           "debug",
	"CORS_ORIGINS":       "http://localhost:5173,http://localhost:3000",
	"RATE_LIMIT_PER_MIN": 300,
	"RATE_LIMIT_BURST":   50,
	"OVERDUE_INTERVAL":   "1h",
	"OPENAI_API_KEY":     "",
	"ADMIN_NAME":         "Administrator",
	"ADMIN_EMAIL":        "",
	"ADMIN_PASSWORD":     "",
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:            v.GetString("PORT"),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		TaskStore:       strings.ToLower(v.GetString("TASK_STORE")),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDB:         v.GetString("MONGO_DB"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		TokenTTL:        v.GetDuration("TOKEN_TTL"),
		GinMode:         v.GetString("GIN_MODE"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		RateLimitPerMin: v.GetInt("RATE_LIMIT_PER_MIN"),
		RateLimitBurst:  v.GetInt("RATE_LIMIT_BURST"),
		OverdueInterval: v.GetDuration("OVERDUE_INTERVAL"),
		OpenAIAPIKey:    v.GetString("OPENAI_API_KEY"),
		AdminName:       v.GetString("ADMIN_NAME"),
		AdminEmail:      v.GetString("ADMIN_EMAIL"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
