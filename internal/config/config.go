package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to an env var of the same name.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Local API
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"` // empty allows any origin
	RateLimitPorMinuto int      `mapstructure:"RATE_LIMIT_POR_MINUTO"`

	// Agente PDV (local agent process)
	AgenteURL     string        `mapstructure:"AGENTE_URL"`
	AgenteTimeout time.Duration `mapstructure:"AGENTE_TIMEOUT"`

	// Local durable state (SQLite file)
	DatabasePath string `mapstructure:"DATABASE_PATH"`

	// Redis is optional: when empty the product cache lives in-process
	RedisURL        string        `mapstructure:"REDIS_URL"`
	ProdutoCacheTTL time.Duration `mapstructure:"PRODUTO_CACHE_TTL"`

	// Terminal
	TerminalNumero int `mapstructure:"TERMINAL_NUMERO"`

	// Background jobs
	MonitorIntervalo  time.Duration `mapstructure:"MONITOR_INTERVALO"`
	AutoSyncIntervalo time.Duration `mapstructure:"AUTO_SYNC_INTERVALO"` // 0 disables
	WorkerPoolSize    int           `mapstructure:"WORKER_POOL_SIZE"`

	// Closing report
	RelatorioPath  string `mapstructure:"RELATORIO_PATH"`
	RelatorioEmail string `mapstructure:"RELATORIO_EMAIL"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", 5100)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("RATE_LIMIT_POR_MINUTO", 600)
	v.SetDefault("AGENTE_URL", "http://localhost:5000")
	v.SetDefault("AGENTE_TIMEOUT", 30*time.Second)
	v.SetDefault("DATABASE_PATH", "solispdv.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("PRODUTO_CACHE_TTL", 10*time.Minute)
	v.SetDefault("TERMINAL_NUMERO", 1)
	v.SetDefault("MONITOR_INTERVALO", 5*time.Second)
	v.SetDefault("AUTO_SYNC_INTERVALO", 5*time.Minute)
	v.SetDefault("WORKER_POOL_SIZE", 2)
	v.SetDefault("RELATORIO_PATH", "relatorios")
	v.SetDefault("RELATORIO_EMAIL", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")

	// Optional .env file for local development — does not fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
