package main

import (
	"flag"
	"os"
	"time"

	"github.com/Renal37/fuel-orders/internal/backend"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	endpoint         string
	apiBase          string
	apiPathStyle     string
	dsn              string
	logLevel         string
	env              string
	cookieSecure     bool
	upstreamTimeout  time.Duration
	auditWorkers     int
	auditQueueLength int
}

// NewConfig reads flags from args. Environment variables, including those from
// a .env file, take precedence over flags.
func NewConfig(args []string) (Config, error) {
	_ = godotenv.Load(".env")

	var (
		endpoint     string
		apiBase      string
		apiPathStyle string
		dsn          string
	)

	flags := flag.NewFlagSet("fuelconsole", flag.ContinueOnError)
	flags.StringVar(&endpoint, "a", "localhost:8090", "address and port to run server")
	flags.StringVar(&apiBase, "b", backend.DefaultBaseURL, "base url of the fuel order API")
	flags.StringVar(&apiPathStyle, "p", string(backend.PathStyleSingular), "path style of the fuel order API: singular or plural")
	flags.StringVar(&dsn, "d", "", "data source name of the audit database, empty disables the audit trail")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	env := cast.ToString(getOrReturnDefault("ENV", "production"))

	return Config{
		endpoint:         cast.ToString(getOrReturnDefault("RUN_ADDRESS", endpoint)),
		apiBase:          cast.ToString(getOrReturnDefault("FUEL_API_BASE", apiBase)),
		apiPathStyle:     cast.ToString(getOrReturnDefault("FUEL_API_PATH_STYLE", apiPathStyle)),
		dsn:              cast.ToString(getOrReturnDefault("DATABASE_URI", dsn)),
		logLevel:         cast.ToString(getOrReturnDefault("LOG_LEVEL", "error")),
		env:              env,
		cookieSecure:     cast.ToBool(getOrReturnDefault("COOKIE_SECURE", env == "production")),
		upstreamTimeout:  time.Duration(cast.ToInt(getOrReturnDefault("UPSTREAM_TIMEOUT_SECONDS", 10))) * time.Second,
		auditWorkers:     cast.ToInt(getOrReturnDefault("AUDIT_WORKERS", 2)),
		auditQueueLength: cast.ToInt(getOrReturnDefault("AUDIT_QUEUE_CAPACITY", 100)),
	}, nil
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
