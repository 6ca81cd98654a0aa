package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database settings are optional: when DBHost is
// empty the server runs on the in-memory store, which is how the test and
// demo environments operate.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address; empty selects the in-memory store
	DBPort        string // database port number
	DBName        string // database name
	MigrationsDir string // directory holding SQL migration files
	JWTSecret     string // secret used to verify JWTs
	AMQPURL       string // RabbitMQ connection URL; empty disables event publishing
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:           must("APP_ENV"),  // environment (dev/test/prod)
		Port:          must("APP_PORT"), // port to bind the HTTP server
		DBHost:        os.Getenv("DB_HOST"),
		MigrationsDir: getenv("MIGRATIONS_DIR", "migrations"),
		JWTSecret:     must("JWT_SECRET"), // secret used for verifying JWTs
		AMQPURL:       os.Getenv("AMQP_URL"),
	}
	if cfg.DBHost != "" {
		cfg.DBUser = must("DB_USER")      // database user
		cfg.DBPass = os.Getenv("DB_PASS") // database password (empty allowed)
		cfg.DBPort = must("DB_PORT")      // database port
		cfg.DBName = must("DB_NAME")      // database name
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
