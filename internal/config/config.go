package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses the connection lifetime duration
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The struct is built once at startup and passed
// explicitly to constructors; nothing mutates it afterwards.
type Config struct {
	Env         string        // application environment (e.g. "dev", "prod")
	Port        string        // HTTP port to listen on
	DBUser      string        // database username
	DBPass      string        // database password (optional)
	DBHost      string        // database host address
	DBPort      string        // database port number
	DBName      string        // database name
	DBMaxOpen   int           // connection pool: max open connections
	DBMaxIdle   int           // connection pool: max idle connections
	DBConnTTL   time.Duration // connection pool: max connection lifetime
	JWTSecret   string        // symmetric key used to sign identity tokens
	JWTIssuer   string        // issuer claim stamped into and required of tokens
	JWTAudience string        // audience claim stamped into and required of tokens
	BcryptCost  int           // bcrypt cost for password hashing
	LogDir      string        // directory for the per-level log files
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:         must("APP_ENV"),         // environment (dev/test/prod)
		Port:        must("APP_PORT"),        // port to bind the HTTP server
		DBUser:      must("DB_USER"),         // database user
		DBPass:      os.Getenv("DB_PASS"),    // database password (empty allowed)
		DBHost:      must("DB_HOST"),         // database host
		DBPort:      must("DB_PORT"),         // database port
		DBName:      must("DB_NAME"),         // database name
		DBMaxOpen:   intOr("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdle:   intOr("DB_MAX_IDLE_CONNS", 25),
		DBConnTTL:   durOr("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		JWTSecret:   must("JWT_SECRET"),      // signing key for identity tokens
		JWTIssuer:   must("JWT_ISSUER"),      // token issuer string
		JWTAudience: must("JWT_AUDIENCE"),    // token audience string
		BcryptCost:  mustInt("BCRYPT_COST"),  // bcrypt cost factor
		LogDir:      must("LOG_DIR"),         // log file directory
	}
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intOr reads an optional integer variable, falling back to def when the
// variable is unset or unparseable.
func intOr(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// durOr reads an optional duration variable (e.g. "30m"), falling back to
// def when the variable is unset or unparseable.
func durOr(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return def
}
