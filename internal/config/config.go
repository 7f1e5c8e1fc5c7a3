package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  The working-day window bounds the gap
// computation on the day view; times are minutes from midnight.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	WorkDayStartMin int    // start of the trainer's working day, minutes from midnight
	WorkDayEndMin   int    // end of the trainer's working day, minutes from midnight
	DefaultDuration int    // default session length in minutes for new bookings
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.  The work
// window and default duration fall back to sensible defaults so a bare
// environment still produces a usable schedule.
func Load() Config {
	c := Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		WorkDayStartMin: intOr("WORK_DAY_START_MIN", 360),  // 06:00
		WorkDayEndMin:   intOr("WORK_DAY_END_MIN", 1320),   // 22:00
		DefaultDuration: intOr("DEFAULT_SESSION_MIN", 60),
	}
	if c.WorkDayEndMin <= c.WorkDayStartMin {
		log.Fatalf("work day window is empty: start=%d end=%d", c.WorkDayStartMin, c.WorkDayEndMin)
	}
	return c
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr reads an optional integer environment variable, falling back to
// def when unset.  A malformed value is fatal rather than silently
// ignored.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
