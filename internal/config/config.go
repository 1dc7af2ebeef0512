package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for amounts
// and durations.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	BotToken       string // bot token used against the Telegram API
	ChannelID      string // channel the user must be a member of before delivery
	ScriptPrice    int64  // price in coins charged per gated delivery
	StagingDir     string   // scratch directory for staged files (empty = os.TempDir)
	TelegramAPIURL string   // base URL of the Telegram API (overridable for tests)
	APITimeoutSec  int      // per-call timeout for external Telegram calls in seconds
	AdminIDs       []string // caller ids seeded into the admin set at startup (optional)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),                               // environment (dev/test/prod)
		Port:           must("APP_PORT"),                              // port to bind the HTTP server
		DBUser:         must("DB_USER"),                               // database user
		DBPass:         os.Getenv("DB_PASS"),                          // database password (empty allowed)
		DBHost:         must("DB_HOST"),                               // database host
		DBPort:         must("DB_PORT"),                               // database port
		DBName:         must("DB_NAME"),                               // database name
		BotToken:       must("BOT_TOKEN"),                             // Telegram bot token
		ChannelID:      must("CHANNEL_ID"),                            // gating channel identifier (e.g. "@mychannel")
		ScriptPrice:    int64(mustInt("SCRIPT_PRICE")),                // coins debited per delivery
		StagingDir:     os.Getenv("STAGING_DIR"),                      // optional scratch directory
		TelegramAPIURL: getenv("TELEGRAM_API_URL", defaultAPIURL),     // Telegram API base
		APITimeoutSec:  atoiDefault(os.Getenv("API_TIMEOUT_SEC"), 15), // external call timeout
		AdminIDs:       splitList(os.Getenv("ADMIN_IDS")),            // comma-separated admin ids
	}
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

const defaultAPIURL = "https://api.telegram.org"

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

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
