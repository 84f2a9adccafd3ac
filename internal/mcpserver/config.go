package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// AllowHTTP lets tools fetch http/https documents, both as input and as
	// targets of external references.
	AllowHTTP bool
	// AllowPrivateIPs disables the private address check on remote fetches.
	AllowPrivateIPs bool

	// Resolver limits.
	MaxCachedDocuments int
	MaxFileSize        int64

	// MaxInlineSize bounds the content argument in bytes.
	MaxInlineSize int64

	// NameOnlyVisit is the default for the name_only_visit argument.
	NameOnlyVisit bool
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from OASRESOLVE_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		AllowHTTP:          envBool("OASRESOLVE_ALLOW_HTTP", false),
		AllowPrivateIPs:    envBool("OASRESOLVE_ALLOW_PRIVATE_IPS", false),
		MaxCachedDocuments: envInt("OASRESOLVE_MAX_DOCUMENTS", 100),
		MaxFileSize:        int64(envInt("OASRESOLVE_MAX_FILE_SIZE", 10*1024*1024)),
		MaxInlineSize:      int64(envInt("OASRESOLVE_MAX_INLINE_SIZE", 10*1024*1024)),
		NameOnlyVisit:      envBool("OASRESOLVE_NAME_ONLY_VISIT", false),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}
