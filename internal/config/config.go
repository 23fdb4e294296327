// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// defaultWebhookSalt is the development fallback for WEBHOOK_TOKEN_SALT.
// It must never be used in production.
const defaultWebhookSalt = "CAFEDEAD"

// GitLabConfig holds connection settings for the upstream GitLab instance.
type GitLabConfig struct {
	BaseURL *url.URL // GitLab API base (e.g., https://gitlab.example.com/api/v4/)
	Token   string   // admin-scoped private token
	Domain  string   // hostname whose addresses are allowed to deliver webhooks (optional)
}

// BackendConfig holds settings for the downstream service that receives
// forwarded push events.
type BackendConfig struct {
	URL        *url.URL // push event endpoint
	AuthHeader string   // value sent as Authorization on forwarded events (optional)
}

// Config holds the configuration for the HTTP server and the GitLab bridge.
type Config struct {
	GitLab  GitLabConfig
	Backend BackendConfig

	PublicBaseURL string // externally reachable base for webhook callbacks (no trailing slash)
	WebhookSalt   string // salt mixed into webhook tokens

	// AllowedHookIPs is the resolved address allowlist for /hooks.
	// nil disables the IP check; resolved from GITLAB_DOMAIN at load time.
	AllowedHookIPs []netip.Addr

	DBPath     string // path to the SQLite mapping database
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// Rate limiting for the webhook endpoint
	RateLimitRPS   float64 // sustained requests per second (default 50)
	RateLimitBurst int     // burst capacity (default 100)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		PublicBaseURL: strings.TrimRight(os.Getenv("MIDDLEWARE_BASE_URL"), "/"),
		WebhookSalt:   os.Getenv("WEBHOOK_TOKEN_SALT"),
		DBPath:        os.Getenv("DB_PATH"),
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Env:           os.Getenv("ENV"),
	}
	cfg.GitLab.Token = os.Getenv("GITLAB_AUTH_TOKEN")
	cfg.GitLab.Domain = os.Getenv("GITLAB_DOMAIN")
	cfg.Backend.AuthHeader = os.Getenv("BACKEND_AUTH_HEADER")

	var err error
	cfg.GitLab.BaseURL, err = parseURLEnv("GITLAB_BASE_URL", true)
	if err != nil {
		return nil, err
	}
	cfg.Backend.URL, err = parseURLEnv("BACKEND_URL", true)
	if err != nil {
		return nil, err
	}

	if cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("MIDDLEWARE_BASE_URL must be set")
	}
	if _, err := url.Parse(cfg.PublicBaseURL); err != nil {
		return nil, fmt.Errorf("MIDDLEWARE_BASE_URL: %w", err)
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	// Webhook delivery allowlist. The domain is resolved once at startup;
	// every resolved address is permitted to call /hooks. Empty resolution
	// leaves the allowlist disabled (nil); production mode refuses to start
	// without one.
	if cfg.GitLab.Domain != "" {
		addrs, warns := resolveAllowlist(cfg.GitLab.Domain)
		cfg.AllowedHookIPs = addrs
		cfg.Warnings = append(cfg.Warnings, warns...)
		if len(addrs) == 0 {
			cfg.Warnings = append(cfg.Warnings, "GITLAB_DOMAIN resolved to no addresses — webhook IP allowlist is disabled")
		}
	} else {
		cfg.Warnings = append(cfg.Warnings, "GITLAB_DOMAIN not set — webhook IP allowlist is disabled")
	}

	// Defaults
	if cfg.WebhookSalt == "" {
		cfg.WebhookSalt = defaultWebhookSalt
		cfg.Warnings = append(cfg.Warnings, "WEBHOOK_TOKEN_SALT not set — using insecure default. Set WEBHOOK_TOKEN_SALT in production!")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "classlab.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 50
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 100
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.GitLab.Token == "" {
			return nil, fmt.Errorf("GITLAB_AUTH_TOKEN must be set in production (ENV=production)")
		}
		if cfg.WebhookSalt == defaultWebhookSalt {
			return nil, fmt.Errorf("WEBHOOK_TOKEN_SALT must be set in production (ENV=production)")
		}
		if len(cfg.AllowedHookIPs) == 0 {
			return nil, fmt.Errorf("GITLAB_DOMAIN must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

// parseURLEnv reads an environment variable and parses it as an absolute
// http(s) URL.
func parseURLEnv(key string, required bool) (*url.URL, error) {
	v := os.Getenv(key)
	if v == "" {
		if required {
			return nil, fmt.Errorf("%s must be set", key)
		}
		return nil, nil
	}
	u, err := url.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: unsupported scheme %q", key, u.Scheme)
	}
	return u, nil
}

// resolveAllowlist resolves a comma-separated list of hostnames or literal
// addresses into the set of IPs allowed to deliver webhooks. An entry that
// fails to resolve is skipped with a warning rather than failing startup;
// nothing resolved at all leaves the allowlist nil, meaning disabled.
func resolveAllowlist(domains string) (addrs []netip.Addr, warnings []string) {
	for _, entry := range strings.Split(domains, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addrs = append(addrs, addr)
			continue
		}
		hosts, err := net.LookupHost(entry)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("GITLAB_DOMAIN: cannot resolve %s: %v", entry, err))
			continue
		}
		for _, h := range hosts {
			if addr, err := netip.ParseAddr(h); err == nil {
				addrs = append(addrs, addr)
			}
		}
	}
	return addrs, warnings
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
