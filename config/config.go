// ABOUTME: Environment configuration for the Salesforce tool server
// ABOUTME: Loads credentials and server settings from .env files at the working directory and XDG config path
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/harperreed/sfmcp/query"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/joho/godotenv"
)

const (
	DefaultServerName = "salesforce-cloud"
	DefaultLogLevel   = "info"
)

var ErrMissing = errors.New("missing required configuration")

// Config holds everything needed to reach the org and run the server.
type Config struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	LoginURL     string
	APIVersion   string

	ServerName string
	LogLevel   log.Level
	NameMatch  query.MatchPolicy
}

// Dir returns the XDG directory holding the user-level .env file.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "sfmcp")
}

// EnvFiles lists the .env files Load reads, highest precedence first.
func EnvFiles() []string {
	return []string{".env", filepath.Join(Dir(), ".env")}
}

// Load reads the given .env files (EnvFiles when none are given) and then
// builds a Config from the environment. Variables already set in the process
// environment are never overwritten, so the real environment wins over any
// file and earlier files win over later ones. Missing files are skipped.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = EnvFiles()
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a variable lookup. Credentials are not
// checked here; call Validate before logging in.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		ClientID:     get("SF_CLIENT_ID", ""),
		ClientSecret: get("SF_CLIENT_SECRET", ""),
		Username:     get("SF_USERNAME", ""),
		Password:     getenv("SF_PASSWORD"),
		LoginURL:     get("SF_LOGIN_URL", salesforce.DefaultLoginURL),
		APIVersion:   get("SF_API_VERSION", salesforce.DefaultAPIVersion),
		ServerName:   get("MCP_SERVER_NAME", DefaultServerName),
	}

	level, err := log.ParseLevel(get("SFMCP_LOG_LEVEL", DefaultLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid SFMCP_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	switch policy := query.MatchPolicy(strings.ToLower(get("SFMCP_NAME_MATCH", string(query.MatchBoundary)))); policy {
	case query.MatchBoundary, query.MatchContains:
		cfg.NameMatch = policy
	default:
		return nil, fmt.Errorf("invalid SFMCP_NAME_MATCH %q: want %s or %s", policy, query.MatchBoundary, query.MatchContains)
	}

	return cfg, nil
}

// Missing lists the unset credential keys in a stable order.
func (c *Config) Missing() []string {
	var missing []string
	for _, kv := range []struct{ key, val string }{
		{"SF_CLIENT_ID", c.ClientID},
		{"SF_CLIENT_SECRET", c.ClientSecret},
		{"SF_USERNAME", c.Username},
		{"SF_PASSWORD", c.Password},
	} {
		if kv.val == "" {
			missing = append(missing, kv.key)
		}
	}
	return missing
}

// Validate reports every missing credential at once.
func (c *Config) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s (set them in the environment, ./.env or %s)",
			ErrMissing, strings.Join(missing, ", "), filepath.Join(Dir(), ".env"))
	}
	return nil
}

func (c *Config) REST() salesforce.RESTConfig {
	return salesforce.RESTConfig{
		LoginURL:     c.LoginURL,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		APIVersion:   c.APIVersion,
	}
}

func (c *Config) Credentials() salesforce.Credentials {
	return salesforce.Credentials{Username: c.Username, Password: c.Password}
}
