// ABOUTME: Tests for environment configuration loading
// ABOUTME: Covers defaults, .env precedence and credential validation
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/harperreed/sfmcp/query"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(env map[string]string) func(string) string {
	return func(k string) string { return env[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookup(nil))
	require.NoError(t, err)

	assert.Equal(t, salesforce.DefaultLoginURL, cfg.LoginURL)
	assert.Equal(t, salesforce.DefaultAPIVersion, cfg.APIVersion)
	assert.Equal(t, DefaultServerName, cfg.ServerName)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
	assert.Equal(t, query.MatchBoundary, cfg.NameMatch)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"SF_CLIENT_ID":     "cid",
		"SF_CLIENT_SECRET": "secret",
		"SF_USERNAME":      " user@example.com ",
		"SF_PASSWORD":      "pw token",
		"SF_LOGIN_URL":     "https://test.salesforce.com",
		"SF_API_VERSION":   "v61.0",
		"MCP_SERVER_NAME":  "sandbox",
		"SFMCP_LOG_LEVEL":  "debug",
		"SFMCP_NAME_MATCH": "Contains",
	}))
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", cfg.Username)
	assert.Equal(t, "pw token", cfg.Password)
	assert.Equal(t, "https://test.salesforce.com", cfg.REST().LoginURL)
	assert.Equal(t, "v61.0", cfg.REST().APIVersion)
	assert.Equal(t, "sandbox", cfg.ServerName)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
	assert.Equal(t, query.MatchContains, cfg.NameMatch)
	assert.Equal(t, salesforce.Credentials{Username: "user@example.com", Password: "pw token"}, cfg.Credentials())
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	_, err := FromEnv(lookup(map[string]string{"SFMCP_NAME_MATCH": "fuzzy"}))
	assert.ErrorContains(t, err, "SFMCP_NAME_MATCH")

	_, err = FromEnv(lookup(map[string]string{"SFMCP_LOG_LEVEL": "loud"}))
	assert.ErrorContains(t, err, "SFMCP_LOG_LEVEL")
}

func TestValidateListsEveryMissingKey(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{"SF_USERNAME": "user@example.com"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"SF_CLIENT_ID", "SF_CLIENT_SECRET", "SF_PASSWORD"}, cfg.Missing())
	err = cfg.Validate()
	require.ErrorIs(t, err, ErrMissing)
	assert.Contains(t, err.Error(), "SF_CLIENT_ID, SF_CLIENT_SECRET, SF_PASSWORD")
}

func TestLoadEnvFilePrecedence(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(first, []byte("SF_CLIENT_ID=from-first\n"), 0600))
	require.NoError(t, os.WriteFile(second, []byte("SF_CLIENT_ID=from-second\nSF_CLIENT_SECRET=from-second\n"), 0600))

	// t.Setenv registers cleanup for variables godotenv sets during the test
	t.Setenv("SF_CLIENT_ID", "")
	t.Setenv("SF_CLIENT_SECRET", "")
	t.Setenv("SF_USERNAME", "from-env")
	require.NoError(t, os.Unsetenv("SF_CLIENT_ID"))
	require.NoError(t, os.Unsetenv("SF_CLIENT_SECRET"))

	cfg, err := Load(first, filepath.Join(dir, "missing.env"), second)
	require.NoError(t, err)

	assert.Equal(t, "from-first", cfg.ClientID)
	assert.Equal(t, "from-second", cfg.ClientSecret)
	assert.Equal(t, "from-env", cfg.Username)
}
