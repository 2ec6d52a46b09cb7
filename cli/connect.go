// ABOUTME: Shared session setup for CLI commands
// ABOUTME: Builds the REST-backed client from config, prompting for a missing password on a terminal
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harperreed/sfmcp/config"
	"github.com/harperreed/sfmcp/salesforce"
	"golang.org/x/term"
)

// PasswordReader reads a secret without echo. Swapped in tests.
var PasswordReader = func(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// Connect logs in with cfg. When prompt is true and only the password is
// missing, it is read from the terminal instead of failing.
func Connect(ctx context.Context, cfg *config.Config, prompt bool) (*salesforce.Client, error) {
	if prompt && cfg.Password == "" && len(cfg.Missing()) == 1 {
		pw, err := PasswordReader(fmt.Sprintf("Password for %s: ", cfg.Username))
		if err == nil {
			cfg.Password = strings.TrimRight(pw, "\r\n")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := salesforce.NewClient(salesforce.NewRESTBackend(cfg.REST()), cfg.Credentials())
	if err := client.Initialize(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// writeOutput sends data to path, or to out when path is empty.
func writeOutput(out io.Writer, path, data string) error {
	if path != "" {
		return os.WriteFile(path, []byte(data), 0644)
	}
	_, err := fmt.Fprintln(out, data)
	return err
}
