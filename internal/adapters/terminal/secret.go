package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Adapter handles secure secret input from the terminal.
type Adapter struct {
	stdin  io.Reader
	stderr io.Writer
	envVar string
}

// NewAdapter creates a new terminal adapter. When envVar is non-empty
// and set in the environment, its value is used instead of prompting
// (useful for CI).
func NewAdapter(stdin io.Reader, stderr io.Writer, envVar string) *Adapter {
	return &Adapter{
		stdin:  stdin,
		stderr: stderr,
		envVar: envVar,
	}
}

// ReadSecret reads a secret from the terminal with echo disabled.
func (a *Adapter) ReadSecret(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if a.envVar != "" {
		if envSecret := os.Getenv(a.envVar); envSecret != "" {
			return envSecret, nil
		}
	}

	if !a.IsInteractive() {
		return "", errors.New("cannot read secret: non-interactive terminal")
	}

	fmt.Fprint(a.stderr, prompt)

	if file, ok := a.stdin.(*os.File); ok {
		secret, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return string(secret), nil
	}

	return "", errors.New("cannot read secret from non-terminal input")
}

// IsInteractive returns true if the terminal is interactive.
func (a *Adapter) IsInteractive() bool {
	if file, ok := a.stdin.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
