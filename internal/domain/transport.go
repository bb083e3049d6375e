package domain

import (
	"context"
	"encoding/json"
)

// TransportMode selects how the unified client dispatches each call.
// Fixed for the client's lifetime once constructed.
type TransportMode string

const (
	ModeCLI  TransportMode = "cli"
	ModeAPI  TransportMode = "api"
	ModeAuto TransportMode = "auto"
)

// CommandResult captures one local tool invocation.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner executes the local tool with a literal argument
// vector. Implementations never pass arguments through a shell.
type CommandRunner interface {
	Execute(ctx context.Context, args ...string) (CommandResult, error)
	Available() bool
}

// APIRequester issues authenticated requests against the control
// plane. Implementations never retry internally; structured errors are
// surfaced so the caller can apply policy.
type APIRequester interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}
