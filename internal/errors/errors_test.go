package errors

import (
	"errors"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(404, "GET", "/api/v2/device/123", "device not found")

	expectedMsg := "API 404 GET /api/v2/device/123: device not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	if !IsAPI(err) {
		t.Error("Expected APIError to be identified as an API error")
	}

	if !IsAPIStatus(err, 404) {
		t.Error("Expected APIError to report status 404")
	}

	if IsAPIStatus(err, 500) {
		t.Error("Did not expect APIError to report status 500")
	}
}

func TestAuthenticationError(t *testing.T) {
	cause := errors.New("invalid_client")
	err := NewAuthenticationError("https://api.tailscale.com", "token exchange rejected", cause)

	if !errors.Is(err, ErrAuthentication) {
		t.Error("Expected AuthenticationError to match ErrAuthentication")
	}

	if !errors.Is(err, cause) {
		t.Error("Expected AuthenticationError to wrap the underlying cause")
	}

	if !IsAuthentication(err) {
		t.Error("Expected IsAuthentication to report true")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("target", "host;rm", "dangerous-characters", "target contains dangerous character ';'")

	expectedMsg := "validation error in field 'target': target contains dangerous character ';'"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}

	if !IsValidation(err) {
		t.Error("Expected ValidationError to be identified as validation-related")
	}
}

func TestCLIExecutionError(t *testing.T) {
	err := NewCLIExecutionError("tailscale up", 1, "already running", nil)

	if !IsCLIExecution(err) {
		t.Error("Expected CLIExecutionError to be identified as CLI-related")
	}

	if err.TimedOut {
		t.Error("Did not expect a plain execution error to be marked as timed out")
	}
}

func TestCLITimeoutError(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	err := NewCLITimeoutError("tailscale ping", cause)

	if err.ExitCode != -1 {
		t.Errorf("Expected timeout sentinel exit code -1, got %d", err.ExitCode)
	}

	if !err.TimedOut {
		t.Error("Expected timeout error to be marked as timed out")
	}

	if !errors.Is(err, ErrCLIExecution) {
		t.Error("Expected timeout error to match ErrCLIExecution")
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("POST", "https://api.tailscale.com/api/v2/oauth/token", cause)

	if !IsNetwork(err) {
		t.Error("Expected NetworkError to be identified as network-related")
	}

	if !errors.Is(err, cause) {
		t.Error("Expected NetworkError to wrap the underlying cause")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"network error", NewNetworkError("GET", "/devices", errors.New("timeout")), true},
		{"rate limited", NewAPIError(429, "GET", "/devices", ""), true},
		{"bad gateway", NewAPIError(502, "GET", "/devices", ""), true},
		{"service unavailable", NewAPIError(503, "GET", "/devices", ""), true},
		{"gateway timeout", NewAPIError(504, "GET", "/devices", ""), true},
		{"not found", NewAPIError(404, "GET", "/devices", ""), false},
		{"validation error", NewValidationError("routes", "x", "cidr", "bad"), false},
		{"authentication error", NewAuthenticationError("", "rejected", nil), false},
		{"cli error", NewCLIExecutionError("tailscale status", 1, "", nil), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsRetryable(test.err); got != test.retryable {
				t.Errorf("IsRetryable(%v) = %v, want %v", test.err, got, test.retryable)
			}
		})
	}
}
