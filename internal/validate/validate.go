// Package validate provides input validation for every value that
// reaches a transport, ensuring caller-supplied strings cannot escape
// into command execution or malformed control-plane requests.
//
// Implements IP address, CIDR, hostname and generic string validation
// using strict stdlib parsing plus the go-playground/validator library
// for hostname grammar. All functions are pure and side-effect-free.
//
// VALIDATION COVERAGE:
//   - IP Addresses: strict IPv4 and IPv6 literal parsing
//   - CIDR Ranges: prefix bounds checking per address family
//   - Targets: ping/connect destinations (IP literal or DNS hostname)
//   - Generic Strings: shell metacharacter and length limits
//
// The dangerous-character denylist is defense-in-depth; the primary
// safety guarantee is that arguments are always passed to the local
// tool as a discrete vector, never a shell string.
package validate

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/go-playground/validator/v10"

	"tailnetctl/internal/errors"
)

// DangerousChars is the full denylist applied to values that may reach
// the local command line.
const DangerousChars = ";&|`$(){}[]<>\\'\""

// DangerousCharsBasic is the subset applied to generic string fields.
const DangerousCharsBasic = ";&|`$(){}<>\\"

// MaxTargetLength is the DNS name length ceiling.
const MaxTargetLength = 253

// MaxStringInputLength bounds generic string fields.
const MaxStringInputLength = 1000

// Global validator instance using built-in validations
var fieldValidator = validator.New()

// IsValidIP reports whether s parses as a syntactically valid IPv4 or
// IPv6 literal. Out-of-range octets, malformed compression and
// trailing garbage are all rejected.
func IsValidIP(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}

// IsValidCIDR reports whether s is valid CIDR notation: a valid IP
// literal plus a prefix length within [0,32] for IPv4 or [0,128] for
// IPv6.
func IsValidCIDR(s string) bool {
	_, err := netip.ParsePrefix(s)
	return err == nil
}

// Routes validates that every element of routes is valid CIDR
// notation. Every element is checked; the first invalid element is
// reported.
func Routes(routes []string) error {
	for i, route := range routes {
		if !IsValidCIDR(route) {
			return errors.NewValidationError("routes", route, "cidr",
				fmt.Sprintf("route at index %d has invalid CIDR format: '%s'", i, route))
		}
	}
	return nil
}

// RoutesValue validates a routes value arriving from a decoded JSON
// boundary, where the caller cannot guarantee the value's type. The
// whole value is type-checked before any CIDR validation runs.
func RoutesValue(value any) ([]string, error) {
	list, ok := value.([]any)
	if !ok {
		// A []string arrives pre-typed from Go callers.
		if routes, ok := value.([]string); ok {
			if err := Routes(routes); err != nil {
				return nil, err
			}
			return routes, nil
		}
		return nil, errors.NewValidationError("routes", fmt.Sprintf("%v", value), "type",
			"routes must be an array of strings")
	}

	routes := make([]string, 0, len(list))
	for i, elem := range list {
		s, ok := elem.(string)
		if !ok {
			return nil, errors.NewValidationError("routes", fmt.Sprintf("%v", elem), "type",
				fmt.Sprintf("route at index %d must be a string", i))
		}
		routes = append(routes, s)
	}

	if err := Routes(routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// Target validates a ping/connect destination: either an IP literal or
// a DNS hostname. Rejects shell metacharacters, path traversal
// sequences and over-long names before any grammar check.
func Target(target string) error {
	if target == "" {
		return errors.NewValidationError("target", target, "required", "target cannot be empty")
	}

	if c, found := firstDangerousChar(target, DangerousChars); found {
		return errors.NewValidationError("target", target, "dangerous-characters",
			fmt.Sprintf("target contains dangerous character '%c'", c))
	}

	if strings.Contains(target, "..") || strings.HasPrefix(target, "/") || strings.Contains(target, "~") {
		return errors.NewValidationError("target", target, "path-traversal",
			"target contains path traversal or absolute path sequence")
	}

	if len(target) > MaxTargetLength {
		return errors.NewValidationError("target", target, "max-length",
			fmt.Sprintf("target exceeds maximum length of %d characters", MaxTargetLength))
	}

	// Anything IP-shaped must parse as an IP literal. A malformed IP
	// must not fall through and be accepted as an odd-looking hostname.
	if looksLikeIPv4(target) || strings.Contains(target, ":") {
		if !IsValidIP(target) {
			return errors.NewValidationError("target", target, "ip",
				fmt.Sprintf("target is not a valid IP address: '%s'", target))
		}
		return nil
	}

	if err := fieldValidator.Var(target, "hostname_rfc1123"); err != nil {
		return errors.NewValidationError("target", target, "hostname",
			fmt.Sprintf("target is not a valid hostname: '%s'", target))
	}
	return nil
}

// StringInput validates a generic string field destined for an API
// payload or CLI argument.
func StringInput(s, fieldName string) error {
	if c, found := firstDangerousChar(s, DangerousCharsBasic); found {
		return errors.NewValidationError(fieldName, s, "dangerous-characters",
			fmt.Sprintf("%s contains dangerous character '%c'", fieldName, c))
	}

	if len(s) > MaxStringInputLength {
		return errors.NewValidationError(fieldName, s, "max-length",
			fmt.Sprintf("%s exceeds maximum length of %d characters", fieldName, MaxStringInputLength))
	}
	return nil
}

// DeviceID validates a control-plane device identifier before it is
// interpolated into an API path.
func DeviceID(id string) error {
	if id == "" {
		return errors.NewValidationError("deviceID", id, "required", "deviceID cannot be empty")
	}
	return StringInput(id, "deviceID")
}

func firstDangerousChar(s, set string) (rune, bool) {
	if i := strings.IndexAny(s, set); i >= 0 {
		return rune(s[i]), true
	}
	return 0, false
}

func looksLikeIPv4(s string) bool {
	if !strings.Contains(s, ".") {
		return false
	}
	for _, c := range s {
		if c != '.' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
