package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	expected := []string{"status", "devices", "ping", "up", "down", "routes", "device", "login", "version"}

	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, name := range expected {
		assert.Truef(t, names[name], "expected subcommand %q to be registered", name)
	}
}

func TestVersionCommandOutput(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-01-01", "ci")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, rootCmd.Execute())
}

func TestRoutesSubcommands(t *testing.T) {
	subnames := map[string]bool{}
	for _, sub := range routesCmd.Commands() {
		subnames[sub.Name()] = true
	}
	assert.True(t, subnames["advertise"])
	assert.True(t, subnames["get"])
	assert.True(t, subnames["set"])
}
