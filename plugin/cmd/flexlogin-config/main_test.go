package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexlogin/flexlogin/plugin/internal/config"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestInit_CreatesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "flexiblelogin")

	_, logs, err := run(t, "init", "--dir", dir, "--log-format", "text")
	require.NoError(t, err)

	for _, name := range []string{config.GeneralFileName, config.TextFileName} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotZero(t, info.Size(), name)
	}
	assert.Contains(t, logs, "config loaded")
	assert.Contains(t, logs, "hash_algo=BCrypt")
}

func TestCheck_Metrics(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, "check", "--dir", dir, "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "# TYPE flexlogin_config_loads_total counter")
	assert.Contains(t, out, `flexlogin_config_loads_total{file="config.conf"} 1`)
}

func TestCheck_FailsOnBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.GeneralFileName), []byte("waitTime: 10 bananas\n"), 0o600))

	_, logs, err := run(t, "check", "--dir", dir)
	require.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, logs, "error loading the configuration")
}

func TestShow(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, "show", "general", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "hashAlgo: BCrypt")
	assert.Contains(t, out, "waitTime: 5m")

	out, _, err = run(t, "show", "text", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "loggedIn: Logged in")

	_, _, err = run(t, "show", "everything", "--dir", dir)
	require.Error(t, err)
}

func TestLogFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(t.TempDir(), "flexlogin.log")

	_, stderr, err := run(t, "check", "--dir", dir, "--log-file", logFile)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"config loaded"`)
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := run(t, "check", "--dir", t.TempDir(), "--log-level", "loud")
	require.Error(t, err)
}
