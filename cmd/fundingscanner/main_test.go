package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundingScanner/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{"FUNDING_SCANNER_CONFIG", "DATABASE_DSN", "RELEVANCE_THRESHOLD", "DIGEST_TYPE", "LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("FUNDING_SCANNER_ENV_FILE", filepath.Join(dir, ".env"))
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestClassifyAccepts(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "classify", "--log-level", "error",
		"--title", "Acme Pay raises £10M Series A to expand UK fintech offering")
	require.NoError(t, err)

	assert.Contains(t, out, "Acme Pay")
	assert.Contains(t, out, "£10M")
	assert.Contains(t, out, "location_uk")
	assert.Contains(t, out, "ACCEPT (score 100 >= 50)")
}

func TestClassifyRejectsWithoutKeyword(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "classify", "--log-level", "error",
		"--title", "Berlin's tech scene is booming this fintech season")
	require.NoError(t, err)
	assert.Contains(t, out, "REJECT")
}

func TestClassifyRequiresText(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "classify", "--log-level", "error")
	require.Error(t, err)
}

func TestClassifyListsRules(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "classify", "--log-level", "error", "--rules")
	require.NoError(t, err)
	assert.Contains(t, out, "funding_stage")
	assert.Contains(t, out, "Series A")
	assert.Contains(t, out, "symbol")
	assert.NotContains(t, out, "ACCEPT")
}

func TestStatsOnFileStore(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "logging:\n  level: error\ndatabase:\n  driver: file\n  path: " + filepath.Join(dir, "store.json") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	out, err := runCLI(t, "stats", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "seen articles")

	out, err = runCLI(t, "purge", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "purged 0 seen articles older than 90 days")
}

func TestInvalidConfigExitCode(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("detection:\n  threshold: 200\n"), 0o600))

	_, err := runCLI(t, "stats", "--config", cfgPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))

	assert.Equal(t, exitConfigError, execute(context.Background(), []string{"stats", "--config", cfgPath}))
}
