package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vm-benchmark.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
vm_types:
  - name: small
  - name: large
    node_selector:
      disk: ephemeral
poll_interval: 5s
wait_budget: 10m
normalize: false
parser: generic
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"small", "large"}, cfg.VMTypeNames())
	assert.Equal(t, map[string]string{"nodepoolname": "small"}, cfg.VMTypes[0].NodeSelector)
	assert.Equal(t, map[string]string{"disk": "ephemeral"}, cfg.VMTypes[1].NodeSelector)
	assert.Equal(t, Duration(5*time.Second), cfg.PollInterval)
	assert.Equal(t, Duration(10*time.Minute), cfg.WaitBudget)
	assert.False(t, cfg.Normalize)
	assert.Equal(t, "generic", cfg.Parser)

	// Defaults fill fields the file does not set
	assert.Equal(t, "default", cfg.Namespace)
	assert.Equal(t, "benchmark_results.csv", cfg.Output)
}

func TestLoadRequiresVMTypes(t *testing.T) {
	path := writeConfig(t, "normalize: true\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
vm_types:
  - name: small
poll_interval: soon
`)
	_, err := Load(path)
	require.Error(t, err)
}
