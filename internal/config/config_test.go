package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"SEALKV_CONFIG", "SEALKV_HOME", "SEALKV_MAX_VALUE_BYTES", "SEALKV_KEYRING_MODE",
		"SEALKV_PASSPHRASE", "SEALKV_USER", "SEALKV_LOG_LEVEL", "SEALKV_LOG_PRETTY",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	clearEnv(t)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "file", c.Keyring.Mode)
	assert.Equal(t, 16<<20, c.Storage.MaxValueBytes)
	assert.Equal(t, "warn", c.Logging.Level)
	assert.Empty(t, c.Session.User)
}

func TestYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sealkv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  home: /from/yaml
  max_value_bytes: 1024
keyring:
  mode: passphrase
session:
  user: alice
logging:
  level: debug
  pretty: false
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/yaml", c.Storage.Home)
	assert.Equal(t, 1024, c.Storage.MaxValueBytes)
	assert.Equal(t, "passphrase", c.Keyring.Mode)
	assert.Equal(t, "alice", c.Session.User)
	assert.False(t, c.Logging.Pretty)

	t.Setenv("SEALKV_HOME", "/from/env")
	t.Setenv("SEALKV_USER", "bob")
	t.Setenv("SEALKV_PASSPHRASE", "s3cret")
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", c.Storage.Home)
	assert.Equal(t, "bob", c.Session.User)
	assert.Equal(t, "s3cret", c.Keyring.Passphrase)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("storage: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("SEALKV_MAX_VALUE_BYTES", "lots")
	_, err = Load("")
	assert.Error(t, err)
}
