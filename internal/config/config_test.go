package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "local", cfg.General.Environment)
	require.Equal(t, "http://localhost:8001", cfg.BackendOrigin())
	require.Equal(t, "http://localhost:3000/google-callback", cfg.RedirectURI())
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clario.toml")
	content := `
[general]
environment = "production"

[storage]
dir = "/tmp/clario-test"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.General.Environment)
	require.Equal(t, "https://api.clario.co.in", cfg.BackendOrigin())
	require.Equal(t, "https://clario.co.in/google-callback", cfg.RedirectURI())
	require.Equal(t, "/tmp/clario-test", cfg.Storage.Dir)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLARIO_BACKEND_ORIGIN", "http://staging.internal:9000")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "http://staging.internal:9000", cfg.BackendOrigin())
}

func TestExplicitOverridesWinOverEnvironment(t *testing.T) {
	cfg := &Config{}
	cfg.General.Environment = "production"
	cfg.Backend.Origin = "http://localhost:1234"
	cfg.Backend.RedirectURI = "http://localhost:5678/cb"

	require.Equal(t, "http://localhost:1234", cfg.BackendOrigin())
	require.Equal(t, "http://localhost:5678/cb", cfg.RedirectURI())
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.General.Environment = "local"
	require.NoError(t, Validate(cfg))

	cfg.General.Environment = "staging"
	require.Error(t, Validate(cfg))

	cfg.General.Environment = "production"
	cfg.Backend.Origin = "not-a-url"
	require.Error(t, Validate(cfg))

	cfg.Backend.Origin = "https://api.example.com"
	cfg.Backend.RedirectURI = "ftp://bad"
	require.Error(t, Validate(cfg))

	cfg.Backend.RedirectURI = "https://example.com/cb"
	require.NoError(t, Validate(cfg))
}

func TestInitConfigRefusesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clario.toml")

	require.NoError(t, InitConfig(path))
	require.Error(t, InitConfig(path))
}
