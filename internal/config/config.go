package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	localBackendOrigin      = "http://localhost:8001"
	productionBackendOrigin = "https://api.clario.co.in"

	localRedirectURI      = "http://localhost:3000/google-callback"
	productionRedirectURI = "https://clario.co.in/google-callback"
)

// Config represents the application configuration
type Config struct {
	General struct {
		// Environment selects the backend origin and OAuth redirect URI:
		// "local" or "production".
		Environment string `koanf:"environment"`
		LogLevel    string `koanf:"log_level"`
	} `koanf:"general"`

	Backend struct {
		// Origin overrides the environment-derived backend origin.
		Origin string `koanf:"origin"`
		// RedirectURI overrides the environment-derived OAuth redirect URI.
		RedirectURI string `koanf:"redirect_uri"`
	} `koanf:"backend"`

	Storage struct {
		// Dir holds the persisted token and cached display name. Empty means
		// the per-user config directory.
		Dir string `koanf:"dir"`
	} `koanf:"storage"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"general.environment": "local",
		"general.log_level":   "info",
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try to load from default locations
		defaultPaths := []string{"./clario.toml", "$HOME/.clario.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix CLARIO_. Only the first
	// underscore separates section from key, so CLARIO_BACKEND_REDIRECT_URI
	// maps to backend.redirect_uri.
	k.Load(env.Provider("CLARIO_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "CLARIO_")), "_", ".", 1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// BackendOrigin resolves the backend origin from the explicit override or
// the selected environment.
func (c *Config) BackendOrigin() string {
	if c.Backend.Origin != "" {
		return c.Backend.Origin
	}
	if c.General.Environment == "production" {
		return productionBackendOrigin
	}
	return localBackendOrigin
}

// RedirectURI resolves the OAuth redirect URI the same way.
func (c *Config) RedirectURI() string {
	if c.Backend.RedirectURI != "" {
		return c.Backend.RedirectURI
	}
	if c.General.Environment == "production" {
		return productionRedirectURI
	}
	return localRedirectURI
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	// Create sample configuration
	sampleConfig := `# Clario Configuration

[general]
environment = "local"
log_level = "info"

[backend]
# origin = "http://localhost:8001"
# redirect_uri = "http://localhost:3000/google-callback"

[storage]
# dir = "/home/you/.config/clario"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	switch config.General.Environment {
	case "local", "production":
	default:
		return fmt.Errorf("environment must be \"local\" or \"production\", got %q", config.General.Environment)
	}

	if origin := config.Backend.Origin; origin != "" {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("backend origin must be an http(s) URL, got %q", origin)
		}
	}

	if uri := config.Backend.RedirectURI; uri != "" {
		if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
			return fmt.Errorf("redirect URI must be an http(s) URL, got %q", uri)
		}
	}

	return nil
}
