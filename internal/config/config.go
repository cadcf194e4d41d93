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

	"github.com/prosperfactory/paygate/internal/verify"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int `koanf:"port"`
	} `koanf:"server"`

	Stripe struct {
		SecretKey     string `koanf:"secretkey"`
		TestSecretKey string `koanf:"testsecretkey"`
		BaseURL       string `koanf:"baseurl"`
	} `koanf:"stripe"`

	Assets struct {
		DriveURLTemplate string `koanf:"driveurltemplate"`
	} `koanf:"assets"`
}

// Load reads the configuration: defaults, then an optional TOML file,
// then PAYGATE_-prefixed environment variables. The two Stripe secrets
// additionally honor their canonical environment variable names, which
// win over everything else.
func Load(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"server.port":             8787,
		"stripe.baseurl":          "https://api.stripe.com",
		"assets.driveurltemplate": "https://drive.google.com/uc?export=download&id=%s",
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./paygate.toml", "$HOME/.paygate.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix PAYGATE_
	k.Load(env.Provider("PAYGATE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "PAYGATE_")), "_", ".", -1)
	}), nil)

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if key := os.Getenv(verify.LiveKeyEnvVar); key != "" {
		config.Stripe.SecretKey = key
	}
	if key := os.Getenv(verify.TestKeyEnvVar); key != "" {
		config.Stripe.TestSecretKey = key
	}

	return &config, nil
}

// Validate checks the configuration. A missing Stripe credential is not
// fatal here: it only affects requests for the matching environment and
// is reported per request as a server misconfiguration.
func Validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", config.Server.Port)
	}
	if config.Stripe.BaseURL == "" {
		return fmt.Errorf("stripe base URL is required")
	}
	if !strings.Contains(config.Assets.DriveURLTemplate, "%s") {
		return fmt.Errorf("asset URL template must contain a %%s placeholder")
	}
	return nil
}

// MissingCredentials names the credential environment variables that are
// not set, for a startup warning.
func MissingCredentials(config *Config) []string {
	var missing []string
	if config.Stripe.SecretKey == "" {
		missing = append(missing, verify.LiveKeyEnvVar)
	}
	if config.Stripe.TestSecretKey == "" {
		missing = append(missing, verify.TestKeyEnvVar)
	}
	return missing
}
