package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/erc7824/nitrolite/nearrpc/pkg/log"
)

const (
	configDirPathEnv     = "NEARRPC_CONFIG_DIR_PATH"
	defaultConfigDirPath = "."
)

// SignerAuth selects how a signer private key authenticates requests.
type SignerAuth string

const (
	SignerAuthSignature SignerAuth = "signature"
	SignerAuthJWT       SignerAuth = "jwt"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config represents the overall CLI configuration
type Config struct {
	Network string `env:"NEARRPC_NETWORK" env-default:"testnet" validate:"required"`
	// RPCURL overrides the URL of the selected network
	RPCURL   string `env:"NEARRPC_RPC_URL" validate:"omitempty,http_url"`
	Archival bool   `env:"NEARRPC_ARCHIVAL"`

	// At most one way of authenticating may be configured.
	APIKey           string     `env:"NEARRPC_API_KEY" validate:"excluded_with=BearerToken SignerPrivateKey"`
	BearerToken      string     `env:"NEARRPC_BEARER_TOKEN" validate:"excluded_with=APIKey SignerPrivateKey"`
	SignerPrivateKey string     `env:"NEARRPC_SIGNER_PRIVATE_KEY" validate:"omitempty,hexadecimal"`
	SignerAuth       SignerAuth `env:"NEARRPC_SIGNER_AUTH" env-default:"signature" validate:"oneof=signature jwt"`
	JWTIssuer        string     `env:"NEARRPC_JWT_ISSUER" env-default:"nearrpc"`
	JWTAudience      []string   `env:"NEARRPC_JWT_AUDIENCE" env-separator:","`

	Timeout     time.Duration `env:"NEARRPC_TIMEOUT" env-default:"30s" validate:"gt=0"`
	RateLimit   float64       `env:"NEARRPC_RATE_LIMIT" env-default:"0" validate:"gte=0"` // requests per second, 0 disables
	MetricsAddr string        `env:"NEARRPC_METRICS_ADDR" validate:"omitempty,hostname_port"`

	Log log.Config

	networks map[string]NetworkConfig
}

// LoadConfig builds configuration from the .env file, the environment and
// networks.yaml, all found in NEARRPC_CONFIG_DIR_PATH.
func LoadConfig(logger log.Logger) (*Config, error) {
	logger = logger.WithName("config")

	configDirPath := os.Getenv(configDirPathEnv)
	if configDirPath == "" {
		configDirPath = defaultConfigDirPath
	}

	configDotEnvPath := filepath.Join(configDirPath, ".env")
	logger.Debug("loading .env file", "path", configDotEnvPath)
	if err := godotenv.Load(configDotEnvPath); err != nil {
		logger.Debug(".env file not found", "path", configDotEnvPath)
	}

	var conf Config
	if err := cleanenv.ReadEnv(&conf); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	networks, err := LoadNetworks(configDirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load networks: %w", err)
	}
	conf.networks = networks

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks field constraints and that the endpoint can be resolved.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Endpoint(); err != nil {
		return err
	}
	return nil
}

// Endpoint returns the JSON-RPC URL to talk to: NEARRPC_RPC_URL when set,
// otherwise the URL of the selected network.
func (c *Config) Endpoint() (string, error) {
	if c.RPCURL != "" {
		return c.RPCURL, nil
	}

	network, ok := c.networks[c.Network]
	if !ok {
		return "", fmt.Errorf("unknown network '%s'", c.Network)
	}
	if c.Archival {
		if network.ArchivalRPCURL == "" {
			return "", fmt.Errorf("network '%s' has no archival endpoint", c.Network)
		}
		return network.ArchivalRPCURL, nil
	}
	return network.RPCURL, nil
}
