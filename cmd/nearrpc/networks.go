package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

const networksFileName = "networks.yaml"

var networkNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*[a-z0-9]$`)

// NetworksConfig is the root of networks.yaml.
type NetworksConfig struct {
	Networks []NetworkConfig `yaml:"networks"`
}

// NetworkConfig names one NEAR network and where to reach it.
type NetworkConfig struct {
	// Name is the identifier selected with NEARRPC_NETWORK or --network
	Name string `yaml:"name"`
	// RPCURL is the JSON-RPC endpoint of the network
	RPCURL string `yaml:"rpc_url" validate:"required,http_url"`
	// ArchivalRPCURL is used instead of RPCURL when --archival is set
	ArchivalRPCURL string `yaml:"archival_rpc_url" validate:"omitempty,http_url"`
	// Disabled hides a built-in network
	Disabled bool `yaml:"disabled"`
}

func defaultNetworks() map[string]NetworkConfig {
	return map[string]NetworkConfig{
		"mainnet": {
			Name:           "mainnet",
			RPCURL:         "https://rpc.mainnet.near.org",
			ArchivalRPCURL: "https://archival-rpc.mainnet.near.org",
		},
		"testnet": {
			Name:           "testnet",
			RPCURL:         "https://rpc.testnet.near.org",
			ArchivalRPCURL: "https://archival-rpc.testnet.near.org",
		},
		"betanet": {
			Name:   "betanet",
			RPCURL: "https://rpc.betanet.near.org",
		},
		"localnet": {
			Name:   "localnet",
			RPCURL: "http://127.0.0.1:3030",
		},
	}
}

// LoadNetworks returns the built-in networks merged with
// <configDirPath>/networks.yaml. A missing file leaves the defaults as they
// are; an entry with the name of a built-in network replaces it.
func LoadNetworks(configDirPath string) (map[string]NetworkConfig, error) {
	networks := defaultNetworks()

	path := filepath.Join(configDirPath, networksFileName)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return networks, nil
		}
		return nil, err
	}
	defer f.Close()

	var cfg NetworksConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if err := verifyNetworksConfig(&cfg); err != nil {
		return nil, err
	}

	for _, n := range cfg.Networks {
		if n.Disabled {
			delete(networks, n.Name)
			continue
		}
		networks[n.Name] = n
	}
	return networks, nil
}

func verifyNetworksConfig(cfg *NetworksConfig) error {
	seen := make(map[string]struct{}, len(cfg.Networks))
	for i, n := range cfg.Networks {
		if !networkNameRegex.MatchString(n.Name) {
			return fmt.Errorf("invalid network name '%s', should match %s", n.Name, networkNameRegex.String())
		}
		if _, ok := seen[n.Name]; ok {
			return fmt.Errorf("network '%s' is listed twice", n.Name)
		}
		seen[n.Name] = struct{}{}

		if n.Disabled {
			continue
		}
		if err := validate.Struct(cfg.Networks[i]); err != nil {
			return fmt.Errorf("invalid network '%s': %w", n.Name, err)
		}
	}
	return nil
}
