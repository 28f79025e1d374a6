package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	defaultNetwork    = "localhost"
	defaultAlgorithm  = "fastest"
	defaultDeployDir  = "deployments"
	defaultArtifacts  = "artifacts/contracts"
	defaultTimeoutSec = 0

	envPrefix    = "DMINT"
	configFile   = "config.json"
	walletsFile  = "wallets.json"
	networksFile = "networks.yaml"
	logFile      = "dmint.log"
)

// Config holds all dmint configuration.
type Config struct {
	DefaultNetwork string              `json:"default_network" mapstructure:"default_network"`
	DefaultWallet  string              `json:"default_wallet"  mapstructure:"default_wallet"`
	DeploymentsDir string              `json:"deployments_dir" mapstructure:"deployments_dir"` // publisher output, runtime input
	ArtifactsDir   string              `json:"artifacts_dir"   mapstructure:"artifacts_dir"`   // compiled Hardhat artifacts
	RPCAlgorithm   string              `json:"rpc_algorithm"   mapstructure:"rpc_algorithm"`   // "fastest" | "failover"
	ConfirmTimeout int                 `json:"confirm_timeout" mapstructure:"confirm_timeout"` // seconds, 0 waits forever
	CustomRPCs     map[string][]string `json:"custom_rpcs"     mapstructure:"custom_rpcs"`

	// internal: config dir path used for Save()
	configDir string
}

// Load reads config from dir (or creates defaults). dir defaults to ~/.dmint.
// Every key can be overridden by a DMINT_<KEY> environment variable.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "could not determine home dir")
		}
		dir = filepath.Join(home, ".dmint")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "could not create config dir")
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, configFile))
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("default_network", defaultNetwork)
	v.SetDefault("default_wallet", "")
	v.SetDefault("deployments_dir", defaultDeployDir)
	v.SetDefault("artifacts_dir", defaultArtifacts)
	v.SetDefault("rpc_algorithm", defaultAlgorithm)
	v.SetDefault("confirm_timeout", defaultTimeoutSec)
	v.SetDefault("custom_rpcs", map[string][]string{})

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Set updates one key by its JSON name.
func (c *Config) Set(key, value string) error {
	switch key {
	case "default_network":
		c.DefaultNetwork = value
	case "default_wallet":
		c.DefaultWallet = value
	case "deployments_dir":
		c.DeploymentsDir = value
	case "artifacts_dir":
		c.ArtifactsDir = value
	case "rpc_algorithm":
		if value != "fastest" && value != "failover" {
			return errors.Errorf("unknown rpc algorithm %q (fastest|failover)", value)
		}
		c.RPCAlgorithm = value
	case "confirm_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, "confirm_timeout %q", value)
		}
		if d < 0 {
			return errors.Errorf("confirm_timeout must not be negative")
		}
		c.ConfirmTimeout = int(d / time.Second)
	default:
		return errors.Errorf("unknown config key %q", key)
	}
	return nil
}

// ConfirmWait returns the confirmation bound, zero meaning unbounded.
func (c *Config) ConfirmWait() time.Duration {
	return time.Duration(c.ConfirmTimeout) * time.Second
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	network = strings.ToLower(network)
	if slices.Contains(c.CustomRPCs[network], url) {
		return errors.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	network = strings.ToLower(network)
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return errors.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network. Keys are case-insensitive
// because viper lowercases map keys on load.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[strings.ToLower(network)]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where wallet metadata is stored.
func (c *Config) WalletsPath() string { return filepath.Join(c.configDir, walletsFile) }

// NetworksPath is the optional networks.yaml override file.
func (c *Config) NetworksPath() string { return filepath.Join(c.configDir, networksFile) }

// LogPath is where the interactive page writes its log.
func (c *Config) LogPath() string { return filepath.Join(c.configDir, logFile) }

// Resolve makes a relative directory setting absolute against the working dir.
func Resolve(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
