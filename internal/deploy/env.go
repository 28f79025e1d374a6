package deploy

import (
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment variables read by the publisher.
const (
	EnvAPIKey       = "API_KEY"
	EnvPrivateKey   = "PRIVATE_KEY"
	EnvOwnerAddress = "OWNER_ADDRESS"
)

// Env holds the publish secrets.
type Env struct {
	APIKey       string
	PrivateKey   string
	OwnerAddress string
}

// LoadEnv reads the publish variables from the process environment after
// loading any of the given .env files that exist. Variables already set in
// the environment win over the files.
func LoadEnv(files ...string) (Env, error) {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) > 0 {
		if err := godotenv.Load(present...); err != nil {
			return Env{}, errors.Wrap(err, "loading .env")
		}
	}
	return Env{
		APIKey:       strings.TrimSpace(os.Getenv(EnvAPIKey)),
		PrivateKey:   strings.TrimSpace(os.Getenv(EnvPrivateKey)),
		OwnerAddress: strings.TrimSpace(os.Getenv(EnvOwnerAddress)),
	}, nil
}

// Owner returns the initial token owner, falling back to the deployer.
func (e Env) Owner(deployer common.Address) (common.Address, error) {
	if e.OwnerAddress == "" {
		return deployer, nil
	}
	if !common.IsHexAddress(e.OwnerAddress) {
		return common.Address{}, errors.Errorf("%s: invalid address %q", EnvOwnerAddress, e.OwnerAddress)
	}
	return common.HexToAddress(e.OwnerAddress), nil
}
