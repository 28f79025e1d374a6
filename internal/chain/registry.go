package chain

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// apiKeyPlaceholder is substituted with the provider API key in RPC templates.
const apiKeyPlaceholder = "{API_KEY}"

// Network holds the metadata needed to reach one deployment target.
type Network struct {
	Name           string   `yaml:"name"            json:"name"`
	DisplayName    string   `yaml:"display_name"    json:"display_name"`
	ChainID        int64    `yaml:"chain_id"        json:"chain_id"`
	NativeCurrency string   `yaml:"native_currency" json:"native_currency"`
	RPCs           []string `yaml:"rpcs"            json:"rpcs"`
	Explorer       string   `yaml:"explorer"        json:"explorer,omitempty"`
	// Ephemeral marks a development network whose state is discarded when
	// the node restarts.
	Ephemeral bool `yaml:"ephemeral" json:"ephemeral,omitempty"`
}

// Endpoints returns the network's RPC URLs with the API key substituted.
// Templates that need a key are dropped when apiKey is empty.
func (n *Network) Endpoints(apiKey string) []string {
	out := make([]string, 0, len(n.RPCs))
	for _, u := range n.RPCs {
		if strings.Contains(u, apiKeyPlaceholder) {
			if apiKey == "" {
				continue
			}
			u = strings.ReplaceAll(u, apiKeyPlaceholder, apiKey)
		}
		out = append(out, u)
	}
	return out
}

// TxURL returns the explorer link for a transaction, or "" without an explorer.
func (n *Network) TxURL(hash string) string {
	if n.Explorer == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/tx/" + hash
}

// Registry is the set of known networks.
type Registry struct {
	byName map[string]*Network
	byID   map[int64]*Network
}

// NewRegistry returns the built-in networks followed by any overrides.
// An override with the same name replaces the built-in entry.
func NewRegistry(overrides ...Network) *Registry {
	r := &Registry{
		byName: make(map[string]*Network),
		byID:   make(map[int64]*Network),
	}
	for _, n := range builtinNetworks() {
		r.add(n)
	}
	for _, n := range overrides {
		r.add(n)
	}
	return r
}

func (r *Registry) add(n Network) {
	n.Name = strings.TrimSpace(n.Name)
	if n.Name == "" {
		return
	}
	if n.DisplayName == "" {
		n.DisplayName = n.Name
	}
	if prev, ok := r.byName[strings.ToLower(n.Name)]; ok && prev.ChainID != 0 {
		if r.byID[prev.ChainID] == prev {
			delete(r.byID, prev.ChainID)
		}
	}
	nn := n
	r.byName[strings.ToLower(n.Name)] = &nn
	if n.ChainID != 0 {
		if _, taken := r.byID[n.ChainID]; !taken {
			r.byID[n.ChainID] = &nn
		}
	}
}

// Get finds a network by name, case-insensitively.
func (r *Registry) Get(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, errors.Wrap(ErrNetworkNotFound, name)
	}
	return n, nil
}

// GetByChainID finds a network by its chain ID.
func (r *Registry) GetByChainID(id int64) (*Network, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, errors.Wrapf(ErrNetworkNotFound, "chain id %d", id)
	}
	return n, nil
}

// All returns every network sorted by name.
func (r *Registry) All() []Network {
	out := make([]Network, 0, len(r.byName))
	for _, n := range r.byName {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// networksFile is the on-disk shape of networks.yaml.
type networksFile struct {
	Networks []Network `yaml:"networks"`
}

// LoadNetworks reads network overrides from a YAML file. A missing file
// yields no overrides.
func LoadNetworks(path string) ([]Network, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading networks file")
	}
	var f networksFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return f.Networks, nil
}

// --- network data ---

func builtinNetworks() []Network {
	return []Network{
		{
			Name: "localhost", DisplayName: "Localhost", ChainID: 31337,
			NativeCurrency: "ETH",
			RPCs:           []string{"http://127.0.0.1:8545"},
		},
		{
			Name: "hardhat", DisplayName: "Hardhat Network", ChainID: 31337,
			NativeCurrency: "ETH",
			RPCs:           []string{"http://127.0.0.1:8545"},
			Ephemeral:      true,
		},
		{
			Name: "bnb", DisplayName: "BNB Smart Chain Testnet", ChainID: 97,
			NativeCurrency: "tBNB",
			RPCs: []string{
				"https://bsc-testnet.infura.io/v3/" + apiKeyPlaceholder,
				"https://bsc-testnet-rpc.publicnode.com",
			},
			Explorer: "https://testnet.bscscan.com",
		},
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://sepolia.infura.io/v3/" + apiKeyPlaceholder,
				"https://ethereum-sepolia-rpc.publicnode.com",
			},
			Explorer: "https://sepolia.etherscan.io",
		},
		{
			Name: "lineaSepolia", DisplayName: "Linea Sepolia", ChainID: 59141,
			NativeCurrency: "ETH",
			RPCs: []string{
				"https://linea-sepolia.infura.io/v3/" + apiKeyPlaceholder,
				"https://rpc.sepolia.linea.build",
			},
			Explorer: "https://sepolia.lineascan.build",
		},
	}
}
