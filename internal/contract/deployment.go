package contract

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Files in a deployment directory.
const (
	AddressesFile   = "contract-addresses.json"
	ManifestFile    = "deployment.json"
	ManifestVersion = 1
)

// ErrContractNotFound is returned when a contract is not in the deployment.
var ErrContractNotFound = errors.New("contract not found")

// AddressBook maps contract names to hex addresses.
type AddressBook map[string]string

// Address returns the address registered for name.
func (b AddressBook) Address(name string) (common.Address, error) {
	s, ok := b[name]
	if !ok {
		return common.Address{}, errors.Wrap(ErrContractNotFound, name)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("%s: invalid address %q", name, s)
	}
	return common.HexToAddress(s), nil
}

// Manifest describes one publish run.
type Manifest struct {
	Version    int         `json:"version"`
	Network    string      `json:"network"`
	ChainID    int64       `json:"chainId"`
	Deployer   string      `json:"deployer"`
	DeployedAt string      `json:"deployedAt"`
	Contracts  AddressBook `json:"contracts"`
}

// NewManifest stamps a manifest with the current version and time.
func NewManifest(network string, chainID int64, deployer common.Address, contracts AddressBook) Manifest {
	return Manifest{
		Version:    ManifestVersion,
		Network:    network,
		ChainID:    chainID,
		Deployer:   deployer.Hex(),
		DeployedAt: time.Now().UTC().Format(time.RFC3339),
		Contracts:  contracts,
	}
}

// Deployment is what the runtime needs to address the two contracts.
type Deployment struct {
	Dir       string
	Addresses AddressBook
	Token     *Artifact
	Vault     *Artifact
	Manifest  *Manifest // nil when the directory has no manifest
}

// ArtifactPath is where the artifact of contract name lives in dir.
func ArtifactPath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// LoadDeployment reads a deployment directory and checks that each artifact
// exposes the methods dmint calls.
func LoadDeployment(dir string) (*Deployment, error) {
	d := &Deployment{Dir: dir, Addresses: AddressBook{}}

	data, err := os.ReadFile(filepath.Join(dir, AddressesFile))
	if os.IsNotExist(err) {
		return nil, errors.Errorf("no deployment in %s: run `dmint publish` first", dir)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading addresses")
	}
	if err := json.Unmarshal(data, &d.Addresses); err != nil {
		return nil, errors.Wrap(err, "parsing "+AddressesFile)
	}

	for _, slot := range []struct {
		name string
		dst  **Artifact
	}{
		{TokenName, &d.Token},
		{VaultName, &d.Vault},
	} {
		if _, err := d.Addresses.Address(slot.name); err != nil {
			return nil, err
		}
		a, err := LoadArtifact(ArtifactPath(dir, slot.name))
		if err != nil {
			return nil, err
		}
		if a.ContractName == "" {
			a.ContractName = slot.name
		}
		if b, ok := BuiltinByName(slot.name); ok {
			want, err := b.Parsed()
			if err != nil {
				return nil, err
			}
			if err := a.Require(want); err != nil {
				return nil, err
			}
		}
		*slot.dst = a
	}

	m, err := loadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	d.Manifest = m
	return d, nil
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "parsing "+ManifestFile)
	}
	if m.Version > ManifestVersion {
		return nil, errors.Errorf("manifest version %d is newer than supported version %d", m.Version, ManifestVersion)
	}
	return &m, nil
}

// WriteDeployment replaces the deployment files in dir: the address book,
// each artifact (verbatim, re-indented by two spaces) and the manifest.
func WriteDeployment(dir string, m Manifest, artifacts map[string]*Artifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating deployment dir")
	}

	paths := []string{filepath.Join(dir, AddressesFile), filepath.Join(dir, ManifestFile)}
	for name := range artifacts {
		paths = append(paths, ArtifactPath(dir, name))
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing %s", p)
		}
	}

	if err := writeJSON(filepath.Join(dir, AddressesFile), m.Contracts); err != nil {
		return err
	}
	for name, a := range artifacts {
		var buf bytes.Buffer
		if err := json.Indent(&buf, a.Raw(), "", "  "); err != nil {
			return errors.Wrapf(err, "formatting %s artifact", name)
		}
		if err := os.WriteFile(ArtifactPath(dir, name), buf.Bytes(), 0o644); err != nil {
			return errors.Wrapf(err, "writing %s artifact", name)
		}
	}
	return writeJSON(filepath.Join(dir, ManifestFile), m)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", filepath.Base(path))
	}
	return nil
}
