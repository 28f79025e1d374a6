// Package fixtures builds deployment directories and a scripted JSON-RPC
// node for the integration tests.
package fixtures

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/dmint/internal/contract"
)

// Hardhat's first two deterministic contract addresses.
var (
	TokenAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	VaultAddress = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

// Artifact renders a Hardhat artifact for one of the builtin contracts.
func Artifact(t *testing.T, name string) *contract.Artifact {
	t.Helper()
	b, ok := contract.BuiltinByName(name)
	require.True(t, ok, "no builtin %s", name)
	a, err := contract.ParseArtifact([]byte(fmt.Sprintf(
		`{"_format":"hh-sol-artifact-1","contractName":%q,"sourceName":"contracts/%s.sol","abi":%s,"bytecode":"0x6080604052","deployedBytecode":"0x6080604052"}`,
		name, name, b.ABI)))
	require.NoError(t, err)
	return a
}

// WriteDeployment publishes both contracts at the fixed addresses into dir.
func WriteDeployment(t *testing.T, dir, network string, chainID int64) *contract.Deployment {
	t.Helper()
	m := contract.NewManifest(network, chainID, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), contract.AddressBook{
		contract.TokenName: TokenAddress.Hex(),
		contract.VaultName: VaultAddress.Hex(),
	})
	require.NoError(t, contract.WriteDeployment(dir, m, map[string]*contract.Artifact{
		contract.TokenName: Artifact(t, contract.TokenName),
		contract.VaultName: Artifact(t, contract.VaultName),
	}))
	d, err := contract.LoadDeployment(dir)
	require.NoError(t, err)
	return d
}
