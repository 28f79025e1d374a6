package contract_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const tokenArtifactABI = `[
  {"inputs":[{"internalType":"address","name":"initialOwner","type":"address"}],"stateMutability":"nonpayable","type":"constructor"},
  {"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"owner","type":"address"},{"indexed":true,"internalType":"address","name":"spender","type":"address"},{"indexed":false,"internalType":"uint256","name":"value","type":"uint256"}],"name":"Approval","type":"event"},
  {"inputs":[{"internalType":"address","name":"spender","type":"address"},{"internalType":"uint256","name":"value","type":"uint256"}],"name":"approve","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"to","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"mint","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

const vaultArtifactABI = `[
  {"inputs":[{"internalType":"address","name":"_token","type":"address"}],"stateMutability":"nonpayable","type":"constructor"},
  {"inputs":[{"internalType":"address","name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"deposit","outputs":[],"stateMutability":"nonpayable","type":"function"},
  {"inputs":[{"internalType":"address","name":"","type":"address"}],"name":"userDeposits","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// hardhatArtifact renders a Hardhat artifact the way `artifacts.readArtifactSync` returns it.
func hardhatArtifact(name, abiJSON, bytecode string) []byte {
	return []byte(fmt.Sprintf(`{"_format":"hh-sol-artifact-1","contractName":%q,"sourceName":"contracts/%s.sol","abi":%s,"bytecode":%q,"deployedBytecode":"0x","linkReferences":{},"deployedLinkReferences":{}}`,
		name, name, abiJSON, bytecode))
}

func tokenArtifactJSON() []byte {
	return hardhatArtifact("Token", tokenArtifactABI, "0x6080604052348015600f57600080fd5b50")
}

func vaultArtifactJSON() []byte {
	return hardhatArtifact("DepositAndMint", vaultArtifactABI, "0x6080604052")
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// writeDeploymentDir lays out a deployment directory by hand, as an older
// publisher without a manifest would.
func writeDeploymentDir(t *testing.T, addresses string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "contract-addresses.json", []byte(addresses))
	writeFile(t, dir, "Token.json", tokenArtifactJSON())
	writeFile(t, dir, "DepositAndMint.json", vaultArtifactJSON())
	return dir
}
