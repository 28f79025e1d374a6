package integration_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/dmint/internal/chain"
	"github.com/Mohsinsiddi/dmint/internal/dapp"
	"github.com/Mohsinsiddi/dmint/internal/rpc"
	"github.com/Mohsinsiddi/dmint/test/fixtures"
)

var user = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// readerOver publishes a deployment, connects to node and binds a reader.
func readerOver(t *testing.T, node *fixtures.Node) (*dapp.BalanceReader, *chain.Client) {
	t.Helper()
	d := fixtures.WriteDeployment(t, t.TempDir(), "localhost", node.ChainID)

	client, err := rpc.Connect(context.Background(), []string{node.URL}, rpc.AlgorithmFastest, nil)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	token, vault, err := d.Bind(client)
	require.NoError(t, err)
	return dapp.NewBalanceReader(token, vault, nil), client
}

func TestSnapshotFromNode(t *testing.T) {
	node := fixtures.NewNode(t, 31337)
	node.SetUint(fixtures.TokenAddress, "balanceOf(address)", tokens(99000))
	node.SetUint(fixtures.VaultAddress, "userDeposits(address)", tokens(1000))
	node.SetUint(fixtures.VaultAddress, "balanceOf(address)", big.NewInt(1))

	reader, _ := readerOver(t, node)
	snap, err := reader.Read(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, dapp.BalanceSnapshot{Token: "99000.0", Deposited: "1000.0", Secondary: 1}, snap)
	assert.Equal(t, 3, node.Calls())
}

func TestSnapshotPreservesPrecision(t *testing.T) {
	node := fixtures.NewNode(t, 31337)
	odd, ok := new(big.Int).SetString("123456789012345678901234567", 10)
	require.True(t, ok)
	node.SetUint(fixtures.TokenAddress, "balanceOf(address)", odd)
	node.SetUint(fixtures.VaultAddress, "userDeposits(address)", big.NewInt(1))
	node.SetUint(fixtures.VaultAddress, "balanceOf(address)", big.NewInt(0))

	reader, _ := readerOver(t, node)
	snap, err := reader.Read(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, "123456789.012345678901234567", snap.Token)
	assert.Equal(t, "0.000000000000000001", snap.Deposited)
}

func TestSnapshotAllOrNothing(t *testing.T) {
	node := fixtures.NewNode(t, 31337)
	node.SetUint(fixtures.TokenAddress, "balanceOf(address)", tokens(5))
	node.SetUint(fixtures.VaultAddress, "balanceOf(address)", big.NewInt(0))
	// userDeposits is unanswered, so that call reverts.

	reader, _ := readerOver(t, node)
	_, err := reader.Read(context.Background(), user)
	require.Error(t, err)
}

func TestSnapshotNodeDown(t *testing.T) {
	node := fixtures.NewNode(t, 31337)
	node.Fail(true)

	reader, _ := readerOver(t, node)
	_, err := reader.Read(context.Background(), user)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node unavailable")
}

func TestChainIDFromNode(t *testing.T) {
	node := fixtures.NewNode(t, 97)
	_, client := readerOver(t, node)

	id, err := client.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(97), id.Int64())
}
