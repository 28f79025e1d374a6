package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialAndPing(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x10"})
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, srv.URL, c.URL())

	latency, block, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(16), block)
	assert.GreaterOrEqual(t, latency, time.Duration(0))
}

func TestPingRPCError(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{})
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	_, _, err = c.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not found")
}

func TestChainIDThroughClient(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_chainId": "0x61"})
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	id, err := c.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(97), id.Int64())
}

func receiptJSON(t *testing.T, tx *types.Transaction, status uint64) json.RawMessage {
	t.Helper()
	r := &types.Receipt{
		Type:              types.LegacyTxType,
		Status:            status,
		CumulativeGasUsed: 21000,
		Logs:              []*types.Log{},
		TxHash:            tx.Hash(),
		GasUsed:           21000,
		BlockHash:         common.HexToHash("0x01"),
		BlockNumber:       big.NewInt(5),
	}
	raw, err := json.Marshal(r)
	require.NoError(t, err)
	return raw
}

func TestWaitMinedSuccess(t *testing.T) {
	tx := types.NewTx(&types.LegacyTx{Nonce: 1, Gas: 21000, GasPrice: big.NewInt(1)})
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": receiptJSON(t, tx, types.ReceiptStatusSuccessful),
	})
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	receipt, err := WaitMined(ctx, c, tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), receipt.BlockNumber.Uint64())
}

func TestWaitMinedReverted(t *testing.T) {
	tx := types.NewTx(&types.LegacyTx{Nonce: 2, Gas: 21000, GasPrice: big.NewInt(1)})
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": receiptJSON(t, tx, types.ReceiptStatusFailed),
	})
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	receipt, err := WaitMined(ctx, c, tx)
	require.ErrorIs(t, err, ErrReverted)
	require.NotNil(t, receipt)
	assert.Contains(t, err.Error(), tx.Hash().Hex())
}

func TestWaitMinedHonoursContext(t *testing.T) {
	tx := types.NewTx(&types.LegacyTx{Nonce: 3, Gas: 21000, GasPrice: big.NewInt(1)})
	// A null receipt means the transaction is still pending.
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err = WaitMined(ctx, c, tx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
