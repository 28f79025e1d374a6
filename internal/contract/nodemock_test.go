package contract_test

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// nodeMock is a JSON-RPC server whose responses are computed per request.
// Unknown methods return an RPC error.
type nodeMock struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]func(params []json.RawMessage) (interface{}, error)
	sent     []*types.Transaction
}

func newNodeMock(t *testing.T) *nodeMock {
	t.Helper()
	m := &nodeMock{handlers: make(map[string]func([]json.RawMessage) (interface{}, error))}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Close)

	m.handle("eth_sendRawTransaction", func(params []json.RawMessage) (interface{}, error) {
		var raw string
		if err := json.Unmarshal(params[0], &raw); err != nil {
			return nil, err
		}
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(hexutil.MustDecode(raw)); err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sent = append(m.sent, tx)
		m.mu.Unlock()
		return tx.Hash(), nil
	})
	m.handle("eth_getTransactionReceipt", func(params []json.RawMessage) (interface{}, error) {
		var h common.Hash
		if err := json.Unmarshal(params[0], &h); err != nil {
			return nil, err
		}
		r := &types.Receipt{
			Type:              types.LegacyTxType,
			Status:            types.ReceiptStatusSuccessful,
			CumulativeGasUsed: 50000,
			Logs:              []*types.Log{},
			TxHash:            h,
			GasUsed:           50000,
			BlockHash:         common.HexToHash("0x01"),
			BlockNumber:       big.NewInt(7),
		}
		return r, nil
	})
	return m
}

func (m *nodeMock) handle(method string, fn func([]json.RawMessage) (interface{}, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method] = fn
}

func (m *nodeMock) sentTxs() []*types.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*types.Transaction(nil), m.sent...)
}

func (m *nodeMock) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
		ID     json.RawMessage   `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	m.mu.Lock()
	fn, ok := m.handlers[req.Method]
	m.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	switch {
	case !ok:
		resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
	default:
		result, err := fn(req.Params)
		if err != nil {
			resp["error"] = map[string]interface{}{"code": 3, "message": err.Error()}
		} else {
			resp["result"] = result
		}
	}
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

// callData extracts the input of an eth_call request.
func callData(t *testing.T, params []json.RawMessage) []byte {
	t.Helper()
	var msg struct {
		Input hexutil.Bytes `json:"input"`
		Data  hexutil.Bytes `json:"data"`
	}
	require.NoError(t, json.Unmarshal(params[0], &msg))
	if len(msg.Input) > 0 {
		return msg.Input
	}
	return msg.Data
}

// word ABI-encodes v as a uint256 return value.
func word(v *big.Int) string {
	return fmt.Sprintf("0x%064x", v)
}
