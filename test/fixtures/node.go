package fixtures

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/dmint/internal/contract"
)

// Node is a JSON-RPC server answering eth_call from a table of
// (contract, selector) → uint256 results.
type Node struct {
	*httptest.Server

	mu      sync.Mutex
	ChainID int64
	results map[string]*big.Int
	calls   int
	failing bool
}

// NewNode starts a node that is closed with the test.
func NewNode(t *testing.T, chainID int64) *Node {
	t.Helper()
	n := &Node{ChainID: chainID, results: make(map[string]*big.Int)}
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.Close)
	return n
}

func callKey(to common.Address, sig string) string {
	return strings.ToLower(to.Hex()) + contract.SelectorHex(sig)
}

// SetUint answers calls of sig on to with v, whatever the arguments.
func (n *Node) SetUint(to common.Address, sig string, v *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results[callKey(to, sig)] = v
}

// Fail makes every eth_call return an RPC error.
func (n *Node) Fail(on bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failing = on
}

// Calls is the number of eth_call requests served.
func (n *Node) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func (n *Node) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	result, rpcErr := n.handle(req)
	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != "" {
		resp["error"] = map[string]interface{}{"code": -32000, "message": rpcErr}
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (n *Node) handle(req rpcRequest) (interface{}, string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch req.Method {
	case "eth_chainId":
		return hexutil.EncodeBig(big.NewInt(n.ChainID)), ""
	case "eth_blockNumber":
		return "0x10", ""
	case "eth_call":
		n.calls++
		if n.failing {
			return nil, "node unavailable"
		}
		var call struct {
			To    common.Address `json:"to"`
			Data  hexutil.Bytes  `json:"data"`
			Input hexutil.Bytes  `json:"input"`
		}
		if len(req.Params) == 0 || json.Unmarshal(req.Params[0], &call) != nil {
			return nil, "invalid params"
		}
		data := call.Input
		if len(data) == 0 {
			data = call.Data
		}
		if len(data) < 4 {
			return nil, "no selector"
		}
		v, ok := n.results[strings.ToLower(call.To.Hex())+hexutil.Encode(data[:4])]
		if !ok {
			return nil, "execution reverted"
		}
		return hexutil.Encode(common.LeftPadBytes(v.Bytes(), 32)), ""
	}
	return nil, "method not found"
}
