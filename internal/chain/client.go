package chain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// Client is a JSON-RPC connection to one EVM endpoint. It embeds the
// go-ethereum client so it satisfies the bind backends directly.
type Client struct {
	*ethclient.Client
	url string
}

// Dial connects to an HTTP or WebSocket RPC endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", url)
	}
	return &Client{Client: ethclient.NewClient(rc), url: url}, nil
}

// URL returns the endpoint this client is connected to.
func (c *Client) URL() string { return c.url }

// Ping measures round-trip latency with eth_blockNumber.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	latency = time.Since(start)
	if err != nil {
		return latency, 0, errors.Wrap(err, "eth_blockNumber")
	}
	return latency, blockNum, nil
}
