package rpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/dmint/internal/chain"
)

// probeTimeout bounds a single endpoint probe.
const probeTimeout = 5 * time.Second

// Probe pings one endpoint with eth_blockNumber.
func Probe(ctx context.Context, url string) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	e := Endpoint{URL: url}
	c, err := chain.Dial(ctx, url)
	if err != nil {
		e.Err = err
		return e
	}
	defer c.Close()
	e.Latency, e.BlockNumber, e.Err = c.Ping(ctx)
	return e
}

// ProbeAll probes every URL concurrently. Results keep the input order.
func ProbeAll(ctx context.Context, urls []string) []Endpoint {
	out := make([]Endpoint, len(urls))
	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			out[i] = Probe(ctx, u)
			return nil
		})
	}
	g.Wait() //nolint:errcheck
	return out
}

// Connect probes urls, picks one with algo and dials it.
// A single URL is dialed without probing.
func Connect(ctx context.Context, urls []string, algo Algorithm, log *zap.Logger) (*chain.Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(urls) == 0 {
		return nil, ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return chain.Dial(ctx, urls[0])
	}

	endpoints := ProbeAll(ctx, urls)
	for _, e := range endpoints {
		log.Debug("rpc probe",
			zap.String("url", e.URL), zap.Duration("latency", e.Latency),
			zap.Uint64("block", e.BlockNumber), zap.Error(e.Err))
	}
	best, err := Pick(endpoints, algo)
	if err != nil {
		return nil, err
	}
	log.Info("rpc selected", zap.String("url", best.URL), zap.String("algorithm", string(algo)))
	return chain.Dial(ctx, best.URL)
}
