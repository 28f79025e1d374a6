package rpc

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest  Algorithm = "fastest"
	AlgorithmFailover Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
)

// ParseAlgorithm maps a config value to an Algorithm, defaulting to fastest.
func ParseAlgorithm(s string) Algorithm {
	if Algorithm(s) == AlgorithmFailover {
		return AlgorithmFailover
	}
	return AlgorithmFastest
}

// Endpoint is one probed RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Healthy reports whether the probe succeeded.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Rank orders healthy endpoints by preference and drops the rest.
// Fastest: nodes stale by more than a few blocks are dropped, then the
// lowest latency wins. Failover: configured order is kept.
func Rank(endpoints []Endpoint, algo Algorithm) []Endpoint {
	var best uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > best {
			best = e.BlockNumber
		}
	}

	out := make([]Endpoint, 0, len(endpoints))
	for _, e := range endpoints {
		if !e.Healthy() {
			continue
		}
		if algo == AlgorithmFastest && best-e.BlockNumber > staleBlockThreshold {
			continue
		}
		out = append(out, e)
	}
	if algo == AlgorithmFastest {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Latency < out[j].Latency })
	}
	return out
}

// Pick returns the preferred endpoint.
func Pick(endpoints []Endpoint, algo Algorithm) (Endpoint, error) {
	ranked := Rank(endpoints, algo)
	if len(ranked) == 0 {
		return Endpoint{}, ErrNoHealthyRPC
	}
	return ranked[0], nil
}
