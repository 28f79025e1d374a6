package dapp

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/dmint/internal/chain"
	"github.com/Mohsinsiddi/dmint/internal/config"
)

// BalanceSnapshot is the three balances of one address, read together.
type BalanceSnapshot struct {
	Token     string // token balance, decimal
	Deposited string // tokens held by the deposit contract for the user, decimal
	Secondary int64  // NFT balance credited by deposits
}

// BalanceReader reads a BalanceSnapshot.
type BalanceReader struct {
	token TokenReader
	vault VaultReader
	obs   Observer
}

// NewBalanceReader returns a reader over the two contracts.
func NewBalanceReader(token TokenReader, vault VaultReader, obs Observer) *BalanceReader {
	if obs == nil {
		obs = nopObserver{}
	}
	return &BalanceReader{token: token, vault: vault, obs: obs}
}

// Read issues the three queries concurrently and returns a snapshot only when
// all of them succeed.
func (r *BalanceReader) Read(ctx context.Context, owner common.Address) (snap BalanceSnapshot, err error) {
	start := time.Now()
	defer func() { r.obs.BalancesRead(err, time.Since(start)) }()

	var tokenBal, deposited, secondary *big.Int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tokenBal, err = r.token.BalanceOf(gctx, owner)
		return errors.Wrap(err, "token balanceOf")
	})
	g.Go(func() (err error) {
		deposited, err = r.vault.UserDeposits(gctx, owner)
		return errors.Wrap(err, "userDeposits")
	})
	g.Go(func() (err error) {
		secondary, err = r.vault.BalanceOf(gctx, owner)
		return errors.Wrap(err, "deposit balanceOf")
	})
	if err := g.Wait(); err != nil {
		return BalanceSnapshot{}, err
	}

	if !secondary.IsInt64() {
		return BalanceSnapshot{}, errors.Errorf("secondary balance %s overflows int64", secondary)
	}
	return BalanceSnapshot{
		Token:     chain.FormatUnits(tokenBal, config.TokenDecimals),
		Deposited: chain.FormatUnits(deposited, config.TokenDecimals),
		Secondary: secondary.Int64(),
	}, nil
}
