package dapp

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Session is the authorized wallet identity. It never changes once created.
type Session struct {
	Address common.Address
	ChainID *big.Int
	Network string

	provider Provider
	signer   *bind.TransactOpts
}

// TransactOpts returns a fresh copy of the signing options bound to ctx.
func (s *Session) TransactOpts(ctx context.Context) *bind.TransactOpts {
	opts := *s.signer
	opts.Context = ctx
	return &opts
}

// Connect authorizes the first wallet account and captures its network and
// signing handle. A nil provider means no wallet is available at all.
func Connect(ctx context.Context, p Provider, network string) (*Session, error) {
	const op = "connect"
	if p == nil {
		return nil, newError(KindEnvironment, op, ErrNoWalletDetected)
	}

	accounts, err := p.RequestAccounts(ctx)
	if err != nil {
		return nil, newError(KindAuthorization, op, err)
	}
	if len(accounts) == 0 {
		return nil, newError(KindAuthorization, op, ErrNoAccounts)
	}
	addr := accounts[0]

	chainID, err := p.ChainID(ctx)
	if err != nil {
		return nil, newError(KindAuthorization, op, errors.Wrap(err, "reading chain id"))
	}

	signer, err := p.TransactOpts(ctx, addr, chainID)
	if err != nil {
		return nil, newError(KindAuthorization, op, err)
	}

	return &Session{
		Address:  addr,
		ChainID:  chainID,
		Network:  network,
		provider: p,
		signer:   signer,
	}, nil
}

// NewSession builds a session from parts already authorized elsewhere.
func NewSession(addr common.Address, chainID *big.Int, network string, signer *bind.TransactOpts) *Session {
	return &Session{Address: addr, ChainID: chainID, Network: network, signer: signer}
}
