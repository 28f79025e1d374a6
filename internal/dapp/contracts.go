package dapp

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Tx is a submitted transaction.
type Tx interface {
	Hash() common.Hash
	// Wait blocks until the transaction is included, returning an error when
	// it reverted or ctx ended first.
	Wait(ctx context.Context) error
}

// TokenReader reads the token contract.
type TokenReader interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// VaultReader reads the deposit contract.
type VaultReader interface {
	UserDeposits(ctx context.Context, owner common.Address) (*big.Int, error)
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// Token is the mintable ERC20-like token.
type Token interface {
	TokenReader
	Mint(opts *bind.TransactOpts, to common.Address, amount *big.Int) (Tx, error)
	Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (Tx, error)
}

// Vault is the DepositAndMint contract.
type Vault interface {
	VaultReader
	Address() common.Address
	Deposit(opts *bind.TransactOpts, amount *big.Int) (Tx, error)
}

// Provider is a wallet able to authorize accounts and sign for them.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	TransactOpts(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error)
}
