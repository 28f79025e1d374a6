package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/Mohsinsiddi/dmint/internal/chain"
	"github.com/Mohsinsiddi/dmint/internal/dapp"
)

// Backend is everything the bindings need from a node connection.
// *chain.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Tx is a submitted transaction that can be waited on.
type Tx struct {
	*types.Transaction
	backend bind.DeployBackend
}

// NewTx wraps tx for waiting through backend.
func NewTx(tx *types.Transaction, backend bind.DeployBackend) *Tx {
	return &Tx{Transaction: tx, backend: backend}
}

// Wait blocks until the transaction is mined and fails if it reverted.
func (t *Tx) Wait(ctx context.Context) error {
	_, err := chain.WaitMined(ctx, t.backend, t.Transaction)
	return err
}

// bound is a contract at a known address with its ABI.
type bound struct {
	address common.Address
	c       *bind.BoundContract
	backend Backend
}

func newBound(addr common.Address, parsed abi.ABI, backend Backend) bound {
	return bound{
		address: addr,
		c:       bind.NewBoundContract(addr, parsed, backend, backend, backend),
		backend: backend,
	}
}

func (b bound) callUint(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := b.c.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, errors.Wrap(err, method)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("%s: empty result", method)
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return v, nil
}

func (b bound) transact(opts *bind.TransactOpts, method string, args ...interface{}) (dapp.Tx, error) {
	tx, err := b.c.Transact(opts, method, args...)
	if err != nil {
		return nil, err
	}
	return NewTx(tx, b.backend), nil
}

// TokenContract binds the Token contract.
type TokenContract struct{ bound }

// NewToken binds the token at addr using the artifact's ABI.
func NewToken(addr common.Address, a *Artifact, backend Backend) *TokenContract {
	return &TokenContract{newBound(addr, a.ABI, backend)}
}

// Address returns the contract address.
func (t *TokenContract) Address() common.Address { return t.address }

// BalanceOf returns the token balance of owner.
func (t *TokenContract) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.callUint(ctx, "balanceOf", owner)
}

// Mint sends mint(to, amount).
func (t *TokenContract) Mint(opts *bind.TransactOpts, to common.Address, amount *big.Int) (dapp.Tx, error) {
	return t.transact(opts, "mint", to, amount)
}

// Approve sends approve(spender, amount).
func (t *TokenContract) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (dapp.Tx, error) {
	return t.transact(opts, "approve", spender, amount)
}

// VaultContract binds the DepositAndMint contract.
type VaultContract struct{ bound }

// NewVault binds the deposit contract at addr using the artifact's ABI.
func NewVault(addr common.Address, a *Artifact, backend Backend) *VaultContract {
	return &VaultContract{newBound(addr, a.ABI, backend)}
}

// Address returns the contract address.
func (v *VaultContract) Address() common.Address { return v.address }

// UserDeposits returns the tokens deposited by owner.
func (v *VaultContract) UserDeposits(ctx context.Context, owner common.Address) (*big.Int, error) {
	return v.callUint(ctx, "userDeposits", owner)
}

// BalanceOf returns the NFT balance of owner.
func (v *VaultContract) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return v.callUint(ctx, "balanceOf", owner)
}

// Deposit sends deposit(amount).
func (v *VaultContract) Deposit(opts *bind.TransactOpts, amount *big.Int) (dapp.Tx, error) {
	return v.transact(opts, "deposit", amount)
}

// Bind returns both contracts of a deployment.
func (d *Deployment) Bind(backend Backend) (*TokenContract, *VaultContract, error) {
	tokenAddr, err := d.Addresses.Address(TokenName)
	if err != nil {
		return nil, nil, err
	}
	vaultAddr, err := d.Addresses.Address(VaultName)
	if err != nil {
		return nil, nil, err
	}
	return NewToken(tokenAddr, d.Token, backend), NewVault(vaultAddr, d.Vault, backend), nil
}

var (
	_ dapp.Token = (*TokenContract)(nil)
	_ dapp.Vault = (*VaultContract)(nil)
)
