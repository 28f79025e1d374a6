package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Provider errors.
var (
	ErrNoSigningWallet = errors.New("no signing wallet configured")
	ErrRejected        = errors.New("user rejected the connection request")
	ErrLocked          = errors.New("wallet is locked: request accounts first")
	ErrNotAuthorized   = errors.New("not authorized to sign for this account")
)

// ChainIDReader reports the chain a node serves. *chain.Client satisfies it.
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// KeychainProvider is a wallet provider backed by a keychain-held key.
// The key stays locked until RequestAccounts is authorized.
type KeychainProvider struct {
	wallet  *Wallet
	ks      KeystoreBackend
	node    ChainIDReader
	confirm ConfirmFunc

	mu     sync.Mutex
	signer *Signer
}

// Detect picks the signing wallet to connect: the named one, else the
// default. It fails with ErrNoSigningWallet when none can sign.
func Detect(m *Manager, name string) (*Wallet, error) {
	var w *Wallet
	if name != "" {
		got, err := m.Get(name)
		if err != nil {
			return nil, err
		}
		w = got
	} else {
		w = m.Default()
	}
	if w == nil || !w.CanSign() {
		return nil, ErrNoSigningWallet
	}
	return w, nil
}

// NewKeychainProvider returns a provider for w. A nil confirm authorizes
// without asking.
func NewKeychainProvider(w *Wallet, ks KeystoreBackend, node ChainIDReader, confirm ConfirmFunc) *KeychainProvider {
	return &KeychainProvider{wallet: w, ks: ks, node: node, confirm: confirm}
}

// RequestAccounts asks the user to connect, then unlocks the key.
func (p *KeychainProvider) RequestAccounts(_ context.Context) ([]common.Address, error) {
	if p.confirm != nil && !p.confirm(fmt.Sprintf("Connect wallet %q (%s)?", p.wallet.Name, p.wallet.Address)) {
		return nil, ErrRejected
	}
	s, err := Unlock(p.wallet, p.ks)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.signer = s
	p.mu.Unlock()
	return []common.Address{s.Address()}, nil
}

// ChainID reports the connected node's chain.
func (p *KeychainProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.node.ChainID(ctx)
}

// TransactOpts returns signing options for an authorized account.
func (p *KeychainProvider) TransactOpts(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	p.mu.Lock()
	s := p.signer
	p.mu.Unlock()
	if s == nil {
		return nil, ErrLocked
	}
	if account != s.Address() {
		return nil, errors.Wrapf(ErrNotAuthorized, "account %s", account.Hex())
	}
	return s.TransactOpts(ctx, chainID), nil
}
