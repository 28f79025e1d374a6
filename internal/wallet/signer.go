package wallet

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Signer holds an unlocked private key.
type Signer struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// Unlock loads the key of a signing wallet from the keystore and checks that
// it matches the recorded address.
func Unlock(w *Wallet, ks KeystoreBackend) (*Signer, error) {
	if !w.CanSign() {
		return nil, errors.Wrap(ErrWatchOnly, w.Name)
	}
	hexKey, err := ks.Retrieve(w.KeyRef)
	if err != nil {
		return nil, errors.Wrap(err, "retrieving key")
	}
	s, err := NewSigner(hexKey)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(w.Address) || s.addr != common.HexToAddress(w.Address) {
		return nil, errors.Errorf("stored key for %q does not match address %s", w.Name, w.Address)
	}
	return s, nil
}

// NewSigner parses a hex private key.
func NewSigner(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKey, err.Error())
	}
	return &Signer{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Address returns the signer's address.
func (s *Signer) Address() common.Address { return s.addr }

// SignTx signs tx for chainID with the latest signer the chain supports.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, errors.Wrap(err, "signing transaction")
	}
	return signed, nil
}

// TransactOpts returns bind options that sign with this key on chainID.
func (s *Signer) TransactOpts(ctx context.Context, chainID *big.Int) *bind.TransactOpts {
	return &bind.TransactOpts{
		From:    s.addr,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != s.addr {
				return nil, ErrNotAuthorized
			}
			return s.SignTx(tx, chainID)
		},
	}
}
