package dapp_test

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/Mohsinsiddi/dmint/internal/dapp"
)

var (
	userAddr  = common.HexToAddress("0xABC")
	vaultAddr = common.HexToAddress("0xD0D0")
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// ledger is an in-memory stand-in for the Token and DepositAndMint contracts.
// State changes happen when a transaction is confirmed, not when it is sent.
type ledger struct {
	mu         sync.Mutex
	balances   map[common.Address]*big.Int
	allowances map[common.Address]*big.Int // owner -> allowance for the vault
	deposits   map[common.Address]*big.Int
	nfts       map[common.Address]int64
	txCount    uint64

	// scripted failures
	mintErr, approveErr, depositErr            error
	mintWaitErr, approveWaitErr, depositWaitErr error
	readErr                                     error
	hold                                        chan struct{} // when set, Wait blocks until closed

	mintCalls, approveCalls, depositCalls atomic.Int32
	lastGasLimit                          uint64
}

func newLedger() *ledger {
	return &ledger{
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]*big.Int),
		deposits:   make(map[common.Address]*big.Int),
		nfts:       make(map[common.Address]int64),
	}
}

func (l *ledger) get(m map[common.Address]*big.Int, a common.Address) *big.Int {
	if v, ok := m[a]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

func (l *ledger) newTx(waitErr error, apply func() error) *fakeTx {
	l.mu.Lock()
	l.txCount++
	h := common.BigToHash(new(big.Int).SetUint64(l.txCount))
	l.mu.Unlock()
	return &fakeTx{hash: h, waitErr: waitErr, apply: apply, hold: l.hold}
}

type fakeTx struct {
	hash    common.Hash
	waitErr error
	apply   func() error
	hold    chan struct{}
}

func (t *fakeTx) Hash() common.Hash { return t.hash }

func (t *fakeTx) Wait(ctx context.Context) error {
	if t.hold != nil {
		select {
		case <-t.hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if t.waitErr != nil {
		return t.waitErr
	}
	return t.apply()
}

// --- Token ---

type fakeToken struct{ l *ledger }

func (t fakeToken) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	if t.l.readErr != nil {
		return nil, t.l.readErr
	}
	return t.l.get(t.l.balances, owner), nil
}

func (t fakeToken) Mint(opts *bind.TransactOpts, to common.Address, amount *big.Int) (dapp.Tx, error) {
	t.l.mintCalls.Add(1)
	t.l.mu.Lock()
	t.l.lastGasLimit = opts.GasLimit
	t.l.mu.Unlock()
	if t.l.mintErr != nil {
		return nil, t.l.mintErr
	}
	return t.l.newTx(t.l.mintWaitErr, func() error {
		t.l.mu.Lock()
		defer t.l.mu.Unlock()
		t.l.balances[to] = new(big.Int).Add(t.l.get(t.l.balances, to), amount)
		return nil
	}), nil
}

func (t fakeToken) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (dapp.Tx, error) {
	t.l.approveCalls.Add(1)
	if t.l.approveErr != nil {
		return nil, t.l.approveErr
	}
	owner := opts.From
	return t.l.newTx(t.l.approveWaitErr, func() error {
		t.l.mu.Lock()
		defer t.l.mu.Unlock()
		if spender != vaultAddr {
			return errors.New("unexpected spender")
		}
		t.l.allowances[owner] = new(big.Int).Set(amount)
		return nil
	}), nil
}

// --- DepositAndMint ---

type fakeVault struct{ l *ledger }

func (v fakeVault) Address() common.Address { return vaultAddr }

func (v fakeVault) UserDeposits(_ context.Context, owner common.Address) (*big.Int, error) {
	v.l.mu.Lock()
	defer v.l.mu.Unlock()
	if v.l.readErr != nil {
		return nil, v.l.readErr
	}
	return v.l.get(v.l.deposits, owner), nil
}

func (v fakeVault) BalanceOf(_ context.Context, owner common.Address) (*big.Int, error) {
	v.l.mu.Lock()
	defer v.l.mu.Unlock()
	if v.l.readErr != nil {
		return nil, v.l.readErr
	}
	return big.NewInt(v.l.nfts[owner]), nil
}

func (v fakeVault) Deposit(opts *bind.TransactOpts, amount *big.Int) (dapp.Tx, error) {
	v.l.depositCalls.Add(1)
	if v.l.depositErr != nil {
		return nil, v.l.depositErr
	}
	owner := opts.From
	return v.l.newTx(v.l.depositWaitErr, func() error {
		v.l.mu.Lock()
		defer v.l.mu.Unlock()
		if v.l.get(v.l.allowances, owner).Cmp(amount) < 0 {
			return errors.New("ERC20: insufficient allowance")
		}
		bal := v.l.get(v.l.balances, owner)
		if bal.Cmp(amount) < 0 {
			return errors.New("ERC20: transfer amount exceeds balance")
		}
		v.l.balances[owner] = bal.Sub(bal, amount)
		v.l.allowances[owner] = new(big.Int).Sub(v.l.get(v.l.allowances, owner), amount)
		v.l.deposits[owner] = new(big.Int).Add(v.l.get(v.l.deposits, owner), amount)
		v.l.nfts[owner]++
		return nil
	}), nil
}

// --- wallet ---

type fakeProvider struct {
	accounts []common.Address
	err      error
	chainID  int64
}

func (p *fakeProvider) RequestAccounts(context.Context) ([]common.Address, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.accounts, nil
}

func (p *fakeProvider) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(p.chainID), nil
}

func (p *fakeProvider) TransactOpts(_ context.Context, account common.Address, _ *big.Int) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{From: account}, nil
}

func newProvider() *fakeProvider {
	return &fakeProvider{accounts: []common.Address{userAddr}, chainID: 31337}
}

// --- observer ---

type recordingObserver struct {
	mu        sync.Mutex
	submitted []dapp.Step
	finished  []dapp.Op
	failures  int
	reads     int
}

func (o *recordingObserver) TxSubmitted(_ dapp.Op, step dapp.Step) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.submitted = append(o.submitted, step)
}

func (o *recordingObserver) OperationFinished(op dapp.Op, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, op)
	if err != nil {
		o.failures++
	}
}

func (o *recordingObserver) BalancesRead(error, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reads++
}
