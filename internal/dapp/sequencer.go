package dapp

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/dmint/internal/chain"
	"github.com/Mohsinsiddi/dmint/internal/config"
)

// Sink receives the events of a running operation in order.
type Sink func(Event)

// Sequencer runs the state-changing operations. Each operation walks the
// phase machine once per transaction and always ends with OperationFinished.
type Sequencer struct {
	token          Token
	vault          Vault
	reader         *BalanceReader
	log            *zap.Logger
	obs            Observer
	confirmTimeout time.Duration
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) SequencerOption {
	return func(s *Sequencer) { s.log = l }
}

// WithObserver sets the telemetry hook.
func WithObserver(o Observer) SequencerOption {
	return func(s *Sequencer) { s.obs = o }
}

// WithConfirmTimeout bounds each confirmation wait. Zero waits forever.
func WithConfirmTimeout(d time.Duration) SequencerOption {
	return func(s *Sequencer) { s.confirmTimeout = d }
}

// NewSequencer returns a sequencer over the two contracts.
func NewSequencer(token Token, vault Vault, reader *BalanceReader, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		token:  token,
		vault:  vault,
		reader: reader,
		log:    zap.NewNop(),
		obs:    nopObserver{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Mint mints the fixed mint amount to the session address, then refreshes
// the balances.
func (q *Sequencer) Mint(ctx context.Context, sess *Session, emit Sink) (err error) {
	if sess == nil {
		return ErrNoSession
	}
	amount := MintAmount()

	o := q.begin(OpMint, emit)
	defer func() { o.finish(err) }()

	if err = o.transact(ctx, sess, StepMint, config.MintGasLimit, func(opts *bind.TransactOpts) (Tx, error) {
		return q.token.Mint(opts, sess.Address, amount)
	}); err != nil {
		return err
	}
	return o.refresh(ctx, sess)
}

// Deposit approves the deposit contract for amount tokens, deposits them once
// the approval is confirmed, then refreshes the balances. An empty amount
// uses the default deposit amount.
func (q *Sequencer) Deposit(ctx context.Context, sess *Session, amount string, emit Sink) (err error) {
	if sess == nil {
		return ErrNoSession
	}
	if amount == "" {
		amount = config.DefaultDepositAmount
	}

	o := q.begin(OpDeposit, emit)
	defer func() { o.finish(err) }()

	wei, perr := chain.ParseUnits(amount, config.TokenDecimals)
	if perr != nil {
		return o.fail(KindSubmission, perr)
	}

	q.log.Info("approving tokens", zap.String("amount", amount), zap.Stringer("spender", q.vault.Address()))
	if err = o.transact(ctx, sess, StepApprove, 0, func(opts *bind.TransactOpts) (Tx, error) {
		return q.token.Approve(opts, q.vault.Address(), wei)
	}); err != nil {
		return err
	}
	q.log.Info("tokens approved")

	q.log.Info("depositing tokens", zap.String("amount", amount))
	if err = o.transact(ctx, sess, StepDeposit, 0, func(opts *bind.TransactOpts) (Tx, error) {
		return q.vault.Deposit(opts, wei)
	}); err != nil {
		return err
	}
	return o.refresh(ctx, sess)
}

// operation is one run of Mint or Deposit.
type operation struct {
	q     *Sequencer
	op    Op
	emit  Sink
	start time.Time
}

func (q *Sequencer) begin(op Op, emit Sink) *operation {
	if emit == nil {
		emit = func(Event) {}
	}
	emit(OperationStarted{Op: op})
	return &operation{q: q, op: op, emit: emit, start: time.Now()}
}

// finish runs on every exit path.
func (o *operation) finish(err error) {
	o.emit(OperationFinished{Op: o.op})
	o.q.obs.OperationFinished(o.op, err, time.Since(o.start))
}

func (o *operation) fail(kind ErrorKind, err error) *Error {
	e := newError(kind, string(o.op), err)
	o.q.log.Warn("operation failed",
		zap.String("op", string(o.op)), zap.Stringer("kind", kind), zap.Error(err))
	o.emit(Failed{Err: e})
	return e
}

// transact submits one transaction and waits for it to be confirmed.
func (o *operation) transact(ctx context.Context, sess *Session, step Step, gasLimit uint64, send func(*bind.TransactOpts) (Tx, error)) error {
	o.emit(StepStarted{Step: step})

	opts := sess.TransactOpts(ctx)
	opts.GasLimit = gasLimit
	tx, err := send(opts)
	if err != nil {
		return o.fail(KindSubmission, err)
	}
	o.emit(TxSubmitted{Hash: tx.Hash(), Step: step})
	o.q.obs.TxSubmitted(o.op, step)
	o.q.log.Info("transaction sent", zap.String("step", string(step)), zap.Stringer("hash", tx.Hash()))

	wctx := ctx
	if o.q.confirmTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, o.q.confirmTimeout)
		defer cancel()
	}
	if err := tx.Wait(wctx); err != nil {
		return o.fail(KindConfirmation, err)
	}
	o.emit(TxConfirmed{Step: step})
	return nil
}

func (o *operation) refresh(ctx context.Context, sess *Session) error {
	o.emit(RefreshStarted{})
	snap, err := o.q.reader.Read(ctx, sess.Address)
	if err != nil {
		return o.fail(KindRead, err)
	}
	o.emit(BalancesLoaded{Snapshot: snap})
	return nil
}

// MintAmount is the fixed-point amount minted per Mint.
func MintAmount() *big.Int {
	v, _ := chain.ParseUnits(config.MintAmount, config.TokenDecimals)
	return v
}
