package dapp

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// App owns the page state. Every change goes through Reduce and is published
// on Updates, so a UI only needs to render the latest State it receives.
type App struct {
	provider Provider
	network  string
	reader   *BalanceReader
	seq      *Sequencer
	log      *zap.Logger

	mu      sync.Mutex
	state   State
	running bool
	updates chan State
}

// NewApp wires the page. provider may be nil when no wallet is configured;
// Start then reports ErrNoWalletDetected.
func NewApp(provider Provider, network string, reader *BalanceReader, seq *Sequencer, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		provider: provider,
		network:  network,
		reader:   reader,
		seq:      seq,
		log:      log,
		updates:  make(chan State, 1),
	}
}

// State returns the current state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Updates delivers new states. Slow readers only see the latest one.
func (a *App) Updates() <-chan State { return a.updates }

func (a *App) apply(ev Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Reduce(a.state, ev)
	select {
	case a.updates <- a.state:
	default:
		select {
		case <-a.updates:
		default:
		}
		a.updates <- a.state
	}
}

// Start connects the wallet once and loads the first snapshot. Later calls
// return the existing session.
func (a *App) Start(ctx context.Context) error {
	if a.State().Session != nil {
		return nil
	}
	if err := a.acquire(); err != nil {
		return err
	}
	defer a.release()

	sess, err := Connect(ctx, a.provider, a.network)
	if err != nil {
		a.log.Warn("wallet connection failed", zap.Error(err))
		if e, ok := err.(*Error); ok {
			a.apply(Failed{Err: e})
		}
		return err
	}
	a.log.Info("wallet connected",
		zap.Stringer("address", sess.Address), zap.String("chain_id", sess.ChainID.String()))
	a.apply(SessionEstablished{Session: sess})
	return a.refresh(ctx, sess)
}

// Refresh reloads the balance snapshot.
func (a *App) Refresh(ctx context.Context) error {
	sess := a.State().Session
	if sess == nil {
		return ErrNoSession
	}
	if err := a.acquire(); err != nil {
		return err
	}
	defer a.release()
	return a.refresh(ctx, sess)
}

func (a *App) refresh(ctx context.Context, sess *Session) error {
	snap, err := a.reader.Read(ctx, sess.Address)
	if err != nil {
		e := newError(KindRead, "refresh", err)
		a.apply(Failed{Err: e})
		return e
	}
	a.apply(BalancesLoaded{Snapshot: snap})
	return nil
}

// Mint runs the mint operation.
func (a *App) Mint(ctx context.Context) error {
	return a.run(func(sess *Session) error {
		return a.seq.Mint(ctx, sess, a.apply)
	})
}

// Deposit runs approve-then-deposit for amount tokens.
func (a *App) Deposit(ctx context.Context, amount string) error {
	return a.run(func(sess *Session) error {
		return a.seq.Deposit(ctx, sess, amount, a.apply)
	})
}

// ClearError empties the error slot so the user can retry.
func (a *App) ClearError() { a.apply(ErrorCleared{}) }

func (a *App) run(fn func(*Session) error) error {
	sess := a.State().Session
	if sess == nil {
		return ErrNoSession
	}
	if err := a.acquire(); err != nil {
		return err
	}
	defer a.release()
	return fn(sess)
}

// acquire claims the single operation slot.
func (a *App) acquire() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return ErrBusy
	}
	a.running = true
	return nil
}

func (a *App) release() {
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
}
