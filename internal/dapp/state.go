package dapp

import "github.com/ethereum/go-ethereum/common"

// Op is a state-changing page action.
type Op string

const (
	OpNone    Op = ""
	OpMint    Op = "mint"
	OpDeposit Op = "deposit"
)

// Step is one transaction within an operation.
type Step string

const (
	StepNone    Step = ""
	StepMint    Step = "mint"
	StepApprove Step = "approve"
	StepDeposit Step = "deposit"
)

// Phase is where the running operation is in its lifecycle:
// Idle → Submitting → AwaitingConfirmation → Confirmed → Refreshing → Idle,
// or Failed → Idle from any step.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseAwaitingConfirmation
	PhaseConfirmed
	PhaseRefreshing
	PhaseFailed
)

var phaseNames = [...]string{"idle", "submitting", "awaiting confirmation", "confirmed", "refreshing", "failed"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// PendingTx is the transaction currently in flight.
type PendingTx struct {
	Hash common.Hash
	Op   Op
	Step Step
}

// State is everything the page shows. It is a value: Reduce returns a new
// State and never modifies what the old one points to.
type State struct {
	Session  *Session
	Balances *BalanceSnapshot
	Pending  *PendingTx
	Err      *Error
	Op       Op
	Step     Step
	Phase    Phase
}

// Busy reports whether an operation is running.
func (s State) Busy() bool { return s.Op != OpNone }

// Event is a state transition input.
type Event interface{ event() }

type (
	// SessionEstablished records the authorized wallet.
	SessionEstablished struct{ Session *Session }
	// BalancesLoaded replaces the snapshot.
	BalancesLoaded struct{ Snapshot BalanceSnapshot }
	// OperationStarted marks op as running.
	OperationStarted struct{ Op Op }
	// StepStarted enters Submitting for a step.
	StepStarted struct{ Step Step }
	// TxSubmitted records the in-flight hash and enters AwaitingConfirmation.
	TxSubmitted struct {
		Hash common.Hash
		Step Step
	}
	// TxConfirmed enters Confirmed.
	TxConfirmed struct{ Step Step }
	// RefreshStarted enters Refreshing.
	RefreshStarted struct{}
	// Failed sets the error slot and enters Failed.
	Failed struct{ Err *Error }
	// OperationFinished returns to Idle and clears the pending transaction.
	OperationFinished struct{ Op Op }
	// ErrorCleared empties the error slot.
	ErrorCleared struct{}
)

func (SessionEstablished) event() {}
func (BalancesLoaded) event()     {}
func (OperationStarted) event()   {}
func (StepStarted) event()        {}
func (TxSubmitted) event()        {}
func (TxConfirmed) event()        {}
func (RefreshStarted) event()     {}
func (Failed) event()             {}
func (OperationFinished) event()  {}
func (ErrorCleared) event()       {}

// Reduce applies ev to s.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case SessionEstablished:
		if s.Session == nil {
			s.Session = e.Session
		}
	case BalancesLoaded:
		// A snapshot only exists for an authorized address.
		if s.Session != nil {
			snap := e.Snapshot
			s.Balances = &snap
		}
	case OperationStarted:
		s.Op = e.Op
		s.Step = StepNone
		s.Phase = PhaseIdle
	case StepStarted:
		s.Step = e.Step
		s.Phase = PhaseSubmitting
	case TxSubmitted:
		s.Pending = &PendingTx{Hash: e.Hash, Op: s.Op, Step: e.Step}
		s.Step = e.Step
		s.Phase = PhaseAwaitingConfirmation
	case TxConfirmed:
		s.Step = e.Step
		s.Phase = PhaseConfirmed
	case RefreshStarted:
		s.Phase = PhaseRefreshing
	case Failed:
		s.Err = e.Err
		s.Phase = PhaseFailed
	case OperationFinished:
		s.Pending = nil
		s.Op = OpNone
		s.Step = StepNone
		s.Phase = PhaseIdle
	case ErrorCleared:
		s.Err = nil
		if s.Phase == PhaseFailed && s.Op == OpNone {
			s.Phase = PhaseIdle
		}
	}
	return s
}
