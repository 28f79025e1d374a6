package dapp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors.
var (
	ErrNoWalletDetected = errors.New("no wallet detected: add a signing wallet with `dmint wallet import`")
	ErrNoAccounts       = errors.New("wallet returned no accounts")
	ErrNoSession        = errors.New("no wallet session")
	ErrBusy             = errors.New("another transaction is in flight")
)

// ErrorKind classifies a failure so callers can react to it without parsing
// the message.
type ErrorKind int

const (
	KindEnvironment   ErrorKind = iota + 1 // no wallet; needs action outside the app
	KindAuthorization                      // account access rejected
	KindRead                               // a balance query failed
	KindSubmission                         // a state-changing call was rejected before broadcast
	KindConfirmation                       // a submitted transaction failed or reverted
)

func (k ErrorKind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindAuthorization:
		return "authorization"
	case KindRead:
		return "read"
	case KindSubmission:
		return "submission"
	case KindConfirmation:
		return "confirmation"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the single user-visible error slot of the page.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the underlying failure message, verbatim.
func (e *Error) Message() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return errors.Cause(e.Err).Error()
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
