package dapp

import "time"

// Observer receives operation telemetry.
type Observer interface {
	TxSubmitted(op Op, step Step)
	OperationFinished(op Op, err error, took time.Duration)
	BalancesRead(err error, took time.Duration)
}

type nopObserver struct{}

func (nopObserver) TxSubmitted(Op, Step)                      {}
func (nopObserver) OperationFinished(Op, error, time.Duration) {}
func (nopObserver) BalancesRead(error, time.Duration)          {}
