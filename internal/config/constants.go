package config

import "time"

// Token amounts are 18-decimal fixed-point integers on chain.
const TokenDecimals = 18

// Page actions.
const (
	MintAmount           = "100000"         // tokens minted per mint action
	MintGasLimit         = uint64(3_000_000) // explicit gas ceiling for mint
	DefaultDepositAmount = "1000"           // tokens approved then deposited
)

// MinDeployBalance is the native balance the publisher requires before deploying.
const MinDeployBalance = "0.1"

// Timeouts used by cmd.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark / selection
	ReadTimeout      = 30 * time.Second // one-shot balance reads
	TxDeployTimeout  = 5 * time.Minute  // contract deployment confirmation wait
)
