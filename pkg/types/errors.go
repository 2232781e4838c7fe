package types

import (
	"fmt"
	"math/big"
)

// InvalidParamError is returned for client-side validation failures: bad
// prices, amounts, pagination bounds, or values that do not fit in uint256.
type InvalidParamError struct {
	Message string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("invalid parameter: %s", e.Message)
}

// NewInvalidParam builds an InvalidParamError with a formatted message.
func NewInvalidParam(format string, args ...interface{}) *InvalidParamError {
	return &InvalidParamError{Message: fmt.Sprintf(format, args...)}
}

// APIError is returned when the exchange API envelope indicates failure
// (non-zero errno) or is malformed (missing result).
type APIError struct {
	Errno   int
	Message string
}

func (e *APIError) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("api error %d: %s", e.Errno, e.Message)
	}

	return fmt.Sprintf("api error: %s", e.Message)
}

// InsufficientGasBalanceError is returned when the gas preflight check
// fails. Required and Available are in wei.
type InsufficientGasBalanceError struct {
	Signer    string
	Required  *big.Int
	Available *big.Int
}

func (e *InsufficientGasBalanceError) Error() string {
	return fmt.Sprintf("insufficient gas balance: signer %s has %s wei, needs %s wei",
		e.Signer, e.Available.String(), e.Required.String())
}

// BalanceNotEnoughError is returned when the collateral balance is below
// the requested amount before a split.
type BalanceNotEnoughError struct {
	Token     string
	Required  *big.Int
	Available *big.Int
}

func (e *BalanceNotEnoughError) Error() string {
	return fmt.Sprintf("balance not enough: token %s has %s, needs %s",
		e.Token, e.Available.String(), e.Required.String())
}

// TxFailedError is returned when an on-chain receipt reports a non-success
// status. The failure is fatal for the call and never retried.
type TxFailedError struct {
	TxHash string
}

func (e *TxFailedError) Error() string {
	return fmt.Sprintf("transaction failed: %s", e.TxHash)
}
