package model

import "errors"

var (
	// ErrAssetNotFound means the price oracle does not know the symbol
	ErrAssetNotFound = errors.New("asset not found")
	// ErrInsufficientBalance means a buy costs more than the current balance
	ErrInsufficientBalance = errors.New("not enough balance")
	// ErrInsufficientHoldings means there is no lot to sell from or the lot is too small
	ErrInsufficientHoldings = errors.New("not enough holdings")
	// ErrInvalidArgument means a malformed amount, asset or user id
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPriceUnavailable means the price oracle failed or timed out
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrStoreFailure means the ledger store failed to read or write
	ErrStoreFailure = errors.New("store failure")
)

// Reason codes sent to callers
const (
	ReasonAssetNotFound        = "ASSET_NOT_FOUND"
	ReasonInsufficientBalance  = "INSUFFICIENT_BALANCE"
	ReasonInsufficientHoldings = "INSUFFICIENT_HOLDINGS"
	ReasonInvalidArgument      = "INVALID_ARGUMENT"
	ReasonPriceUnavailable     = "PRICE_UNAVAILABLE"
	ReasonStoreFailure         = "STORE_FAILURE"
	ReasonOK                   = "OK"
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrAssetNotFound, ReasonAssetNotFound},
	{ErrInsufficientBalance, ReasonInsufficientBalance},
	{ErrInsufficientHoldings, ReasonInsufficientHoldings},
	{ErrInvalidArgument, ReasonInvalidArgument},
	{ErrPriceUnavailable, ReasonPriceUnavailable},
	{ErrStoreFailure, ReasonStoreFailure},
}

// Reason classifies err. Unknown errors are reported as store failures
func Reason(err error) string {
	if err == nil {
		return ReasonOK
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ReasonStoreFailure
}

// IsClassified reports whether err already carries one of the ledger errors
func IsClassified(err error) bool {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return true
		}
	}
	return false
}
