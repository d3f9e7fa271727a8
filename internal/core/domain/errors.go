package domain

import "errors"

var (
	// ErrTradeMustBeNegotiation is thrown when trying to publish the deposit
	// of a trade that already left the negotiation phase.
	ErrTradeMustBeNegotiation = errors.New(
		"trade must be in negotiation status for publishing the deposit transaction",
	)
	// ErrTradeMustBeDepositPublished is thrown when trying to publish the
	// payout of a trade whose deposit is not on chain yet.
	ErrTradeMustBeDepositPublished = errors.New(
		"trade must be in deposit published status for publishing the payout transaction",
	)
	// ErrTradeMustBePayoutPublished is thrown when trying to complete a
	// trade whose payout is not on chain yet.
	ErrTradeMustBePayoutPublished = errors.New(
		"trade must be in payout published status for being completed",
	)
	// ErrTradeIsFailed is thrown when trying to advance a failed trade.
	ErrTradeIsFailed = errors.New("trade is in failed state and cannot advance")
	// ErrTradeNullTxId ...
	ErrTradeNullTxId = errors.New("transaction id must not be null")
	// ErrTradeNullAmount ...
	ErrTradeNullAmount = errors.New("trade amount must be strictly positive")
	// ErrTradeNotFound ...
	ErrTradeNotFound = errors.New("trade not found")
	// ErrContractSignatureMismatch is thrown when a contract signature does
	// not verify against the counterparty's public key.
	ErrContractSignatureMismatch = errors.New(
		"contract signature does not match counterparty public key",
	)
)
