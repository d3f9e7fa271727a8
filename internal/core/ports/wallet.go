package ports

import "context"

// Transaction is the result of a wallet operation that produced or
// broadcast a Bitcoin transaction.
type Transaction struct {
	TxId  string
	TxHex string
}

// PrepareDepositTxParams collects the inputs for building the unsigned
// 2-of-2 escrow deposit transaction.
type PrepareDepositTxParams struct {
	TradeId            string
	OffererPubKey      string
	TakerPubKey        string
	DepositAmount      uint64
	OffererInputAmount uint64
}

// SignDepositTxParams collects the inputs for counter-signing and
// broadcasting the deposit transaction.
type SignDepositTxParams struct {
	TradeId                 string
	PreparedDepositTxHex    string
	SignedTakerDepositTxHex string
}

// SignPayoutTxParams collects the inputs for signing and broadcasting
// the payout transaction spending the escrow.
type SignPayoutTxParams struct {
	TradeId              string
	DepositTxHex         string
	OffererSignatureR    string
	OffererSignatureS    string
	OffererPaybackAmount uint64
	TakerPaybackAmount   uint64
	OffererPayoutAddress string
	TakerPayoutAddress   string
}

// PayoutSignature is a detached ECDSA signature over the payout
// transaction, exchanged between the parties as raw R/S components.
type PayoutSignature struct {
	R string
	S string
}

// WalletService is the narrow contract the protocol engine consumes from
// the Bitcoin wallet. Every method is synchronous and fallible; callers
// run them from a single goroutine per trade so ordering is preserved.
type WalletService interface {
	// PayTakeOfferFee pays the take-offer fee and returns its txid.
	PayTakeOfferFee(ctx context.Context, tradeId string) (string, error)
	// VerifyTakeOfferFeePayment checks the fee transaction is known and
	// pays the expected fee.
	VerifyTakeOfferFeePayment(ctx context.Context, feeTxId string) error
	// PrepareDepositTx builds the unsigned escrow deposit transaction.
	PrepareDepositTx(ctx context.Context, params PrepareDepositTxParams) (string, error)
	// SignDepositTx adds the local party's inputs for the given
	// contribution and its signatures to the prepared deposit transaction
	// without broadcasting it.
	SignDepositTx(ctx context.Context, preparedTxHex string, inputAmount uint64) (string, error)
	// SignAndPublishDepositTx counter-signs the taker-signed deposit
	// transaction and broadcasts it.
	SignAndPublishDepositTx(ctx context.Context, params SignDepositTxParams) (*Transaction, error)
	// SignPayoutTx produces the local party's detached signature over the
	// payout transaction.
	SignPayoutTx(
		ctx context.Context,
		depositTxHex string, offererPayback, takerPayback uint64,
		offererPayoutAddress, takerPayoutAddress string,
	) (*PayoutSignature, error)
	// SignAndBroadcastPayoutTx assembles both signatures into the final
	// payout transaction and broadcasts it.
	SignAndBroadcastPayoutTx(ctx context.Context, params SignPayoutTxParams) (*Transaction, error)
	// WatchTxConfirmation invokes onConfirmed from a background goroutine
	// once the given transaction reaches one confirmation.
	WatchTxConfirmation(txId string, onConfirmed func(confirmations int))
}
