package domain

const (
	// CollateralRatePercent is the share of the trade amount each party
	// locks into the escrow deposit on top of the traded coins.
	CollateralRatePercent = 10

	// TakeOfferFee is the flat fee in satoshis the taker pays for taking
	// an offer.
	TakeOfferFee = 10000

	// TxFee is the flat network fee in satoshis for every protocol
	// transaction. It is a protocol constant, not a local wallet policy:
	// both parties must derive byte-identical payout transactions from
	// the same amounts.
	TxFee = 1000
)

// CollateralAmount returns the collateral in satoshis for the given
// trade amount.
func CollateralAmount(amount uint64) uint64 {
	return amount * CollateralRatePercent / 100
}
