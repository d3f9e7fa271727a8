package domain

const (
	TradeStatusCodeUndefined = iota
	// TradeStatusCodeNegotiation is the status of a trade that has been
	// opened by a take-offer request and is exchanging pre-deposit
	// messages with the counterparty.
	TradeStatusCodeNegotiation
	// TradeStatusCodeDepositPublished is the status of a trade whose 2-of-2
	// escrow deposit transaction has been signed by both parties and
	// broadcast to the network.
	TradeStatusCodeDepositPublished
	// TradeStatusCodePayoutPublished is the status of a trade whose payout
	// transaction, releasing the escrowed funds, has been broadcast.
	TradeStatusCodePayoutPublished
	// TradeStatusCodeCompleted is the status of a trade both parties
	// acknowledged as settled.
	TradeStatusCodeCompleted
)

// TradeStatus represents the different statuses that a trade can assume.
// Failed is orthogonal to the code: a trade keeps the last status it
// reached before failing.
type TradeStatus struct {
	Code   int
	Failed bool
}

var (
	// NegotiationStatus represents the status of a freshly opened trade.
	NegotiationStatus = TradeStatus{Code: TradeStatusCodeNegotiation}
	// DepositPublishedStatus represents the status of a trade with the
	// escrow deposit on chain.
	DepositPublishedStatus = TradeStatus{Code: TradeStatusCodeDepositPublished}
	// PayoutPublishedStatus represents the status of a trade with the
	// payout transaction on chain.
	PayoutPublishedStatus = TradeStatus{Code: TradeStatusCodePayoutPublished}
	// CompletedStatus represents the status of a settled trade.
	CompletedStatus = TradeStatus{Code: TradeStatusCodeCompleted}
)
