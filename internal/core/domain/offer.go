package domain

import "github.com/shopspring/decimal"

// OfferDirection tells whether the offerer buys or sells bitcoin against
// fiat.
type OfferDirection int

const (
	OfferDirectionBuy OfferDirection = iota
	OfferDirectionSell
)

func (d OfferDirection) String() string {
	if d == OfferDirectionBuy {
		return "BUY"
	}
	return "SELL"
}

// Offer is an immutable, previously published trade advertisement. The
// protocol never mutates an offer, it only snapshots it into trades that
// reference it.
type Offer struct {
	Id                string
	Direction         OfferDirection
	Amount            uint64
	MinAmount         uint64
	Price             decimal.Decimal
	FiatCurrency      string
	BankAccountType   string
	BankAccountId     string
	AccountId         string
	MessagePubKeyHex  string
	ArbitratorFeeRate decimal.Decimal
}

// AcceptsAmount returns whether the given amount in satoshis falls within
// the offer bounds.
func (o Offer) AcceptsAmount(amount uint64) bool {
	return amount >= o.MinAmount && amount <= o.Amount
}
