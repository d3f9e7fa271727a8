package domain

import "time"

// Trade is the durable record of one negotiated instance of an offer
// between two specific parties. It is mutated exclusively through its
// guarded transition methods, driven by protocol task completions.
type Trade struct {
	Id     string
	Offer  Offer
	Amount uint64
	Status TradeStatus

	TakeOfferFeeTxId   string
	TakerAccountId     string
	TakerBankAccountId string
	TakerPubKeyHex     string
	TakerPayoutAddress string

	Contract                 *Contract
	ContractAsJson           string
	OffererContractSignature string
	TakerContractSignature   string

	DepositTxId  string
	DepositTxHex string
	PayoutTxId   string
	PayoutTxHex  string

	FailureReason  string
	CreationTime   int64
	CompletionTime int64
}

// NewTrade returns a trade in Negotiation status for the given offer and
// amount. The trade id equals the offer id and is shared verbatim with
// the counterparty as the correlation key for every message of the
// trade.
func NewTrade(offer Offer, amount uint64) (*Trade, error) {
	if amount == 0 {
		return nil, ErrTradeNullAmount
	}
	return &Trade{
		Id:           offer.Id,
		Offer:        offer,
		Amount:       amount,
		Status:       NegotiationStatus,
		CreationTime: time.Now().Unix(),
	}, nil
}

// PublishDeposit brings the trade from Negotiation to DepositPublished
// once the escrow deposit transaction is broadcast. Re-applying the
// transition on a trade already past it is a no-op.
func (t *Trade) PublishDeposit(txId, txHex string) (bool, error) {
	if t.Status.Code >= TradeStatusCodeDepositPublished {
		return true, nil
	}
	if t.Status.Failed {
		return false, ErrTradeIsFailed
	}
	if t.Status.Code != TradeStatusCodeNegotiation {
		return false, ErrTradeMustBeNegotiation
	}
	if len(txId) == 0 {
		return false, ErrTradeNullTxId
	}

	t.DepositTxId = txId
	t.DepositTxHex = txHex
	t.Status = DepositPublishedStatus
	return true, nil
}

// PublishPayout brings the trade from DepositPublished to
// PayoutPublished once the payout transaction is broadcast.
func (t *Trade) PublishPayout(txId, txHex string) (bool, error) {
	if t.Status.Code >= TradeStatusCodePayoutPublished {
		return true, nil
	}
	if t.Status.Failed {
		return false, ErrTradeIsFailed
	}
	if t.Status.Code != TradeStatusCodeDepositPublished {
		return false, ErrTradeMustBeDepositPublished
	}
	if len(txId) == 0 {
		return false, ErrTradeNullTxId
	}

	t.PayoutTxId = txId
	t.PayoutTxHex = txHex
	t.Status = PayoutPublishedStatus
	return true, nil
}

// Complete brings the trade from PayoutPublished to Completed and
// records the settlement time.
func (t *Trade) Complete() (bool, error) {
	if t.Status.Code == TradeStatusCodeCompleted {
		return true, nil
	}
	if t.Status.Failed {
		return false, ErrTradeIsFailed
	}
	if t.Status.Code != TradeStatusCodePayoutPublished {
		return false, ErrTradeMustBePayoutPublished
	}

	t.Status = CompletedStatus
	t.CompletionTime = time.Now().Unix()
	return true, nil
}

// Fail marks the trade as failed, keeping the last status it reached.
func (t *Trade) Fail(reason string) {
	if t.Status.Failed {
		return
	}
	t.Status.Failed = true
	t.FailureReason = reason
}

// SetContract stores the mutually signed contract on the trade.
func (t *Trade) SetContract(
	contract Contract, contractAsJson, offererSig, takerSig string,
) {
	t.Contract = &contract
	t.ContractAsJson = contractAsJson
	t.OffererContractSignature = offererSig
	t.TakerContractSignature = takerSig
}

// IsNegotiation returns whether the trade is in Negotiation status.
func (t *Trade) IsNegotiation() bool {
	return t.Status.Code == TradeStatusCodeNegotiation
}

// IsDepositPublished returns whether the escrow deposit is on chain.
func (t *Trade) IsDepositPublished() bool {
	return t.Status.Code == TradeStatusCodeDepositPublished
}

// IsPayoutPublished returns whether the payout transaction is on chain.
func (t *Trade) IsPayoutPublished() bool {
	return t.Status.Code == TradeStatusCodePayoutPublished
}

// IsCompleted returns whether the trade is settled.
func (t *Trade) IsCompleted() bool {
	return t.Status.Code == TradeStatusCodeCompleted
}

// IsFailed returns whether the trade has failed.
func (t *Trade) IsFailed() bool {
	return t.Status.Failed
}
