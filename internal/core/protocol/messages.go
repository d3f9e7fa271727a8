package protocol

// MessageKind is the closed tag over the trade message vocabulary.
// Dispatch happens by matching on the kind, never by open-ended type
// inspection.
type MessageKind int

const (
	MessageKindUnknown MessageKind = iota
	MessageKindTakeOfferRequest
	MessageKindRespondToTakeOffer
	MessageKindTakeOfferFeePaid
	MessageKindRequestDepositPayment
	MessageKindRequestPublishDepositTx
	MessageKindDepositTxPublished
	MessageKindBankTransferInitiated
	MessageKindPayoutPublished
)

func (k MessageKind) String() string {
	switch k {
	case MessageKindTakeOfferRequest:
		return "TakeOfferRequest"
	case MessageKindRespondToTakeOffer:
		return "RespondToTakeOffer"
	case MessageKindTakeOfferFeePaid:
		return "TakeOfferFeePaid"
	case MessageKindRequestDepositPayment:
		return "RequestDepositPayment"
	case MessageKindRequestPublishDepositTx:
		return "RequestPublishDepositTx"
	case MessageKindDepositTxPublished:
		return "DepositTxPublished"
	case MessageKindBankTransferInitiated:
		return "BankTransferInitiated"
	case MessageKindPayoutPublished:
		return "PayoutPublished"
	default:
		return "Unknown"
	}
}

// TradeMessage is the wire-level vocabulary exchanged between offerer
// and taker. Every variant carries the trade id as correlation key.
type TradeMessage interface {
	Kind() MessageKind
	GetTradeId() string
}

// TakeOfferRequest opens a trade: the taker asks to take the offer.
type TakeOfferRequest struct {
	TradeId string `json:"tradeId"`
	OfferId string `json:"offerId"`
	Amount  uint64 `json:"amount"`
}

func (m *TakeOfferRequest) Kind() MessageKind  { return MessageKindTakeOfferRequest }
func (m *TakeOfferRequest) GetTradeId() string { return m.TradeId }

// RespondToTakeOffer is the offerer's accept/reject reply.
type RespondToTakeOffer struct {
	TradeId  string `json:"tradeId"`
	Accepted bool   `json:"accepted"`
}

func (m *RespondToTakeOffer) Kind() MessageKind  { return MessageKindRespondToTakeOffer }
func (m *RespondToTakeOffer) GetTradeId() string { return m.TradeId }

// TakeOfferFeePaid notifies the offerer that the taker paid the
// take-offer fee.
type TakeOfferFeePaid struct {
	TradeId     string `json:"tradeId"`
	FeeTxId     string `json:"feeTxId"`
	Amount      uint64 `json:"amount"`
	TakerPubKey string `json:"takerPubKey"`
}

func (m *TakeOfferFeePaid) Kind() MessageKind  { return MessageKindTakeOfferFeePaid }
func (m *TakeOfferFeePaid) GetTradeId() string { return m.TradeId }

// RequestDepositPayment asks the taker to add its inputs and signature
// to the prepared escrow deposit transaction.
type RequestDepositPayment struct {
	TradeId              string `json:"tradeId"`
	PreparedDepositTxHex string `json:"preparedDepositTxHex"`
	OffererPubKey        string `json:"offererPubKey"`
	OffererAccountId     string `json:"offererAccountId"`
	OffererBankAccountId string `json:"offererBankAccountId"`
}

func (m *RequestDepositPayment) Kind() MessageKind  { return MessageKindRequestDepositPayment }
func (m *RequestDepositPayment) GetTradeId() string { return m.TradeId }

// RequestPublishDepositTx carries the taker-signed deposit transaction
// and the taker's contract signature back to the offerer.
type RequestPublishDepositTx struct {
	TradeId                 string `json:"tradeId"`
	TakerAccountId          string `json:"takerAccountId"`
	TakerBankAccountId      string `json:"takerBankAccountId"`
	TakerPubKey             string `json:"takerPubKey"`
	TakerPayoutAddress      string `json:"takerPayoutAddress"`
	TakerContractSignature  string `json:"takerContractSignature"`
	SignedTakerDepositTxHex string `json:"signedTakerDepositTxHex"`
}

func (m *RequestPublishDepositTx) Kind() MessageKind  { return MessageKindRequestPublishDepositTx }
func (m *RequestPublishDepositTx) GetTradeId() string { return m.TradeId }

// DepositTxPublished notifies the taker that the escrow deposit
// transaction hit the network.
type DepositTxPublished struct {
	TradeId     string `json:"tradeId"`
	DepositTxId string `json:"depositTxId"`
}

func (m *DepositTxPublished) Kind() MessageKind  { return MessageKindDepositTxPublished }
func (m *DepositTxPublished) GetTradeId() string { return m.TradeId }

// BankTransferInitiated notifies the taker that the offerer started the
// fiat transfer, and carries everything the taker needs to assemble and
// broadcast the payout transaction.
type BankTransferInitiated struct {
	TradeId              string `json:"tradeId"`
	DepositTxHex         string `json:"depositTxHex"`
	OffererSignatureR    string `json:"offererSignatureR"`
	OffererSignatureS    string `json:"offererSignatureS"`
	OffererPaybackAmount uint64 `json:"offererPaybackAmount"`
	TakerPaybackAmount   uint64 `json:"takerPaybackAmount"`
	OffererPayoutAddress string `json:"offererPayoutAddress"`
}

func (m *BankTransferInitiated) Kind() MessageKind  { return MessageKindBankTransferInitiated }
func (m *BankTransferInitiated) GetTradeId() string { return m.TradeId }

// PayoutPublished notifies the offerer that the payout transaction hit
// the network.
type PayoutPublished struct {
	TradeId    string `json:"tradeId"`
	PayoutTxId string `json:"payoutTxId"`
}

func (m *PayoutPublished) Kind() MessageKind  { return MessageKindPayoutPublished }
func (m *PayoutPublished) GetTradeId() string { return m.TradeId }
