package protocol

import (
	"github.com/escrow-network/escrowd/internal/core/domain"
	"github.com/escrow-network/escrowd/internal/core/ports"
)

// Context is the shared mutable state of one trade, passed to every task
// of every sequence run for that trade. It is exclusively owned by the
// currently running sequence; the per-trade dispatch queue guarantees no
// two sequences touch it concurrently.
//
// Transient fields are populated by one task and consumed by a later
// one. They are write-once per protocol round: the task that first reads
// a value off an inbound message validates it before any later task
// trusts it.
type Context struct {
	Trade *domain.Trade
	Offer domain.Offer

	Message TradeMessage
	Peer    ports.Peer

	Wallet    ports.WalletService
	Messenger ports.MessageService
	Signer    ports.SignatureService
	Trades    domain.TradeRepository

	// Local party identity.
	AccountId        string
	BankAccountId    string
	AccountKeyHex    string
	MessagePubKeyHex string
	PayoutAddress    string

	// Transient fields, replaced round by round.
	OffererPubKey           string
	OffererAccountId        string
	OffererBankAccountId    string
	TakerPubKey             string
	TakerAccountId          string
	TakerBankAccountId      string
	TakerPayoutAddress      string
	TakerContractSignature  string
	PreparedDepositTxHex    string
	SignedTakerDepositTxHex string
	DepositTxHex            string
	OffererSignatureR       string
	OffererSignatureS       string
	OffererPaybackAmount    uint64
	TakerPaybackAmount      uint64
	OffererPayoutAddress    string
	PayoutTxId              string
	PayoutTxHex             string
}

// SetMessage stores the inbound message of the new round and, when the
// peer is newly learned, the peer handle.
func (m *Context) SetMessage(msg TradeMessage, from ports.Peer) {
	m.Message = msg
	if from != nil {
		m.Peer = from
	}
}
