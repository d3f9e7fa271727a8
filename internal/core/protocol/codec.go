package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/thanhpk/randstr"
)

// envelope is the wire framing shared by every transport implementation.
// The id is a per-frame random tag for log correlation only.
type envelope struct {
	Id      string          `json:"id"`
	Kind    MessageKind     `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeMessage frames a trade message for the wire.
func EncodeMessage(msg TradeMessage) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{
		Id:      randstr.Hex(8),
		Kind:    msg.Kind(),
		Payload: payload,
	})
}

// DecodeMessage parses a framed trade message. An unknown kind yields an
// error so the transport can log and drop the frame.
func DecodeMessage(buf []byte) (TradeMessage, error) {
	var env envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		return nil, err
	}

	var msg TradeMessage
	switch env.Kind {
	case MessageKindTakeOfferRequest:
		msg = &TakeOfferRequest{}
	case MessageKindRespondToTakeOffer:
		msg = &RespondToTakeOffer{}
	case MessageKindTakeOfferFeePaid:
		msg = &TakeOfferFeePaid{}
	case MessageKindRequestDepositPayment:
		msg = &RequestDepositPayment{}
	case MessageKindRequestPublishDepositTx:
		msg = &RequestPublishDepositTx{}
	case MessageKindDepositTxPublished:
		msg = &DepositTxPublished{}
	case MessageKindBankTransferInitiated:
		msg = &BankTransferInitiated{}
	case MessageKindPayoutPublished:
		msg = &PayoutPublished{}
	default:
		return nil, fmt.Errorf("unknown message kind %d", env.Kind)
	}

	if err := json.Unmarshal(env.Payload, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
