// Package offerer drives the offerer's side of a trade, playing the role
// of the bitcoin buyer. Every inbound message or UI event maps to one
// fixed task sequence executed against the shared trade context; any
// data from incoming messages is validated by a task before further
// processing.
package offerer

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/escrow-network/escrowd/internal/core/protocol"
	"github.com/escrow-network/escrowd/internal/core/ports"
)

// Handlers is the per-run outcome callback pair supplied by the
// enclosing UI/service layer.
type Handlers struct {
	OnResult func(trigger string)
	OnFault  func(trigger, message string, err error)
}

// Protocol orchestrates the buyer-as-offerer role for one trade. It
// registers itself as trade-message handler on Start and dispatches each
// recognized message kind to its task sequence on the trade's single
// dispatch queue.
type Protocol struct {
	model      *protocol.Context
	dispatcher *protocol.Dispatcher
	handlers   Handlers
	handlerId  string
}

// New returns an offerer protocol bound to the given shared context.
func New(model *protocol.Context, handlers Handlers) *Protocol {
	if handlers.OnResult == nil {
		handlers.OnResult = func(trigger string) {
			log.Debugf("offerer sequence %s completed", trigger)
		}
	}
	if handlers.OnFault == nil {
		handlers.OnFault = func(trigger, message string, err error) {
			log.WithError(err).Errorf("offerer sequence %s failed: %s", trigger, message)
		}
	}
	return &Protocol{
		model:      model,
		dispatcher: protocol.NewDispatcher(),
		handlers:   handlers,
		handlerId:  "offerer-" + model.Offer.Id,
	}
}

// Start registers the message handler and launches the dispatch queue.
func (p *Protocol) Start() {
	p.dispatcher.Start()
	p.model.Messenger.AddHandler(p.handlerId, p.handleMessage)
}

// Cleanup deregisters the message handler and stops the dispatch queue.
func (p *Protocol) Cleanup() {
	p.model.Messenger.RemoveHandler(p.handlerId)
	p.dispatcher.Stop()
}

func (p *Protocol) handleMessage(msg ports.Message, from ports.Peer) {
	tradeMsg, ok := msg.(protocol.TradeMessage)
	if !ok {
		log.Debugf("dropping non-trade message %T", msg)
		return
	}
	if len(tradeMsg.GetTradeId()) == 0 {
		log.Errorf("dropping %s without trade id", tradeMsg.Kind())
		return
	}

	switch tradeMsg.Kind() {
	case protocol.MessageKindTakeOfferRequest:
		p.dispatch("takeOfferRequest", tradeMsg, from,
			&ProcessTakeOfferRequest{},
			&RespondToTakeOfferRequest{},
		)
	case protocol.MessageKindTakeOfferFeePaid:
		p.dispatch("takeOfferFeePaid", tradeMsg, from,
			&ProcessTakeOfferFeePaid{},
			&CreateDepositTx{},
			&RequestTakerDepositPayment{},
		)
	case protocol.MessageKindRequestPublishDepositTx:
		p.dispatch("requestPublishDepositTx", tradeMsg, from,
			&ProcessRequestPublishDepositTx{},
			&VerifyTakerAccount{},
			&VerifyAndSignContract{},
			&SignAndPublishDepositTx{},
			&SetupDepositConfirmationListener{},
			&SendDepositTxIdToTaker{},
		)
	case protocol.MessageKindPayoutPublished:
		p.dispatch("payoutPublished", tradeMsg, from,
			&ProcessPayoutTxPublished{},
		)
	default:
		log.Errorf("inbound %s not supported by offerer protocol", tradeMsg.Kind())
	}
}

// HandleBankTransferStarted is triggered by the user confirming the
// fiat transfer was sent.
func (p *Protocol) HandleBankTransferStarted() {
	p.dispatch("bankTransferStarted", nil, nil,
		&SignPayoutTx{},
		&VerifyTakeOfferFeePayment{},
		&SendBankTransferInitiated{},
	)
}

func (p *Protocol) dispatch(
	trigger string, msg protocol.TradeMessage, from ports.Peer,
	tasks ...protocol.Task,
) {
	err := p.dispatcher.Enqueue(func() {
		if msg != nil {
			p.model.SetMessage(msg, from)
		}
		runner := protocol.NewRunner(
			p.model,
			func() { p.handlers.OnResult(trigger) },
			func(message string, err error) { p.handlers.OnFault(trigger, message, err) },
		)
		runner.AddTasks(tasks...)
		runner.Run(context.Background())
	})
	if err != nil {
		p.handlers.OnFault(trigger, "dispatching sequence", err)
	}
}
