// Package taker drives the taker's side of a trade, playing the role of
// the bitcoin seller. It mirrors the offerer protocol: one fixed task
// sequence per inbound message kind or UI event, serialized on the
// trade's dispatch queue.
package taker

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/escrow-network/escrowd/internal/core/ports"
	"github.com/escrow-network/escrowd/internal/core/protocol"
)

// Handlers is the per-run outcome callback pair supplied by the
// enclosing UI/service layer.
type Handlers struct {
	OnResult func(trigger string)
	OnFault  func(trigger, message string, err error)
}

// Protocol orchestrates the seller-as-taker role for one trade.
type Protocol struct {
	model      *protocol.Context
	dispatcher *protocol.Dispatcher
	handlers   Handlers
	handlerId  string
}

// New returns a taker protocol bound to the given shared context.
func New(model *protocol.Context, handlers Handlers) *Protocol {
	if handlers.OnResult == nil {
		handlers.OnResult = func(trigger string) {
			log.Debugf("taker sequence %s completed", trigger)
		}
	}
	if handlers.OnFault == nil {
		handlers.OnFault = func(trigger, message string, err error) {
			log.WithError(err).Errorf("taker sequence %s failed: %s", trigger, message)
		}
	}
	return &Protocol{
		model:      model,
		dispatcher: protocol.NewDispatcher(),
		handlers:   handlers,
		handlerId:  "taker-" + model.Offer.Id,
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
	case protocol.MessageKindRespondToTakeOffer:
		p.dispatch("respondToTakeOffer", tradeMsg, from,
			&ProcessRespondToTakeOffer{},
			&PayTakeOfferFee{},
			&SendTakeOfferFeePaid{},
		)
	case protocol.MessageKindRequestDepositPayment:
		p.dispatch("requestDepositPayment", tradeMsg, from,
			&ProcessRequestDepositPayment{},
			&CreateAndSignContract{},
			&PayDeposit{},
			&SendRequestPublishDepositTx{},
		)
	case protocol.MessageKindDepositTxPublished:
		p.dispatch("depositTxPublished", tradeMsg, from,
			&ProcessDepositTxPublished{},
		)
	case protocol.MessageKindBankTransferInitiated:
		p.dispatch("bankTransferInitiated", tradeMsg, from,
			&ProcessBankTransferInitiated{},
			&SignAndPublishPayoutTx{},
			&SendPayoutTxPublished{},
		)
	default:
		log.Errorf("inbound %s not supported by taker protocol", tradeMsg.Kind())
	}
}

// HandleTakeOffer is triggered by the user taking the offer for the
// given amount.
func (p *Protocol) HandleTakeOffer(amount uint64) {
	p.dispatch("takeOffer", nil, nil,
		&CreateTrade{Amount: amount},
		&SendTakeOfferRequest{},
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
