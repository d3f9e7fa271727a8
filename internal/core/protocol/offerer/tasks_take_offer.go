package offerer

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/escrow-network/escrowd/internal/core/domain"
	"github.com/escrow-network/escrowd/internal/core/ports"
	"github.com/escrow-network/escrowd/internal/core/protocol"
)

// ProcessTakeOfferRequest validates the take-offer request against the
// local offer before anything else runs.
type ProcessTakeOfferRequest struct{}

func (t *ProcessTakeOfferRequest) Name() string { return "ProcessTakeOfferRequest" }

func (t *ProcessTakeOfferRequest) Run(_ context.Context, m *protocol.Context) error {
	msg, ok := m.Message.(*protocol.TakeOfferRequest)
	if !ok {
		return fmt.Errorf("expected TakeOfferRequest, got %T", m.Message)
	}
	if err := protocol.CheckTradeId(m.Offer.Id, msg); err != nil {
		return err
	}
	if _, err := protocol.NonZeroAmount("amount", msg.Amount); err != nil {
		return err
	}
	if !m.Offer.AcceptsAmount(msg.Amount) {
		return fmt.Errorf(
			"amount %d outside offer bounds [%d, %d]",
			msg.Amount, m.Offer.MinAmount, m.Offer.Amount,
		)
	}
	return nil
}

// RespondToTakeOfferRequest opens the trade record and sends the accept
// response to the taker.
type RespondToTakeOfferRequest struct{}

func (t *RespondToTakeOfferRequest) Name() string { return "RespondToTakeOfferRequest" }

func (t *RespondToTakeOfferRequest) Run(ctx context.Context, m *protocol.Context) error {
	msg := m.Message.(*protocol.TakeOfferRequest)

	trade, err := domain.NewTrade(m.Offer, msg.Amount)
	if err != nil {
		return err
	}
	if err := m.Trades.AddTrade(ctx, trade); err != nil {
		return fmt.Errorf("persisting trade: %w", err)
	}
	m.Trade = trade

	resp := &protocol.RespondToTakeOffer{TradeId: trade.Id, Accepted: true}
	if err := m.Messenger.Send(ctx, m.Peer, resp); err != nil {
		return fmt.Errorf("sending take-offer response: %w", err)
	}
	log.WithField("trade", trade.Id).Debug("take-offer request accepted")
	return nil
}

// ProcessTakeOfferFeePaid validates the fee-paid notice and records the
// fee transaction, the agreed amount and the taker's pubkey on the
// trade.
type ProcessTakeOfferFeePaid struct{}

func (t *ProcessTakeOfferFeePaid) Name() string { return "ProcessTakeOfferFeePaid" }

func (t *ProcessTakeOfferFeePaid) Run(ctx context.Context, m *protocol.Context) error {
	msg, ok := m.Message.(*protocol.TakeOfferFeePaid)
	if !ok {
		return fmt.Errorf("expected TakeOfferFeePaid, got %T", m.Message)
	}
	if err := protocol.CheckTradeId(m.Trade.Id, msg); err != nil {
		return err
	}

	feeTxId, err := protocol.NonEmptyString("feeTxId", msg.FeeTxId)
	if err != nil {
		return err
	}
	amount, err := protocol.NonZeroAmount("amount", msg.Amount)
	if err != nil {
		return err
	}
	takerPubKey, err := protocol.NonEmptyString("takerPubKey", msg.TakerPubKey)
	if err != nil {
		return err
	}

	m.TakerPubKey = takerPubKey
	return m.Trades.UpdateTrade(ctx, m.Trade.Id, func(trade *domain.Trade) (*domain.Trade, error) {
		trade.TakeOfferFeeTxId = feeTxId
		trade.Amount = amount
		trade.TakerPubKeyHex = takerPubKey
		m.Trade = trade
		return trade, nil
	})
}

// CreateDepositTx asks the wallet to build the unsigned 2-of-2 escrow
// deposit transaction.
type CreateDepositTx struct{}

func (t *CreateDepositTx) Name() string { return "CreateDepositTx" }

func (t *CreateDepositTx) Run(ctx context.Context, m *protocol.Context) error {
	depositAmount := m.Trade.Amount + 2*domain.CollateralAmount(m.Trade.Amount)
	txHex, err := m.Wallet.PrepareDepositTx(ctx, ports.PrepareDepositTxParams{
		TradeId:            m.Trade.Id,
		OffererPubKey:      m.MessagePubKeyHex,
		TakerPubKey:        m.TakerPubKey,
		DepositAmount:      depositAmount,
		OffererInputAmount: domain.CollateralAmount(m.Trade.Amount),
	})
	if err != nil {
		return fmt.Errorf("preparing deposit tx: %w", err)
	}
	m.PreparedDepositTxHex = txHex
	return nil
}

// RequestTakerDepositPayment asks the taker to add its inputs and
// signature to the prepared deposit transaction.
type RequestTakerDepositPayment struct{}

func (t *RequestTakerDepositPayment) Name() string { return "RequestTakerDepositPayment" }

func (t *RequestTakerDepositPayment) Run(ctx context.Context, m *protocol.Context) error {
	msg := &protocol.RequestDepositPayment{
		TradeId:              m.Trade.Id,
		PreparedDepositTxHex: m.PreparedDepositTxHex,
		OffererPubKey:        m.MessagePubKeyHex,
		OffererAccountId:     m.AccountId,
		OffererBankAccountId: m.BankAccountId,
	}
	if err := m.Messenger.Send(ctx, m.Peer, msg); err != nil {
		return fmt.Errorf("sending deposit payment request: %w", err)
	}
	return nil
}
