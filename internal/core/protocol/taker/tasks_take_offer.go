package taker

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/escrow-network/escrowd/internal/core/domain"
	"github.com/escrow-network/escrowd/internal/core/protocol"
)

// CreateTrade opens the local trade record for the offer being taken.
type CreateTrade struct {
	Amount uint64
}

func (t *CreateTrade) Name() string { return "CreateTrade" }

func (t *CreateTrade) Run(ctx context.Context, m *protocol.Context) error {
	if !m.Offer.AcceptsAmount(t.Amount) {
		return fmt.Errorf(
			"amount %d outside offer bounds [%d, %d]",
			t.Amount, m.Offer.MinAmount, m.Offer.Amount,
		)
	}
	trade, err := domain.NewTrade(m.Offer, t.Amount)
	if err != nil {
		return err
	}
	if err := m.Trades.AddTrade(ctx, trade); err != nil {
		return fmt.Errorf("persisting trade: %w", err)
	}
	m.Trade = trade
	log.WithField("trade", trade.Id).Debug("trade opened")
	return nil
}

// SendTakeOfferRequest asks the offerer to accept the trade.
type SendTakeOfferRequest struct{}

func (t *SendTakeOfferRequest) Name() string { return "SendTakeOfferRequest" }

func (t *SendTakeOfferRequest) Run(ctx context.Context, m *protocol.Context) error {
	msg := &protocol.TakeOfferRequest{
		TradeId: m.Trade.Id,
		OfferId: m.Offer.Id,
		Amount:  m.Trade.Amount,
	}
	if err := m.Messenger.Send(ctx, m.Peer, msg); err != nil {
		return fmt.Errorf("sending take-offer request: %w", err)
	}
	return nil
}

// ProcessRespondToTakeOffer validates the offerer's reply. A rejected
// offer fails the sequence and marks the trade failed.
type ProcessRespondToTakeOffer struct{}

func (t *ProcessRespondToTakeOffer) Name() string { return "ProcessRespondToTakeOffer" }

func (t *ProcessRespondToTakeOffer) Run(ctx context.Context, m *protocol.Context) error {
	msg, ok := m.Message.(*protocol.RespondToTakeOffer)
	if !ok {
		return fmt.Errorf("expected RespondToTakeOffer, got %T", m.Message)
	}
	if err := protocol.CheckTradeId(m.Trade.Id, msg); err != nil {
		return err
	}
	if !msg.Accepted {
		if err := m.Trades.UpdateTrade(ctx, m.Trade.Id, func(trade *domain.Trade) (*domain.Trade, error) {
			trade.Fail("take-offer request rejected by offerer")
			m.Trade = trade
			return trade, nil
		}); err != nil {
			return err
		}
		return fmt.Errorf("take-offer request rejected for trade %s", m.Trade.Id)
	}
	return nil
}

// PayTakeOfferFee pays the take-offer fee through the wallet and records
// the fee txid on the trade. The fee payment is a durable milestone: it
// is not rolled back if a later task fails.
type PayTakeOfferFee struct{}

func (t *PayTakeOfferFee) Name() string { return "PayTakeOfferFee" }

func (t *PayTakeOfferFee) Run(ctx context.Context, m *protocol.Context) error {
	feeTxId, err := m.Wallet.PayTakeOfferFee(ctx, m.Trade.Id)
	if err != nil {
		return fmt.Errorf("paying take-offer fee: %w", err)
	}
	return m.Trades.UpdateTrade(ctx, m.Trade.Id, func(trade *domain.Trade) (*domain.Trade, error) {
		trade.TakeOfferFeeTxId = feeTxId
		m.Trade = trade
		return trade, nil
	})
}

// SendTakeOfferFeePaid notifies the offerer of the paid fee, the agreed
// amount and the taker's pubkey.
type SendTakeOfferFeePaid struct{}

func (t *SendTakeOfferFeePaid) Name() string { return "SendTakeOfferFeePaid" }

func (t *SendTakeOfferFeePaid) Run(ctx context.Context, m *protocol.Context) error {
	msg := &protocol.TakeOfferFeePaid{
		TradeId:     m.Trade.Id,
		FeeTxId:     m.Trade.TakeOfferFeeTxId,
		Amount:      m.Trade.Amount,
		TakerPubKey: m.MessagePubKeyHex,
	}
	if err := m.Messenger.Send(ctx, m.Peer, msg); err != nil {
		return fmt.Errorf("sending take-offer fee notice: %w", err)
	}
	return nil
}
