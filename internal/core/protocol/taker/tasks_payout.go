package taker

import (
	"context"
	"fmt"

	"github.com/escrow-network/escrowd/internal/core/domain"
	"github.com/escrow-network/escrowd/internal/core/ports"
	"github.com/escrow-network/escrowd/internal/core/protocol"
)

// ProcessBankTransferInitiated validates the fiat transfer notice and
// copies the payout inputs into the shared context. Every field is
// checked here, before the signing task trusts any of them.
type ProcessBankTransferInitiated struct{}

func (t *ProcessBankTransferInitiated) Name() string { return "ProcessBankTransferInitiated" }

func (t *ProcessBankTransferInitiated) Run(_ context.Context, m *protocol.Context) error {
	msg, ok := m.Message.(*protocol.BankTransferInitiated)
	if !ok {
		return fmt.Errorf("expected BankTransferInitiated, got %T", m.Message)
	}
	if err := protocol.CheckTradeId(m.Trade.Id, msg); err != nil {
		return err
	}

	var err error
	if m.DepositTxHex, err = protocol.NonEmptyString(
		"depositTxHex", msg.DepositTxHex,
	); err != nil {
		return err
	}
	if m.OffererSignatureR, err = protocol.NonEmptyString(
		"offererSignatureR", msg.OffererSignatureR,
	); err != nil {
		return err
	}
	if m.OffererSignatureS, err = protocol.NonEmptyString(
		"offererSignatureS", msg.OffererSignatureS,
	); err != nil {
		return err
	}
	if m.OffererPaybackAmount, err = protocol.NonZeroAmount(
		"offererPaybackAmount", msg.OffererPaybackAmount,
	); err != nil {
		return err
	}
	if m.TakerPaybackAmount, err = protocol.NonZeroAmount(
		"takerPaybackAmount", msg.TakerPaybackAmount,
	); err != nil {
		return err
	}
	if m.OffererPayoutAddress, err = protocol.NonEmptyString(
		"offererPayoutAddress", msg.OffererPayoutAddress,
	); err != nil {
		return err
	}
	return nil
}

// SignAndPublishPayoutTx assembles both signatures into the payout
// transaction, broadcasts it and advances the trade to PayoutPublished.
type SignAndPublishPayoutTx struct{}

func (t *SignAndPublishPayoutTx) Name() string { return "SignAndPublishPayoutTx" }

func (t *SignAndPublishPayoutTx) Run(ctx context.Context, m *protocol.Context) error {
	tx, err := m.Wallet.SignAndBroadcastPayoutTx(ctx, ports.SignPayoutTxParams{
		TradeId:              m.Trade.Id,
		DepositTxHex:         m.DepositTxHex,
		OffererSignatureR:    m.OffererSignatureR,
		OffererSignatureS:    m.OffererSignatureS,
		OffererPaybackAmount: m.OffererPaybackAmount,
		TakerPaybackAmount:   m.TakerPaybackAmount,
		OffererPayoutAddress: m.OffererPayoutAddress,
		TakerPayoutAddress:   m.PayoutAddress,
	})
	if err != nil {
		return fmt.Errorf("signing and broadcasting payout tx: %w", err)
	}

	m.PayoutTxId = tx.TxId
	m.PayoutTxHex = tx.TxHex
	return m.Trades.UpdateTrade(ctx, m.Trade.Id, func(trade *domain.Trade) (*domain.Trade, error) {
		if _, err := trade.PublishPayout(tx.TxId, tx.TxHex); err != nil {
			return nil, err
		}
		m.Trade = trade
		return trade, nil
	})
}

// SendPayoutTxPublished notifies the offerer of the broadcast payout and
// settles the trade locally.
type SendPayoutTxPublished struct{}

func (t *SendPayoutTxPublished) Name() string { return "SendPayoutTxPublished" }

func (t *SendPayoutTxPublished) Run(ctx context.Context, m *protocol.Context) error {
	msg := &protocol.PayoutPublished{
		TradeId:    m.Trade.Id,
		PayoutTxId: m.PayoutTxId,
	}
	if err := m.Messenger.Send(ctx, m.Peer, msg); err != nil {
		return fmt.Errorf("sending payout notice: %w", err)
	}

	return m.Trades.UpdateTrade(ctx, m.Trade.Id, func(trade *domain.Trade) (*domain.Trade, error) {
		if _, err := trade.Complete(); err != nil {
			return nil, err
		}
		m.Trade = trade
		return trade, nil
	})
}
