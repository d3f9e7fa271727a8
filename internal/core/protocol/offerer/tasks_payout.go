package offerer

import (
	"context"
	"fmt"

	"github.com/escrow-network/escrowd/internal/core/domain"
	"github.com/escrow-network/escrowd/internal/core/protocol"
)

// SignPayoutTx computes the payback amounts and produces the offerer's
// detached signature over the payout transaction. The offerer buys
// bitcoin, so it receives the trade amount plus its collateral; the
// taker receives its collateral back. The payout network fee is split
// evenly between the two paybacks so their sum plus fee equals the
// escrow.
type SignPayoutTx struct{}

func (t *SignPayoutTx) Name() string { return "SignPayoutTx" }

func (t *SignPayoutTx) Run(ctx context.Context, m *protocol.Context) error {
	if len(m.Trade.DepositTxHex) == 0 {
		return fmt.Errorf("deposit tx not published yet for trade %s", m.Trade.Id)
	}

	collateral := domain.CollateralAmount(m.Trade.Amount)
	if collateral <= domain.TxFee/2 {
		return fmt.Errorf(
			"collateral %d cannot cover the payout fee share", collateral,
		)
	}
	m.OffererPaybackAmount = m.Trade.Amount + collateral - domain.TxFee/2
	m.TakerPaybackAmount = collateral - domain.TxFee/2
	m.OffererPayoutAddress = m.PayoutAddress
	m.DepositTxHex = m.Trade.DepositTxHex

	m.TakerPayoutAddress = m.Trade.TakerPayoutAddress

	sig, err := m.Wallet.SignPayoutTx(
		ctx,
		m.DepositTxHex,
		m.OffererPaybackAmount,
		m.TakerPaybackAmount,
		m.OffererPayoutAddress,
		m.TakerPayoutAddress,
	)
	if err != nil {
		return fmt.Errorf("signing payout tx: %w", err)
	}

	m.OffererSignatureR = sig.R
	m.OffererSignatureS = sig.S
	return nil
}

// VerifyTakeOfferFeePayment checks the taker's fee transaction before
// announcing the fiat transfer.
type VerifyTakeOfferFeePayment struct{}

func (t *VerifyTakeOfferFeePayment) Name() string { return "VerifyTakeOfferFeePayment" }

func (t *VerifyTakeOfferFeePayment) Run(ctx context.Context, m *protocol.Context) error {
	if err := m.Wallet.VerifyTakeOfferFeePayment(ctx, m.Trade.TakeOfferFeeTxId); err != nil {
		return fmt.Errorf("verifying take-offer fee payment: %w", err)
	}
	return nil
}

// SendBankTransferInitiated notifies the taker that the fiat transfer
// started and hands over everything needed to build the payout.
type SendBankTransferInitiated struct{}

func (t *SendBankTransferInitiated) Name() string { return "SendBankTransferInitiated" }

func (t *SendBankTransferInitiated) Run(ctx context.Context, m *protocol.Context) error {
	msg := &protocol.BankTransferInitiated{
		TradeId:              m.Trade.Id,
		DepositTxHex:         m.DepositTxHex,
		OffererSignatureR:    m.OffererSignatureR,
		OffererSignatureS:    m.OffererSignatureS,
		OffererPaybackAmount: m.OffererPaybackAmount,
		TakerPaybackAmount:   m.TakerPaybackAmount,
		OffererPayoutAddress: m.OffererPayoutAddress,
	}
	if err := m.Messenger.Send(ctx, m.Peer, msg); err != nil {
		return fmt.Errorf("sending bank transfer notice: %w", err)
	}
	return nil
}

// ProcessPayoutTxPublished validates the payout notice and records the
// final trade state.
type ProcessPayoutTxPublished struct{}

func (t *ProcessPayoutTxPublished) Name() string { return "ProcessPayoutTxPublished" }

func (t *ProcessPayoutTxPublished) Run(ctx context.Context, m *protocol.Context) error {
	msg, ok := m.Message.(*protocol.PayoutPublished)
	if !ok {
		return fmt.Errorf("expected PayoutPublished, got %T", m.Message)
	}
	if err := protocol.CheckTradeId(m.Trade.Id, msg); err != nil {
		return err
	}
	payoutTxId, err := protocol.NonEmptyString("payoutTxId", msg.PayoutTxId)
	if err != nil {
		return err
	}

	return m.Trades.UpdateTrade(ctx, m.Trade.Id, func(trade *domain.Trade) (*domain.Trade, error) {
		if _, err := trade.PublishPayout(payoutTxId, ""); err != nil {
			return nil, err
		}
		if _, err := trade.Complete(); err != nil {
			return nil, err
		}
		m.Trade = trade
		return trade, nil
	})
}
