package offerer

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/escrow-network/escrowd/internal/core/domain"
	"github.com/escrow-network/escrowd/internal/core/ports"
	"github.com/escrow-network/escrowd/internal/core/protocol"
)

// ProcessRequestPublishDepositTx validates the taker-signed deposit
// request and copies its fields into the shared context.
type ProcessRequestPublishDepositTx struct{}

func (t *ProcessRequestPublishDepositTx) Name() string { return "ProcessRequestPublishDepositTx" }

func (t *ProcessRequestPublishDepositTx) Run(_ context.Context, m *protocol.Context) error {
	msg, ok := m.Message.(*protocol.RequestPublishDepositTx)
	if !ok {
		return fmt.Errorf("expected RequestPublishDepositTx, got %T", m.Message)
	}
	if err := protocol.CheckTradeId(m.Trade.Id, msg); err != nil {
		return err
	}

	var err error
	if m.TakerAccountId, err = protocol.NonEmptyString(
		"takerAccountId", msg.TakerAccountId,
	); err != nil {
		return err
	}
	if m.TakerBankAccountId, err = protocol.NonEmptyString(
		"takerBankAccountId", msg.TakerBankAccountId,
	); err != nil {
		return err
	}
	if m.TakerPubKey, err = protocol.NonEmptyString(
		"takerPubKey", msg.TakerPubKey,
	); err != nil {
		return err
	}
	if m.TakerPayoutAddress, err = protocol.NonEmptyString(
		"takerPayoutAddress", msg.TakerPayoutAddress,
	); err != nil {
		return err
	}
	if m.TakerContractSignature, err = protocol.NonEmptyString(
		"takerContractSignature", msg.TakerContractSignature,
	); err != nil {
		return err
	}
	if m.SignedTakerDepositTxHex, err = protocol.NonEmptyString(
		"signedTakerDepositTxHex", msg.SignedTakerDepositTxHex,
	); err != nil {
		return err
	}
	return nil
}

// VerifyTakerAccount checks the taker's account identifiers are usable
// before entering the contract.
type VerifyTakerAccount struct{}

func (t *VerifyTakerAccount) Name() string { return "VerifyTakerAccount" }

func (t *VerifyTakerAccount) Run(_ context.Context, m *protocol.Context) error {
	if m.TakerAccountId == m.AccountId {
		return fmt.Errorf("taker account id %s equals own account id", m.TakerAccountId)
	}
	// TODO: check the account against the arbitrator's blacklist once the
	// arbitration service exposes it.
	log.WithField("trade", m.Trade.Id).Tracef("taker account %s verified", m.TakerAccountId)
	return nil
}

// VerifyAndSignContract rebuilds the contract from the agreed terms,
// verifies the taker's signature over it and counter-signs.
type VerifyAndSignContract struct{}

func (t *VerifyAndSignContract) Name() string { return "VerifyAndSignContract" }

func (t *VerifyAndSignContract) Run(ctx context.Context, m *protocol.Context) error {
	contract := domain.Contract{
		OfferId:              m.Offer.Id,
		Amount:               m.Trade.Amount,
		TakeOfferFeeTxId:     m.Trade.TakeOfferFeeTxId,
		OffererAccountId:     m.AccountId,
		TakerAccountId:       m.TakerAccountId,
		OffererBankAccount:   m.BankAccountId,
		TakerBankAccount:     m.TakerBankAccountId,
		OffererMessagePubKey: m.MessagePubKeyHex,
		TakerMessagePubKey:   m.TakerPubKey,
	}
	payload, err := contract.Marshal()
	if err != nil {
		return fmt.Errorf("serializing contract: %w", err)
	}

	if err := m.Signer.Verify(m.TakerPubKey, payload, m.TakerContractSignature); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrContractSignatureMismatch, err)
	}

	offererSig, err := m.Signer.Sign(m.AccountKeyHex, payload)
	if err != nil {
		return fmt.Errorf("signing contract: %w", err)
	}

	return m.Trades.UpdateTrade(ctx, m.Trade.Id, func(trade *domain.Trade) (*domain.Trade, error) {
		trade.SetContract(contract, string(payload), offererSig, m.TakerContractSignature)
		trade.TakerAccountId = m.TakerAccountId
		trade.TakerBankAccountId = m.TakerBankAccountId
		trade.TakerPayoutAddress = m.TakerPayoutAddress
		m.Trade = trade
		return trade, nil
	})
}

// SignAndPublishDepositTx counter-signs the taker-signed deposit
// transaction, broadcasts it and advances the trade to
// DepositPublished. The broadcast is a durable forward-progress
// milestone, safe to leave in place if a later task fails.
type SignAndPublishDepositTx struct{}

func (t *SignAndPublishDepositTx) Name() string { return "SignAndPublishDepositTx" }

func (t *SignAndPublishDepositTx) Run(ctx context.Context, m *protocol.Context) error {
	tx, err := m.Wallet.SignAndPublishDepositTx(ctx, ports.SignDepositTxParams{
		TradeId:                 m.Trade.Id,
		PreparedDepositTxHex:    m.PreparedDepositTxHex,
		SignedTakerDepositTxHex: m.SignedTakerDepositTxHex,
	})
	if err != nil {
		return fmt.Errorf("signing and publishing deposit tx: %w", err)
	}

	return m.Trades.UpdateTrade(ctx, m.Trade.Id, func(trade *domain.Trade) (*domain.Trade, error) {
		if _, err := trade.PublishDeposit(tx.TxId, tx.TxHex); err != nil {
			return nil, err
		}
		m.Trade = trade
		m.DepositTxHex = tx.TxHex
		return trade, nil
	})
}

// SetupDepositConfirmationListener arms the blockchain watch on the
// deposit transaction.
type SetupDepositConfirmationListener struct{}

func (t *SetupDepositConfirmationListener) Name() string {
	return "SetupDepositConfirmationListener"
}

func (t *SetupDepositConfirmationListener) Run(_ context.Context, m *protocol.Context) error {
	tradeId := m.Trade.Id
	m.Wallet.WatchTxConfirmation(m.Trade.DepositTxId, func(confirmations int) {
		log.WithField("trade", tradeId).Debugf(
			"deposit tx reached %d confirmation(s)", confirmations,
		)
	})
	return nil
}

// SendDepositTxIdToTaker notifies the taker that the escrow deposit is
// on chain.
type SendDepositTxIdToTaker struct{}

func (t *SendDepositTxIdToTaker) Name() string { return "SendDepositTxIdToTaker" }

func (t *SendDepositTxIdToTaker) Run(ctx context.Context, m *protocol.Context) error {
	msg := &protocol.DepositTxPublished{
		TradeId:     m.Trade.Id,
		DepositTxId: m.Trade.DepositTxId,
	}
	if err := m.Messenger.Send(ctx, m.Peer, msg); err != nil {
		return fmt.Errorf("sending deposit txid: %w", err)
	}
	return nil
}
