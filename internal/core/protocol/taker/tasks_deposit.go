package taker

import (
	"context"
	"fmt"

	"github.com/escrow-network/escrowd/internal/core/domain"
	"github.com/escrow-network/escrowd/internal/core/protocol"
)

// ProcessRequestDepositPayment validates the offerer's deposit payment
// request and copies its fields into the shared context.
type ProcessRequestDepositPayment struct{}

func (t *ProcessRequestDepositPayment) Name() string { return "ProcessRequestDepositPayment" }

func (t *ProcessRequestDepositPayment) Run(_ context.Context, m *protocol.Context) error {
	msg, ok := m.Message.(*protocol.RequestDepositPayment)
	if !ok {
		return fmt.Errorf("expected RequestDepositPayment, got %T", m.Message)
	}
	if err := protocol.CheckTradeId(m.Trade.Id, msg); err != nil {
		return err
	}

	var err error
	if m.PreparedDepositTxHex, err = protocol.NonEmptyString(
		"preparedDepositTxHex", msg.PreparedDepositTxHex,
	); err != nil {
		return err
	}
	if m.OffererPubKey, err = protocol.NonEmptyString(
		"offererPubKey", msg.OffererPubKey,
	); err != nil {
		return err
	}
	if m.OffererAccountId, err = protocol.NonEmptyString(
		"offererAccountId", msg.OffererAccountId,
	); err != nil {
		return err
	}
	if m.OffererBankAccountId, err = protocol.NonEmptyString(
		"offererBankAccountId", msg.OffererBankAccountId,
	); err != nil {
		return err
	}
	return nil
}

// CreateAndSignContract forms the contract from the agreed terms and
// signs it with the taker's account key.
type CreateAndSignContract struct{}

func (t *CreateAndSignContract) Name() string { return "CreateAndSignContract" }

func (t *CreateAndSignContract) Run(ctx context.Context, m *protocol.Context) error {
	contract := domain.Contract{
		OfferId:              m.Offer.Id,
		Amount:               m.Trade.Amount,
		TakeOfferFeeTxId:     m.Trade.TakeOfferFeeTxId,
		OffererAccountId:     m.OffererAccountId,
		TakerAccountId:       m.AccountId,
		OffererBankAccount:   m.OffererBankAccountId,
		TakerBankAccount:     m.BankAccountId,
		OffererMessagePubKey: m.OffererPubKey,
		TakerMessagePubKey:   m.MessagePubKeyHex,
	}
	payload, err := contract.Marshal()
	if err != nil {
		return fmt.Errorf("serializing contract: %w", err)
	}

	takerSig, err := m.Signer.Sign(m.AccountKeyHex, payload)
	if err != nil {
		return fmt.Errorf("signing contract: %w", err)
	}

	m.TakerContractSignature = takerSig
	return m.Trades.UpdateTrade(ctx, m.Trade.Id, func(trade *domain.Trade) (*domain.Trade, error) {
		trade.SetContract(contract, string(payload), "", takerSig)
		m.Trade = trade
		return trade, nil
	})
}

// PayDeposit adds the taker's inputs and signature to the prepared
// escrow deposit transaction.
type PayDeposit struct{}

func (t *PayDeposit) Name() string { return "PayDeposit" }

func (t *PayDeposit) Run(ctx context.Context, m *protocol.Context) error {
	// The seller escrows the traded coins plus its collateral.
	inputAmount := m.Trade.Amount + domain.CollateralAmount(m.Trade.Amount)
	signedTxHex, err := m.Wallet.SignDepositTx(ctx, m.PreparedDepositTxHex, inputAmount)
	if err != nil {
		return fmt.Errorf("signing deposit tx: %w", err)
	}
	m.SignedTakerDepositTxHex = signedTxHex
	return nil
}

// SendRequestPublishDepositTx hands the taker-signed deposit and the
// contract signature back to the offerer for counter-signing and
// broadcast.
type SendRequestPublishDepositTx struct{}

func (t *SendRequestPublishDepositTx) Name() string { return "SendRequestPublishDepositTx" }

func (t *SendRequestPublishDepositTx) Run(ctx context.Context, m *protocol.Context) error {
	msg := &protocol.RequestPublishDepositTx{
		TradeId:                 m.Trade.Id,
		TakerAccountId:          m.AccountId,
		TakerBankAccountId:      m.BankAccountId,
		TakerPubKey:             m.MessagePubKeyHex,
		TakerPayoutAddress:      m.PayoutAddress,
		TakerContractSignature:  m.TakerContractSignature,
		SignedTakerDepositTxHex: m.SignedTakerDepositTxHex,
	}
	if err := m.Messenger.Send(ctx, m.Peer, msg); err != nil {
		return fmt.Errorf("sending publish deposit request: %w", err)
	}
	return nil
}

// ProcessDepositTxPublished records the broadcast escrow deposit and
// advances the trade to DepositPublished.
type ProcessDepositTxPublished struct{}

func (t *ProcessDepositTxPublished) Name() string { return "ProcessDepositTxPublished" }

func (t *ProcessDepositTxPublished) Run(ctx context.Context, m *protocol.Context) error {
	msg, ok := m.Message.(*protocol.DepositTxPublished)
	if !ok {
		return fmt.Errorf("expected DepositTxPublished, got %T", m.Message)
	}
	if err := protocol.CheckTradeId(m.Trade.Id, msg); err != nil {
		return err
	}
	depositTxId, err := protocol.NonEmptyString("depositTxId", msg.DepositTxId)
	if err != nil {
		return err
	}

	return m.Trades.UpdateTrade(ctx, m.Trade.Id, func(trade *domain.Trade) (*domain.Trade, error) {
		if _, err := trade.PublishDeposit(depositTxId, ""); err != nil {
			return nil, err
		}
		m.Trade = trade
		return trade, nil
	})
}
