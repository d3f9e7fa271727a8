package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"

	"github.com/escrow-network/escrowd/internal/core/domain"
)

type tradeRepositoryImpl struct {
	db *DbManager
}

// NewTradeRepositoryImpl returns a badger-backed TradeRepository.
func NewTradeRepositoryImpl(db *DbManager) domain.TradeRepository {
	return tradeRepositoryImpl{db: db}
}

func (t tradeRepositoryImpl) AddTrade(
	_ context.Context, trade *domain.Trade,
) error {
	if err := t.db.Store.Insert(trade.Id, *trade); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return ErrTradeAlreadyExists
		}
		return err
	}
	return nil
}

func (t tradeRepositoryImpl) GetTrade(
	_ context.Context, tradeId string,
) (*domain.Trade, error) {
	return t.getTrade(tradeId)
}

func (t tradeRepositoryImpl) GetAllTrades(
	_ context.Context,
) ([]*domain.Trade, error) {
	return t.findTrades(&badgerhold.Query{})
}

func (t tradeRepositoryImpl) GetCompletedTrades(
	_ context.Context,
) ([]*domain.Trade, error) {
	query := badgerhold.Where("Status.Code").
		Eq(domain.TradeStatusCodeCompleted).
		And("Status.Failed").Eq(false)
	return t.findTrades(query)
}

func (t tradeRepositoryImpl) GetTradeByDepositTxId(
	_ context.Context, txId string,
) (*domain.Trade, error) {
	query := badgerhold.Where("DepositTxId").Eq(txId)
	trades, err := t.findTrades(query)
	if err != nil {
		return nil, err
	}
	if len(trades) <= 0 {
		return nil, domain.ErrTradeNotFound
	}
	return trades[0], nil
}

func (t tradeRepositoryImpl) GetTradeByPayoutTxId(
	_ context.Context, txId string,
) (*domain.Trade, error) {
	query := badgerhold.Where("PayoutTxId").Eq(txId)
	trades, err := t.findTrades(query)
	if err != nil {
		return nil, err
	}
	if len(trades) <= 0 {
		return nil, domain.ErrTradeNotFound
	}
	return trades[0], nil
}

func (t tradeRepositoryImpl) UpdateTrade(
	ctx context.Context, tradeId string,
	updateFn func(t *domain.Trade) (*domain.Trade, error),
) error {
	currentTrade, err := t.getTrade(tradeId)
	if err != nil {
		return err
	}

	updatedTrade, err := updateFn(currentTrade)
	if err != nil {
		return err
	}

	return t.db.Store.Update(updatedTrade.Id, *updatedTrade)
}

func (t tradeRepositoryImpl) getTrade(tradeId string) (*domain.Trade, error) {
	var trade domain.Trade
	if err := t.db.Store.Get(tradeId, &trade); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrTradeNotFound
		}
		return nil, err
	}
	return &trade, nil
}

func (t tradeRepositoryImpl) findTrades(
	query *badgerhold.Query,
) ([]*domain.Trade, error) {
	var tr []domain.Trade
	if err := t.db.Store.Find(&tr, query); err != nil {
		return nil, err
	}

	trades := make([]*domain.Trade, 0, len(tr))
	for i := range tr {
		trades = append(trades, &tr[i])
	}
	return trades, nil
}
