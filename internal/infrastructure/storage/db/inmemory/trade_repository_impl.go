package inmemory

import (
	"context"
	"errors"
	"sync"

	"github.com/escrow-network/escrowd/internal/core/domain"
)

// ErrTradeAlreadyExists mirrors the badger implementation behavior.
var ErrTradeAlreadyExists = errors.New("trade with same id already exists")

type tradeInmemoryStore struct {
	trades map[string]domain.Trade
	locker sync.Mutex
}

type tradeRepositoryImpl struct {
	store *tradeInmemoryStore
}

// NewTradeRepositoryImpl returns a new inmemory TradeRepository
// implementation, used by tests and CLI dry runs.
func NewTradeRepositoryImpl() domain.TradeRepository {
	return &tradeRepositoryImpl{
		store: &tradeInmemoryStore{trades: map[string]domain.Trade{}},
	}
}

func (r *tradeRepositoryImpl) AddTrade(
	_ context.Context, trade *domain.Trade,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.trades[trade.Id]; ok {
		return ErrTradeAlreadyExists
	}
	r.store.trades[trade.Id] = *trade
	return nil
}

func (r *tradeRepositoryImpl) GetTrade(
	_ context.Context, tradeId string,
) (*domain.Trade, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.getTrade(tradeId)
}

func (r *tradeRepositoryImpl) GetAllTrades(
	_ context.Context,
) ([]*domain.Trade, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	trades := make([]*domain.Trade, 0, len(r.store.trades))
	for id := range r.store.trades {
		trade := r.store.trades[id]
		trades = append(trades, &trade)
	}
	return trades, nil
}

func (r *tradeRepositoryImpl) GetCompletedTrades(
	ctx context.Context,
) ([]*domain.Trade, error) {
	trades, err := r.GetAllTrades(ctx)
	if err != nil {
		return nil, err
	}

	completedTrades := make([]*domain.Trade, 0)
	for _, trade := range trades {
		if trade.IsCompleted() && !trade.IsFailed() {
			completedTrades = append(completedTrades, trade)
		}
	}
	return completedTrades, nil
}

func (r *tradeRepositoryImpl) GetTradeByDepositTxId(
	_ context.Context, txId string,
) (*domain.Trade, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	for id := range r.store.trades {
		trade := r.store.trades[id]
		if trade.DepositTxId == txId {
			return &trade, nil
		}
	}
	return nil, domain.ErrTradeNotFound
}

func (r *tradeRepositoryImpl) GetTradeByPayoutTxId(
	_ context.Context, txId string,
) (*domain.Trade, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	for id := range r.store.trades {
		trade := r.store.trades[id]
		if trade.PayoutTxId == txId {
			return &trade, nil
		}
	}
	return nil, domain.ErrTradeNotFound
}

func (r *tradeRepositoryImpl) UpdateTrade(
	_ context.Context, tradeId string,
	updateFn func(t *domain.Trade) (*domain.Trade, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	currentTrade, err := r.getTrade(tradeId)
	if err != nil {
		return err
	}

	updatedTrade, err := updateFn(currentTrade)
	if err != nil {
		return err
	}

	r.store.trades[tradeId] = *updatedTrade
	return nil
}

func (r *tradeRepositoryImpl) getTrade(tradeId string) (*domain.Trade, error) {
	trade, ok := r.store.trades[tradeId]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	return &trade, nil
}
