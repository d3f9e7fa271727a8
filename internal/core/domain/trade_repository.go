package domain

import "context"

// TradeRepository is the interface for the persistence layer of trades.
type TradeRepository interface {
	// AddTrade persists a new trade.
	AddTrade(ctx context.Context, trade *Trade) error
	// GetTrade returns the trade with the given id, or ErrTradeNotFound.
	GetTrade(ctx context.Context, tradeId string) (*Trade, error)
	// GetAllTrades returns all trades in the store.
	GetAllTrades(ctx context.Context) ([]*Trade, error)
	// GetCompletedTrades returns all trades in Completed status.
	GetCompletedTrades(ctx context.Context) ([]*Trade, error)
	// GetTradeByDepositTxId returns the trade referencing the given
	// deposit transaction.
	GetTradeByDepositTxId(ctx context.Context, txId string) (*Trade, error)
	// GetTradeByPayoutTxId returns the trade referencing the given
	// payout transaction.
	GetTradeByPayoutTxId(ctx context.Context, txId string) (*Trade, error)
	// UpdateTrade reads the trade, applies updateFn to it and persists
	// the returned value atomically.
	UpdateTrade(
		ctx context.Context, tradeId string,
		updateFn func(t *Trade) (*Trade, error),
	) error
}
