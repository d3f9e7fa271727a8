package inmemory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/escrow-network/escrowd/internal/core/domain"
	"github.com/escrow-network/escrowd/internal/infrastructure/storage/db/inmemory"
)

func TestAddAndGetTrade(t *testing.T) {
	ctx := context.Background()
	repo := inmemory.NewTradeRepositoryImpl()
	trade := newTestTrade(t)

	require.NoError(t, repo.AddTrade(ctx, trade))

	found, err := repo.GetTrade(ctx, trade.Id)
	require.NoError(t, err)
	require.Equal(t, trade.Id, found.Id)

	require.ErrorIs(t, repo.AddTrade(ctx, trade), inmemory.ErrTradeAlreadyExists)

	_, err = repo.GetTrade(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrTradeNotFound)
}

func TestUpdateTrade(t *testing.T) {
	ctx := context.Background()
	repo := inmemory.NewTradeRepositoryImpl()
	trade := newTestTrade(t)
	require.NoError(t, repo.AddTrade(ctx, trade))

	err := repo.UpdateTrade(ctx, trade.Id, func(tr *domain.Trade) (*domain.Trade, error) {
		if _, err := tr.PublishDeposit("deposittx", "deposithex"); err != nil {
			return nil, err
		}
		return tr, nil
	})
	require.NoError(t, err)

	found, err := repo.GetTrade(ctx, trade.Id)
	require.NoError(t, err)
	require.True(t, found.IsDepositPublished())

	// A failing update function must leave the stored trade untouched.
	err = repo.UpdateTrade(ctx, trade.Id, func(tr *domain.Trade) (*domain.Trade, error) {
		_, err := tr.Complete()
		return nil, err
	})
	require.ErrorIs(t, err, domain.ErrTradeMustBePayoutPublished)

	found, err = repo.GetTrade(ctx, trade.Id)
	require.NoError(t, err)
	require.True(t, found.IsDepositPublished())
}

func TestGetTradeByDepositTxId(t *testing.T) {
	ctx := context.Background()
	repo := inmemory.NewTradeRepositoryImpl()
	trade := newTestTrade(t)
	require.NoError(t, repo.AddTrade(ctx, trade))
	require.NoError(t, repo.UpdateTrade(ctx, trade.Id, func(tr *domain.Trade) (*domain.Trade, error) {
		if _, err := tr.PublishDeposit("deposittx", "deposithex"); err != nil {
			return nil, err
		}
		return tr, nil
	}))

	found, err := repo.GetTradeByDepositTxId(ctx, "deposittx")
	require.NoError(t, err)
	require.Equal(t, trade.Id, found.Id)

	_, err = repo.GetTradeByDepositTxId(ctx, "unknown")
	require.ErrorIs(t, err, domain.ErrTradeNotFound)
}

func TestGetTradeByPayoutTxId(t *testing.T) {
	ctx := context.Background()
	repo := inmemory.NewTradeRepositoryImpl()
	trade := newTestTrade(t)
	require.NoError(t, repo.AddTrade(ctx, trade))
	require.NoError(t, repo.UpdateTrade(ctx, trade.Id, func(tr *domain.Trade) (*domain.Trade, error) {
		if _, err := tr.PublishDeposit("deposittx", ""); err != nil {
			return nil, err
		}
		if _, err := tr.PublishPayout("payouttx", ""); err != nil {
			return nil, err
		}
		return tr, nil
	}))

	found, err := repo.GetTradeByPayoutTxId(ctx, "payouttx")
	require.NoError(t, err)
	require.Equal(t, trade.Id, found.Id)

	_, err = repo.GetTradeByPayoutTxId(ctx, "unknown")
	require.ErrorIs(t, err, domain.ErrTradeNotFound)
}

func TestGetCompletedTrades(t *testing.T) {
	ctx := context.Background()
	repo := inmemory.NewTradeRepositoryImpl()

	settled := newTestTrade(t)
	require.NoError(t, repo.AddTrade(ctx, settled))
	require.NoError(t, repo.UpdateTrade(ctx, settled.Id, func(tr *domain.Trade) (*domain.Trade, error) {
		if _, err := tr.PublishDeposit("deposittx", ""); err != nil {
			return nil, err
		}
		if _, err := tr.PublishPayout("payouttx", ""); err != nil {
			return nil, err
		}
		if _, err := tr.Complete(); err != nil {
			return nil, err
		}
		return tr, nil
	}))

	open := newTestTrade(t)
	require.NoError(t, repo.AddTrade(ctx, open))

	all, err := repo.GetAllTrades(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	completed, err := repo.GetCompletedTrades(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, settled.Id, completed[0].Id)
}

func newTestTrade(t *testing.T) *domain.Trade {
	t.Helper()
	offer := domain.Offer{
		Id:        uuid.NewString(),
		Amount:    100000,
		MinAmount: 10000,
	}
	trade, err := domain.NewTrade(offer, 50000)
	require.NoError(t, err)
	return trade
}
