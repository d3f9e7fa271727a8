package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/escrow-network/escrowd/internal/core/domain"
)

func TestNewTrade(t *testing.T) {
	offer := newTestOffer()

	trade, err := domain.NewTrade(offer, 50000)
	require.NoError(t, err)
	require.Equal(t, offer.Id, trade.Id)
	require.Equal(t, uint64(50000), trade.Amount)
	require.True(t, trade.IsNegotiation())
	require.False(t, trade.IsFailed())

	_, err = domain.NewTrade(offer, 0)
	require.ErrorIs(t, err, domain.ErrTradeNullAmount)
}

func TestTradeLifecycle(t *testing.T) {
	trade, err := domain.NewTrade(newTestOffer(), 50000)
	require.NoError(t, err)

	ok, err := trade.PublishDeposit("deposittx", "deposithex")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, trade.IsDepositPublished())
	require.Equal(t, "deposittx", trade.DepositTxId)

	ok, err = trade.PublishPayout("payouttx", "payouthex")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, trade.IsPayoutPublished())

	ok, err = trade.Complete()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, trade.IsCompleted())
	require.Greater(t, trade.CompletionTime, int64(0))
}

func TestTradeTransitionsAreIdempotent(t *testing.T) {
	trade, err := domain.NewTrade(newTestOffer(), 50000)
	require.NoError(t, err)

	_, err = trade.PublishDeposit("deposittx", "deposithex")
	require.NoError(t, err)

	// Re-applying a transition already past leaves the trade untouched.
	ok, err := trade.PublishDeposit("othertx", "otherhex")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "deposittx", trade.DepositTxId)
	require.True(t, trade.IsDepositPublished())
}

func TestTradeTransitionsOutOfOrder(t *testing.T) {
	trade, err := domain.NewTrade(newTestOffer(), 50000)
	require.NoError(t, err)

	_, err = trade.PublishPayout("payouttx", "payouthex")
	require.ErrorIs(t, err, domain.ErrTradeMustBeDepositPublished)

	_, err = trade.Complete()
	require.ErrorIs(t, err, domain.ErrTradeMustBePayoutPublished)

	require.True(t, trade.IsNegotiation())
}

func TestTradeTransitionsRequireTxId(t *testing.T) {
	trade, err := domain.NewTrade(newTestOffer(), 50000)
	require.NoError(t, err)

	_, err = trade.PublishDeposit("", "")
	require.ErrorIs(t, err, domain.ErrTradeNullTxId)
	require.True(t, trade.IsNegotiation())
}

func TestFailedTradeRefusesTransitions(t *testing.T) {
	trade, err := domain.NewTrade(newTestOffer(), 50000)
	require.NoError(t, err)

	trade.Fail("counterparty vanished")
	require.True(t, trade.IsFailed())
	require.Equal(t, "counterparty vanished", trade.FailureReason)

	// A later Fail must not overwrite the original reason.
	trade.Fail("some other reason")
	require.Equal(t, "counterparty vanished", trade.FailureReason)

	_, err = trade.PublishDeposit("deposittx", "deposithex")
	require.ErrorIs(t, err, domain.ErrTradeIsFailed)
	_, err = trade.PublishPayout("payouttx", "payouthex")
	require.ErrorIs(t, err, domain.ErrTradeIsFailed)
	_, err = trade.Complete()
	require.ErrorIs(t, err, domain.ErrTradeIsFailed)
}

func TestCollateralAmount(t *testing.T) {
	require.Equal(t, uint64(10000), domain.CollateralAmount(100000))
	require.Equal(t, uint64(0), domain.CollateralAmount(0))
}

func newTestOffer() domain.Offer {
	return domain.Offer{
		Id:        uuid.NewString(),
		Direction: domain.OfferDirectionBuy,
		Amount:    100000,
		MinAmount: 10000,
	}
}
