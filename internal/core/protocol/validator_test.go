package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escrow-network/escrowd/internal/core/protocol"
)

func TestCheckTradeId(t *testing.T) {
	msg := &protocol.PayoutPublished{TradeId: "trade-1", PayoutTxId: "tx"}

	require.NoError(t, protocol.CheckTradeId("trade-1", msg))
	require.ErrorIs(t,
		protocol.CheckTradeId("trade-2", msg), protocol.ErrTradeIdMismatch,
	)
	require.ErrorIs(t,
		protocol.CheckTradeId("", msg), protocol.ErrNullTradeId,
	)
	require.ErrorIs(t,
		protocol.CheckTradeId("trade-1", &protocol.PayoutPublished{}),
		protocol.ErrNullTradeId,
	)
}

func TestNonEmptyString(t *testing.T) {
	value, err := protocol.NonEmptyString("field", "value")
	require.NoError(t, err)
	require.Equal(t, "value", value)

	_, err = protocol.NonEmptyString("field", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "field")
}

func TestNonZeroAmount(t *testing.T) {
	amount, err := protocol.NonZeroAmount("amount", 42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), amount)

	_, err = protocol.NonZeroAmount("amount", 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "amount")
}
