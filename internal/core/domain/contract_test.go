package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escrow-network/escrowd/internal/core/domain"
)

func TestContractMarshalIsDeterministic(t *testing.T) {
	contract := newTestContract()
	other := newTestContract()

	payload, err := contract.Marshal()
	require.NoError(t, err)
	otherPayload, err := other.Marshal()
	require.NoError(t, err)
	require.Equal(t, payload, otherPayload)

	hash, err := contract.Hash()
	require.NoError(t, err)
	otherHash, err := other.Hash()
	require.NoError(t, err)
	require.Equal(t, hash, otherHash)
	require.Len(t, hash, 64)
}

func TestContractHashCoversEveryField(t *testing.T) {
	baseHash, err := newTestContract().Hash()
	require.NoError(t, err)

	mutations := []func(c *domain.Contract){
		func(c *domain.Contract) { c.OfferId = "other" },
		func(c *domain.Contract) { c.Amount = 1 },
		func(c *domain.Contract) { c.TakeOfferFeeTxId = "other" },
		func(c *domain.Contract) { c.OffererAccountId = "other" },
		func(c *domain.Contract) { c.TakerAccountId = "other" },
		func(c *domain.Contract) { c.OffererBankAccount = "other" },
		func(c *domain.Contract) { c.TakerBankAccount = "other" },
		func(c *domain.Contract) { c.OffererMessagePubKey = "other" },
		func(c *domain.Contract) { c.TakerMessagePubKey = "other" },
	}

	for _, mutate := range mutations {
		contract := newTestContract()
		mutate(&contract)
		hash, err := contract.Hash()
		require.NoError(t, err)
		require.NotEqual(t, baseHash, hash)
	}
}

func newTestContract() domain.Contract {
	return domain.Contract{
		OfferId:              "offer-1",
		Amount:               50000,
		TakeOfferFeeTxId:     "feetx",
		OffererAccountId:     "offerer-account",
		TakerAccountId:       "taker-account",
		OffererBankAccount:   "offerer-bank",
		TakerBankAccount:     "taker-bank",
		OffererMessagePubKey: "offerer-pubkey",
		TakerMessagePubKey:   "taker-pubkey",
	}
}
