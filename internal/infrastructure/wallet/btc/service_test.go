package btcwallet

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"

	"github.com/escrow-network/escrowd/internal/core/domain"
	"github.com/escrow-network/escrowd/internal/core/ports"
	"github.com/escrow-network/escrowd/pkg/explorer"
)

const (
	tradeAmount   = uint64(50000)
	fundingTxId   = "abababababababababababababababababababababababababababababababab"
	fundingTxId2  = "cdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcd"
	broadcastTxId = "feedfeedfeedfeedfeedfeedfeedfeedfeedfeedfeedfeedfeedfeedfeedfeed"
)

// stubExplorer satisfies explorer.Service without touching the network.
type stubExplorer struct {
	broadcasts []string
}

func (e *stubExplorer) BroadcastTransaction(txHex string) (string, error) {
	e.broadcasts = append(e.broadcasts, txHex)
	return broadcastTxId, nil
}

func (e *stubExplorer) GetTransactionStatus(_ string) (*explorer.TxStatus, error) {
	return &explorer.TxStatus{Confirmed: true}, nil
}

func newTestWallet(t *testing.T) (*Service, *stubExplorer) {
	t.Helper()
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	exp := &stubExplorer{}
	svc := NewService(
		&chaincfg.RegressionNetParams, privKey, exp, newTestAddress(t),
	)
	return svc, exp
}

func newTestAddress(t *testing.T) string {
	t.Helper()
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	svc := NewService(&chaincfg.RegressionNetParams, privKey, nil, "")
	addr, err := svc.Address()
	require.NoError(t, err)
	return addr.EncodeAddress()
}

func TestPayTakeOfferFee(t *testing.T) {
	wallet, exp := newTestWallet(t)
	wallet.AddSpendableOutput(Utxo{TxId: fundingTxId, Vout: 0, Amount: 50000})

	feeTxId, err := wallet.PayTakeOfferFee(context.Background(), "trade-1")
	require.NoError(t, err)
	require.Equal(t, broadcastTxId, feeTxId)
	require.Len(t, exp.broadcasts, 1)

	tx, err := deserializeTx(exp.broadcasts[0])
	require.NoError(t, err)
	require.Len(t, tx.TxIn, 1)
	require.NotEmpty(t, tx.TxIn[0].SignatureScript)
	// Fee output plus change.
	require.Len(t, tx.TxOut, 2)
	require.Equal(t, int64(domain.TakeOfferFee), tx.TxOut[0].Value)
	require.Equal(t, int64(50000-domain.TakeOfferFee-txFee), tx.TxOut[1].Value)
}

func TestPayTakeOfferFeeWithoutFunds(t *testing.T) {
	wallet, _ := newTestWallet(t)

	_, err := wallet.PayTakeOfferFee(context.Background(), "trade-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no spendable output")
}

func TestEscrowDepositFlow(t *testing.T) {
	offerer, offererExp := newTestWallet(t)
	taker, _ := newTestWallet(t)

	collateral := domain.CollateralAmount(tradeAmount)
	depositAmount := tradeAmount + 2*collateral

	offerer.AddSpendableOutput(Utxo{TxId: fundingTxId, Vout: 0, Amount: collateral + txFee})
	taker.AddSpendableOutput(Utxo{TxId: fundingTxId2, Vout: 1, Amount: tradeAmount + collateral + txFee})

	preparedHex, err := offerer.PrepareDepositTx(context.Background(), ports.PrepareDepositTxParams{
		TradeId:            "trade-1",
		OffererPubKey:      offerer.PubKeyHex(),
		TakerPubKey:        taker.PubKeyHex(),
		DepositAmount:      depositAmount,
		OffererInputAmount: collateral,
	})
	require.NoError(t, err)

	prepared, err := deserializeTx(preparedHex)
	require.NoError(t, err)
	require.Len(t, prepared.TxIn, 1)
	require.Empty(t, prepared.TxIn[0].SignatureScript)
	require.Len(t, prepared.TxOut, 1)
	require.Equal(t, int64(depositAmount), prepared.TxOut[0].Value)

	// The escrow output is a bare 2-of-2 multisig.
	class := txscript.GetScriptClass(prepared.TxOut[0].PkScript)
	require.Equal(t, txscript.MultiSigTy, class)

	takerSignedHex, err := taker.SignDepositTx(
		context.Background(), preparedHex, tradeAmount+collateral,
	)
	require.NoError(t, err)

	takerSigned, err := deserializeTx(takerSignedHex)
	require.NoError(t, err)
	require.Len(t, takerSigned.TxIn, 2)
	require.Empty(t, takerSigned.TxIn[0].SignatureScript)
	require.NotEmpty(t, takerSigned.TxIn[1].SignatureScript)

	published, err := offerer.SignAndPublishDepositTx(context.Background(), ports.SignDepositTxParams{
		TradeId:                 "trade-1",
		PreparedDepositTxHex:    preparedHex,
		SignedTakerDepositTxHex: takerSignedHex,
	})
	require.NoError(t, err)
	require.Equal(t, broadcastTxId, published.TxId)
	require.Len(t, offererExp.broadcasts, 1)

	final, err := deserializeTx(published.TxHex)
	require.NoError(t, err)
	for _, txIn := range final.TxIn {
		require.NotEmpty(t, txIn.SignatureScript)
	}
}

func TestPayoutSignatureRoundtrip(t *testing.T) {
	offerer, _ := newTestWallet(t)
	taker, takerExp := newTestWallet(t)

	depositTxHex := newTestDepositTx(t, offerer, taker)
	collateral := domain.CollateralAmount(tradeAmount)
	offererPayback := tradeAmount + collateral - txFee/2
	takerPayback := collateral - txFee/2
	offererAddr := newTestAddress(t)
	takerAddr := newTestAddress(t)

	sig, err := offerer.SignPayoutTx(
		context.Background(), depositTxHex,
		offererPayback, takerPayback, offererAddr, takerAddr,
	)
	require.NoError(t, err)
	require.NotEmpty(t, sig.R)
	require.NotEmpty(t, sig.S)

	// The R/S components must reassemble into a signature that verifies
	// against the payout sighash under the offerer's key.
	payoutTx, redeemScript, err := offerer.buildPayoutTx(
		depositTxHex, offererPayback, takerPayback, offererAddr, takerAddr,
	)
	require.NoError(t, err)
	sigHash, err := txscript.CalcSignatureHash(
		redeemScript, txscript.SigHashAll, payoutTx, 0,
	)
	require.NoError(t, err)

	offererSig, err := signatureFromComponents(sig.R, sig.S)
	require.NoError(t, err)
	require.True(t, offererSig.Verify(sigHash, offerer.privKey.PubKey()))

	published, err := taker.SignAndBroadcastPayoutTx(context.Background(), ports.SignPayoutTxParams{
		TradeId:              "trade-1",
		DepositTxHex:         depositTxHex,
		OffererSignatureR:    sig.R,
		OffererSignatureS:    sig.S,
		OffererPaybackAmount: offererPayback,
		TakerPaybackAmount:   takerPayback,
		OffererPayoutAddress: offererAddr,
		TakerPayoutAddress:   takerAddr,
	})
	require.NoError(t, err)
	require.Len(t, takerExp.broadcasts, 1)

	payout, err := deserializeTx(published.TxHex)
	require.NoError(t, err)
	require.Len(t, payout.TxIn, 1)
	require.NotEmpty(t, payout.TxIn[0].SignatureScript)
	require.Len(t, payout.TxOut, 2)
	require.Equal(t, int64(offererPayback), payout.TxOut[0].Value)
	require.Equal(t, int64(takerPayback), payout.TxOut[1].Value)
}

func TestPayoutRejectsOverdrawnPaybacks(t *testing.T) {
	offerer, _ := newTestWallet(t)
	taker, _ := newTestWallet(t)

	depositTxHex := newTestDepositTx(t, offerer, taker)
	escrow := tradeAmount + 2*domain.CollateralAmount(tradeAmount)

	_, err := offerer.SignPayoutTx(
		context.Background(), depositTxHex,
		escrow, 1, newTestAddress(t), newTestAddress(t),
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceed escrow")
}

func TestPayoutRejectsWrappingPaybacks(t *testing.T) {
	offerer, _ := newTestWallet(t)
	taker, _ := newTestWallet(t)

	depositTxHex := newTestDepositTx(t, offerer, taker)

	// Hostile amounts whose sum wraps around uint64 must still be
	// rejected, not turned into negative outputs.
	_, err := offerer.SignPayoutTx(
		context.Background(), depositTxHex,
		math.MaxUint64-1, math.MaxUint64-1,
		newTestAddress(t), newTestAddress(t),
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceed escrow")
}

func TestWatchTxConfirmation(t *testing.T) {
	wallet, _ := newTestWallet(t)

	done := make(chan int, 1)
	wallet.WatchTxConfirmation(broadcastTxId, func(confirmations int) {
		done <- confirmations
	})

	select {
	case confirmations := <-done:
		require.Equal(t, 1, confirmations)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation callback not invoked")
	}
}

func TestSignatureComponentsRoundtrip(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	digest := []byte(strings.Repeat("x", 32))
	sig := ecdsa.Sign(privKey, digest)

	r, s, err := signatureComponents(sig)
	require.NoError(t, err)

	rebuilt, err := signatureFromComponents(r, s)
	require.NoError(t, err)
	require.Equal(t, sig.Serialize(), rebuilt.Serialize())
}

// newTestDepositTx builds a published escrow deposit between the two
// wallets and returns its hex.
func newTestDepositTx(t *testing.T, offerer, taker *Service) string {
	t.Helper()
	collateral := domain.CollateralAmount(tradeAmount)

	offerer.AddSpendableOutput(Utxo{TxId: fundingTxId, Vout: 0, Amount: collateral + txFee})
	taker.AddSpendableOutput(Utxo{TxId: fundingTxId2, Vout: 1, Amount: tradeAmount + collateral + txFee})

	preparedHex, err := offerer.PrepareDepositTx(context.Background(), ports.PrepareDepositTxParams{
		TradeId:            "trade-1",
		OffererPubKey:      offerer.PubKeyHex(),
		TakerPubKey:        taker.PubKeyHex(),
		DepositAmount:      tradeAmount + 2*collateral,
		OffererInputAmount: collateral,
	})
	require.NoError(t, err)

	takerSignedHex, err := taker.SignDepositTx(
		context.Background(), preparedHex, tradeAmount+collateral,
	)
	require.NoError(t, err)

	published, err := offerer.SignAndPublishDepositTx(context.Background(), ports.SignDepositTxParams{
		TradeId:                 "trade-1",
		PreparedDepositTxHex:    preparedHex,
		SignedTakerDepositTxHex: takerSignedHex,
	})
	require.NoError(t, err)
	return published.TxHex
}
