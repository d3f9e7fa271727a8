package btcwallet

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	log "github.com/sirupsen/logrus"

	"github.com/escrow-network/escrowd/internal/core/ports"
)

// PrepareDepositTx builds the unsigned escrow deposit transaction: one
// bare 2-of-2 multisig output over both parties' trade pubkeys, funded
// so far only by the offerer's input. The offerer key always comes
// first in the script; the payout signatures must follow that order.
func (s *Service) PrepareDepositTx(
	_ context.Context, params ports.PrepareDepositTxParams,
) (string, error) {
	script, err := multisigScript(params.OffererPubKey, params.TakerPubKey, s.net)
	if err != nil {
		return "", err
	}

	tx, _, err := s.newFundedTx(params.OffererInputAmount)
	if err != nil {
		return "", err
	}
	tx.AddTxOut(newTxOut(params.DepositAmount, script))

	log.WithField("trade", params.TradeId).Trace("deposit tx prepared")
	return serializeTx(tx)
}

// SignDepositTx adds the taker's funding input for the given
// contribution and signs it. The offerer's input stays unsigned.
func (s *Service) SignDepositTx(
	_ context.Context, preparedTxHex string, inputAmount uint64,
) (string, error) {
	tx, err := deserializeTx(preparedTxHex)
	if err != nil {
		return "", err
	}

	utxo, err := s.popSpendableOutput(inputAmount + txFee)
	if err != nil {
		return "", err
	}
	outpoint, err := newOutPoint(utxo.TxId, utxo.Vout)
	if err != nil {
		return "", err
	}
	tx.AddTxIn(wire.NewTxIn(outpoint, nil, nil))

	pkScript, err := s.ownPkScript()
	if err != nil {
		return "", err
	}
	idx := len(tx.TxIn) - 1
	sigScript, err := txscript.SignatureScript(
		tx, idx, pkScript, txscript.SigHashAll, s.privKey, true,
	)
	if err != nil {
		return "", fmt.Errorf("signing taker input: %w", err)
	}
	tx.TxIn[idx].SignatureScript = sigScript

	return serializeTx(tx)
}

// SignAndPublishDepositTx counter-signs the offerer's inputs of the
// taker-signed deposit transaction and broadcasts it.
func (s *Service) SignAndPublishDepositTx(
	_ context.Context, params ports.SignDepositTxParams,
) (*ports.Transaction, error) {
	tx, err := deserializeTx(params.SignedTakerDepositTxHex)
	if err != nil {
		return nil, err
	}

	if err := s.signOwnInputs(tx); err != nil {
		return nil, err
	}

	txHex, err := serializeTx(tx)
	if err != nil {
		return nil, err
	}
	txId, err := s.explorer.BroadcastTransaction(txHex)
	if err != nil {
		return nil, fmt.Errorf("broadcasting deposit tx: %w", err)
	}

	log.WithField("trade", params.TradeId).Debugf("deposit tx %s published", txId)
	return &ports.Transaction{TxId: txId, TxHex: txHex}, nil
}

// multisigScript builds the bare 2-of-2 multisig script over the given
// compressed pubkeys, offerer first.
func multisigScript(offererPubKeyHex, takerPubKeyHex string, net *chaincfg.Params) ([]byte, error) {
	offererAddr, err := pubKeyAddress(offererPubKeyHex, net)
	if err != nil {
		return nil, fmt.Errorf("offerer pubkey: %w", err)
	}
	takerAddr, err := pubKeyAddress(takerPubKeyHex, net)
	if err != nil {
		return nil, fmt.Errorf("taker pubkey: %w", err)
	}
	return txscript.MultiSigScript(
		[]*btcutil.AddressPubKey{offererAddr, takerAddr}, 2,
	)
}

func pubKeyAddress(pubKeyHex string, net *chaincfg.Params) (*btcutil.AddressPubKey, error) {
	raw, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return nil, err
	}
	return btcutil.NewAddressPubKey(raw, net)
}
