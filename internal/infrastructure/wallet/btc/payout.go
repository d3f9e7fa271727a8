package btcwallet

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	log "github.com/sirupsen/logrus"

	"github.com/escrow-network/escrowd/internal/core/ports"
)

// SignPayoutTx builds the payout transaction spending the escrow output
// and produces the wallet's detached signature over it, as raw R/S
// components ready to be sent to the counterparty.
func (s *Service) SignPayoutTx(
	_ context.Context,
	depositTxHex string, offererPayback, takerPayback uint64,
	offererPayoutAddress, takerPayoutAddress string,
) (*ports.PayoutSignature, error) {
	payoutTx, redeemScript, err := s.buildPayoutTx(
		depositTxHex, offererPayback, takerPayback,
		offererPayoutAddress, takerPayoutAddress,
	)
	if err != nil {
		return nil, err
	}

	sigHash, err := txscript.CalcSignatureHash(
		redeemScript, txscript.SigHashAll, payoutTx, 0,
	)
	if err != nil {
		return nil, fmt.Errorf("computing payout sighash: %w", err)
	}

	sig := ecdsa.Sign(s.privKey, sigHash)
	r, sComp, err := signatureComponents(sig)
	if err != nil {
		return nil, err
	}
	return &ports.PayoutSignature{R: r, S: sComp}, nil
}

// SignAndBroadcastPayoutTx rebuilds the payout transaction, assembles
// the offerer's and the wallet's own signatures into the multisig
// script sig and broadcasts the result.
func (s *Service) SignAndBroadcastPayoutTx(
	_ context.Context, params ports.SignPayoutTxParams,
) (*ports.Transaction, error) {
	payoutTx, redeemScript, err := s.buildPayoutTx(
		params.DepositTxHex,
		params.OffererPaybackAmount, params.TakerPaybackAmount,
		params.OffererPayoutAddress, params.TakerPayoutAddress,
	)
	if err != nil {
		return nil, err
	}

	sigHash, err := txscript.CalcSignatureHash(
		redeemScript, txscript.SigHashAll, payoutTx, 0,
	)
	if err != nil {
		return nil, fmt.Errorf("computing payout sighash: %w", err)
	}

	offererSig, err := signatureFromComponents(
		params.OffererSignatureR, params.OffererSignatureS,
	)
	if err != nil {
		return nil, fmt.Errorf("reassembling offerer signature: %w", err)
	}
	takerSig := ecdsa.Sign(s.privKey, sigHash)

	// Signature order must match the pubkey order in the multisig
	// script: offerer first.
	scriptSig, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_FALSE).
		AddData(append(offererSig.Serialize(), byte(txscript.SigHashAll))).
		AddData(append(takerSig.Serialize(), byte(txscript.SigHashAll))).
		Script()
	if err != nil {
		return nil, err
	}
	payoutTx.TxIn[0].SignatureScript = scriptSig

	txHex, err := serializeTx(payoutTx)
	if err != nil {
		return nil, err
	}
	txId, err := s.explorer.BroadcastTransaction(txHex)
	if err != nil {
		return nil, fmt.Errorf("broadcasting payout tx: %w", err)
	}

	log.WithField("trade", params.TradeId).Debugf("payout tx %s published", txId)
	return &ports.Transaction{TxId: txId, TxHex: txHex}, nil
}

// buildPayoutTx derives the deterministic payout transaction both
// parties sign: it spends the first output of the deposit transaction
// and pays the agreed amounts back to each party.
func (s *Service) buildPayoutTx(
	depositTxHex string, offererPayback, takerPayback uint64,
	offererPayoutAddress, takerPayoutAddress string,
) (*wire.MsgTx, []byte, error) {
	depositTx, err := deserializeTx(depositTxHex)
	if err != nil {
		return nil, nil, err
	}
	if len(depositTx.TxOut) == 0 {
		return nil, nil, fmt.Errorf("deposit tx has no outputs")
	}
	redeemScript := depositTx.TxOut[0].PkScript
	if depositTx.TxOut[0].Value <= 0 {
		return nil, nil, fmt.Errorf("deposit tx escrow output has no value")
	}

	// Each payback is bounded by the escrow before summing, so wire
	// amounts near MaxUint64 cannot wrap the addition below.
	escrowAmount := uint64(depositTx.TxOut[0].Value)
	if offererPayback > escrowAmount || takerPayback > escrowAmount ||
		offererPayback+takerPayback+txFee > escrowAmount {
		return nil, nil, fmt.Errorf(
			"payback amounts %d+%d exceed escrow %d minus fee",
			offererPayback, takerPayback, escrowAmount,
		)
	}

	offererScript, err := s.payoutScript(offererPayoutAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("offerer payout address: %w", err)
	}
	takerScript, err := s.payoutScript(takerPayoutAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("taker payout address: %w", err)
	}

	depositHash := depositTx.TxHash()
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&depositHash, 0), nil, nil))
	tx.AddTxOut(newTxOut(offererPayback, offererScript))
	tx.AddTxOut(newTxOut(takerPayback, takerScript))
	return tx, redeemScript, nil
}

func (s *Service) payoutScript(address string) ([]byte, error) {
	addr, err := btcutil.DecodeAddress(address, s.net)
	if err != nil {
		return nil, err
	}
	if !addr.IsForNet(s.net) {
		return nil, fmt.Errorf("address %s not valid for network %s", address, s.net.Name)
	}
	return txscript.PayToAddrScript(addr)
}

// signatureComponents splits a DER signature into its hex-encoded R and
// S components.
func signatureComponents(sig *ecdsa.Signature) (string, string, error) {
	der := sig.Serialize()
	r, sComp, err := parseDERComponents(der)
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(r), hex.EncodeToString(sComp), nil
}

// signatureFromComponents rebuilds a signature from hex-encoded R and S
// components.
func signatureFromComponents(rHex, sHex string) (*ecdsa.Signature, error) {
	rBytes, err := hex.DecodeString(rHex)
	if err != nil {
		return nil, fmt.Errorf("decoding R: %w", err)
	}
	sBytes, err := hex.DecodeString(sHex)
	if err != nil {
		return nil, fmt.Errorf("decoding S: %w", err)
	}

	var r, sScalar btcec.ModNScalar
	if overflow := r.SetByteSlice(rBytes); overflow {
		return nil, fmt.Errorf("R overflows curve order")
	}
	if overflow := sScalar.SetByteSlice(sBytes); overflow {
		return nil, fmt.Errorf("S overflows curve order")
	}
	return ecdsa.NewSignature(&r, &sScalar), nil
}

// parseDERComponents extracts the R and S integers from a DER-encoded
// ECDSA signature.
func parseDERComponents(der []byte) ([]byte, []byte, error) {
	// 0x30 <len> 0x02 <rlen> R 0x02 <slen> S
	if len(der) < 8 || der[0] != 0x30 || der[2] != 0x02 {
		return nil, nil, fmt.Errorf("malformed DER signature")
	}
	rLen := int(der[3])
	if len(der) < 4+rLen+2 {
		return nil, nil, fmt.Errorf("malformed DER signature")
	}
	r := der[4 : 4+rLen]

	if der[4+rLen] != 0x02 {
		return nil, nil, fmt.Errorf("malformed DER signature")
	}
	sLen := int(der[5+rLen])
	if len(der) < 6+rLen+sLen {
		return nil, nil, fmt.Errorf("malformed DER signature")
	}
	sComp := der[6+rLen : 6+rLen+sLen]
	return r, sComp, nil
}
