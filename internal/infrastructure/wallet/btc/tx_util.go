package btcwallet

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

func serializeTx(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

func deserializeTx(txHex string) (*wire.MsgTx, error) {
	raw, err := hex.DecodeString(txHex)
	if err != nil {
		return nil, fmt.Errorf("decoding tx hex: %w", err)
	}
	tx := &wire.MsgTx{}
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("deserializing tx: %w", err)
	}
	return tx, nil
}

func newTxOut(amount uint64, pkScript []byte) *wire.TxOut {
	return wire.NewTxOut(int64(amount), pkScript)
}

func newOutPoint(txId string, vout uint32) (*wire.OutPoint, error) {
	hash, err := chainhash.NewHashFromStr(txId)
	if err != nil {
		return nil, fmt.Errorf("parsing txid %s: %w", txId, err)
	}
	return wire.NewOutPoint(hash, vout), nil
}

func pubKeyToHex(pubKey *btcec.PublicKey) string {
	return hex.EncodeToString(pubKey.SerializeCompressed())
}

// newFundedTx starts a transaction funded with one spendable output
// covering amount plus the flat network fee. The consumed utxo is
// removed from the spendable set.
func (s *Service) newFundedTx(amount uint64) (*wire.MsgTx, Utxo, error) {
	utxo, err := s.popSpendableOutput(amount + txFee)
	if err != nil {
		return nil, Utxo{}, err
	}

	outpoint, err := newOutPoint(utxo.TxId, utxo.Vout)
	if err != nil {
		return nil, Utxo{}, err
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(outpoint, nil, nil))
	return tx, utxo, nil
}

func (s *Service) popSpendableOutput(minAmount uint64) (Utxo, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for i, utxo := range s.utxos {
		if utxo.Amount >= minAmount {
			s.utxos = append(s.utxos[:i], s.utxos[i+1:]...)
			return utxo, nil
		}
	}
	return Utxo{}, fmt.Errorf("no spendable output covers %d satoshis", minAmount)
}

// addChangeOutput pays the difference between the funding amount and
// the spent amount plus fee back to the wallet, unless it is dust.
func (s *Service) addChangeOutput(tx *wire.MsgTx, funded, spent uint64) error {
	if funded < spent+txFee {
		return fmt.Errorf("funding amount %d below spent %d plus fee", funded, spent)
	}
	change := funded - spent - txFee
	if change <= dustLimit {
		return nil
	}

	addr, err := s.Address()
	if err != nil {
		return err
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return err
	}
	tx.AddTxOut(newTxOut(change, script))
	return nil
}

// ownPkScript returns the wallet's P2PKH output script, used as the
// subscript when signing its own inputs.
func (s *Service) ownPkScript() ([]byte, error) {
	addr, err := s.Address()
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(addr)
}

// signOwnInputs signs every input of the transaction that has no
// signature script yet, assuming they all spend wallet-owned P2PKH
// outputs.
func (s *Service) signOwnInputs(tx *wire.MsgTx) error {
	pkScript, err := s.ownPkScript()
	if err != nil {
		return err
	}
	for i, txIn := range tx.TxIn {
		if len(txIn.SignatureScript) > 0 {
			continue
		}
		sigScript, err := txscript.SignatureScript(
			tx, i, pkScript, txscript.SigHashAll, s.privKey, true,
		)
		if err != nil {
			return fmt.Errorf("signing input %d: %w", i, err)
		}
		txIn.SignatureScript = sigScript
	}
	return nil
}
