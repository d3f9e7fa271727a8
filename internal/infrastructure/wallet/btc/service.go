// Package btcwallet implements the escrow wallet on top of the btcsuite
// stack: building and signing the 2-of-2 multisig deposit transaction,
// assembling the payout transaction from both parties' signatures, and
// watching confirmations through a chain explorer.
package btcwallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/escrow-network/escrowd/internal/core/domain"
	"github.com/escrow-network/escrowd/internal/core/ports"
	"github.com/escrow-network/escrowd/pkg/explorer"
)

const (
	// txFee is the flat network fee in satoshis added to every
	// transaction the wallet builds.
	txFee = domain.TxFee
	// dustLimit is the minimum change output value in satoshis.
	dustLimit = 546

	confirmationPollInterval = 30 * time.Second
)

// Utxo is a spendable output owned by the wallet key.
type Utxo struct {
	TxId   string
	Vout   uint32
	Amount uint64
}

// Service implements ports.WalletService with a single wallet key and
// an explicit set of spendable outputs.
type Service struct {
	net        *chaincfg.Params
	privKey    *btcec.PrivateKey
	explorer   explorer.Service
	feeAddress string
	limiter    *rate.Limiter

	lock  sync.Mutex
	utxos []Utxo
}

// NewService returns a wallet service for the given network, signing
// key and chain explorer. feeAddress receives the take-offer fees.
func NewService(
	net *chaincfg.Params, privKey *btcec.PrivateKey,
	explorerSvc explorer.Service, feeAddress string,
) *Service {
	return &Service{
		net:        net,
		privKey:    privKey,
		explorer:   explorerSvc,
		feeAddress: feeAddress,
		limiter:    rate.NewLimiter(rate.Every(confirmationPollInterval), 1),
	}
}

// PubKeyHex returns the wallet's compressed public key in hex.
func (s *Service) PubKeyHex() string {
	return pubKeyToHex(s.privKey.PubKey())
}

// Address returns the wallet's P2PKH address.
func (s *Service) Address() (btcutil.Address, error) {
	return btcutil.NewAddressPubKeyHash(
		btcutil.Hash160(s.privKey.PubKey().SerializeCompressed()), s.net,
	)
}

// AddSpendableOutput registers an output the wallet may spend.
func (s *Service) AddSpendableOutput(utxo Utxo) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.utxos = append(s.utxos, utxo)
}

// PayTakeOfferFee pays the flat take-offer fee to the fee address and
// returns the fee txid.
func (s *Service) PayTakeOfferFee(_ context.Context, tradeId string) (string, error) {
	feeAddr, err := btcutil.DecodeAddress(s.feeAddress, s.net)
	if err != nil {
		return "", fmt.Errorf("decoding fee address: %w", err)
	}
	feeScript, err := txscript.PayToAddrScript(feeAddr)
	if err != nil {
		return "", err
	}

	tx, utxo, err := s.newFundedTx(domain.TakeOfferFee)
	if err != nil {
		return "", err
	}
	tx.AddTxOut(newTxOut(domain.TakeOfferFee, feeScript))
	if err := s.addChangeOutput(tx, utxo.Amount, domain.TakeOfferFee); err != nil {
		return "", err
	}
	if err := s.signOwnInputs(tx); err != nil {
		return "", err
	}

	txHex, err := serializeTx(tx)
	if err != nil {
		return "", err
	}
	txId, err := s.explorer.BroadcastTransaction(txHex)
	if err != nil {
		return "", fmt.Errorf("broadcasting fee tx: %w", err)
	}
	log.WithField("trade", tradeId).Debugf("take-offer fee paid with tx %s", txId)
	return txId, nil
}

// VerifyTakeOfferFeePayment checks that the fee transaction is known to
// the chain view.
func (s *Service) VerifyTakeOfferFeePayment(_ context.Context, feeTxId string) error {
	if _, err := s.explorer.GetTransactionStatus(feeTxId); err != nil {
		return fmt.Errorf("fee tx %s not found: %w", feeTxId, err)
	}
	return nil
}

// WatchTxConfirmation polls the chain view until the transaction
// confirms, then invokes onConfirmed once.
func (s *Service) WatchTxConfirmation(txId string, onConfirmed func(confirmations int)) {
	go func() {
		for {
			if err := s.limiter.Wait(context.Background()); err != nil {
				return
			}
			status, err := s.explorer.GetTransactionStatus(txId)
			if err != nil {
				log.WithError(err).Debugf("polling status of tx %s", txId)
				continue
			}
			if status.Confirmed {
				onConfirmed(1)
				return
			}
		}
	}()
}

var _ ports.WalletService = (*Service)(nil)
