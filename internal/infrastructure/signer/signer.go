// Package signer implements contract signing over secp256k1 keys. Both
// trading peers sign the canonical contract JSON with their message key
// and verify the counterparty's signature before funding the escrow.
package signer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/escrow-network/escrowd/internal/core/ports"
)

type service struct{}

// NewService returns a SignatureService producing DER-encoded ECDSA
// signatures over the sha256 digest of the payload.
func NewService() ports.SignatureService {
	return &service{}
}

func (s *service) Sign(privKeyHex string, payload []byte) (string, error) {
	raw, err := hex.DecodeString(privKeyHex)
	if err != nil {
		return "", fmt.Errorf("decoding private key: %w", err)
	}
	privKey, _ := btcec.PrivKeyFromBytes(raw)

	digest := sha256.Sum256(payload)
	sig := ecdsa.Sign(privKey, digest[:])
	return hex.EncodeToString(sig.Serialize()), nil
}

func (s *service) Verify(pubKeyHex string, payload []byte, sigHex string) error {
	rawKey, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return fmt.Errorf("decoding public key: %w", err)
	}
	pubKey, err := btcec.ParsePubKey(rawKey)
	if err != nil {
		return fmt.Errorf("parsing public key: %w", err)
	}

	rawSig, err := hex.DecodeString(sigHex)
	if err != nil {
		return fmt.Errorf("decoding signature: %w", err)
	}
	sig, err := ecdsa.ParseDERSignature(rawSig)
	if err != nil {
		return fmt.Errorf("parsing signature: %w", err)
	}

	digest := sha256.Sum256(payload)
	if !sig.Verify(digest[:], pubKey) {
		return fmt.Errorf("signature does not match public key %s", pubKeyHex)
	}
	return nil
}
