package signer_test

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/escrow-network/escrowd/internal/infrastructure/signer"
)

func TestSignAndVerify(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	privKeyHex := hex.EncodeToString(privKey.Serialize())
	pubKeyHex := hex.EncodeToString(privKey.PubKey().SerializeCompressed())

	svc := signer.NewService()
	payload := []byte(`{"offerId":"offer-1","amount":50000}`)

	sig, err := svc.Sign(privKeyHex, payload)
	require.NoError(t, err)
	require.NotEmpty(t, sig)

	require.NoError(t, svc.Verify(pubKeyHex, payload, sig))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	otherKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	svc := signer.NewService()
	payload := []byte("signed terms")

	sig, err := svc.Sign(hex.EncodeToString(privKey.Serialize()), payload)
	require.NoError(t, err)

	otherPubKeyHex := hex.EncodeToString(otherKey.PubKey().SerializeCompressed())
	require.Error(t, svc.Verify(otherPubKeyHex, payload, sig))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	privKeyHex := hex.EncodeToString(privKey.Serialize())
	pubKeyHex := hex.EncodeToString(privKey.PubKey().SerializeCompressed())

	svc := signer.NewService()

	sig, err := svc.Sign(privKeyHex, []byte("original terms"))
	require.NoError(t, err)

	require.Error(t, svc.Verify(pubKeyHex, []byte("tampered terms"), sig))
}

func TestVerifyRejectsGarbageInput(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pubKeyHex := hex.EncodeToString(privKey.PubKey().SerializeCompressed())

	svc := signer.NewService()

	require.Error(t, svc.Verify("zz", []byte("payload"), "aa"))
	require.Error(t, svc.Verify(pubKeyHex, []byte("payload"), "not-hex"))
	require.Error(t, svc.Verify(pubKeyHex, []byte("payload"), "abcd"))
}
