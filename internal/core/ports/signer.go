package ports

// SignatureService signs and verifies contract payloads with the
// parties' long-lived account keys.
type SignatureService interface {
	// Sign returns the hex-encoded signature of payload under the given
	// hex-encoded private key.
	Sign(privKeyHex string, payload []byte) (string, error)
	// Verify reports whether sig is a valid signature of payload under
	// the given hex-encoded public key.
	Verify(pubKeyHex string, payload []byte, sigHex string) error
}
