package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Contract is the immutable snapshot of the agreed trade terms that both
// parties sign. The JSON serialization is the signing payload, so field
// order and types must never change once released: both signatures must
// cover byte-identical content.
type Contract struct {
	OfferId              string `json:"offerId"`
	Amount               uint64 `json:"amount"`
	TakeOfferFeeTxId     string `json:"takeOfferFeeTxId"`
	OffererAccountId     string `json:"offererAccountId"`
	TakerAccountId       string `json:"takerAccountId"`
	OffererBankAccount   string `json:"offererBankAccount"`
	TakerBankAccount     string `json:"takerBankAccount"`
	OffererMessagePubKey string `json:"offererMessagePubKey"`
	TakerMessagePubKey   string `json:"takerMessagePubKey"`
}

// Marshal returns the deterministic signing payload of the contract.
// encoding/json writes struct fields in declaration order, which makes
// the output stable across both parties.
func (c Contract) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Hash returns the hex-encoded sha256 of the signing payload.
func (c Contract) Hash() (string, error) {
	buf, err := c.Marshal()
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(buf)
	return hex.EncodeToString(h[:]), nil
}
