// Package explorer exposes the minimal chain view the escrow wallet
// needs: broadcasting raw transactions and polling their confirmation
// status through an esplora-compatible HTTP API.
package explorer

// TxStatus is the confirmation status of a transaction.
type TxStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int64  `json:"block_height"`
	BlockHash   string `json:"block_hash"`
}

// Service is the interface for the chain explorer.
type Service interface {
	// BroadcastTransaction publishes the raw transaction and returns its
	// txid.
	BroadcastTransaction(txHex string) (string, error)
	// GetTransactionStatus returns the confirmation status of the given
	// transaction.
	GetTransactionStatus(txId string) (*TxStatus, error)
}
