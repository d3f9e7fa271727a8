package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/viper"
)

const (
	// ListenAddrKey is the host:port the peer message transport listens on
	ListenAddrKey = "LISTEN_ADDR"
	// DatadirKey is the local data directory to store the internal state of the daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NetworkKey selects the bitcoin network: mainnet, testnet or regtest
	NetworkKey = "NETWORK"
	// ExplorerUrlKey is the base url of the esplora chain explorer to poll
	ExplorerUrlKey = "EXPLORER_URL"
	// FeeAddressKey is the address receiving take-offer fees
	FeeAddressKey = "FEE_ADDRESS"
	// WalletKeyKey is the hex-encoded private key of the trading wallet
	WalletKeyKey = "WALLET_KEY"
	// AccountIdKey is the trader's registration account id
	AccountIdKey = "ACCOUNT_ID"
	// BankAccountIdKey is the trader's fiat bank account id
	BankAccountIdKey = "BANK_ACCOUNT_ID"
	// PayoutAddressKey is the address receiving this trader's share of the escrow payout
	PayoutAddressKey = "PAYOUT_ADDRESS"
	// OfferFileKey is the path of the JSON file describing the offer the daemon serves
	OfferFileKey = "OFFER_FILE"
	// RoleKey selects the trade role played by the daemon: offerer or taker
	RoleKey = "ROLE"
	// PeerAddrKey is the host:port of the offerer to connect to, only used in the taker role
	PeerAddrKey = "PEER_ADDR"

	DbLocation = "db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("escrowd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("ESCROWD")
	vip.AutomaticEnv()

	vip.SetDefault(ListenAddrKey, ":9931")
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(NetworkKey, "regtest")
	vip.SetDefault(ExplorerUrlKey, "http://localhost:3001")
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(RoleKey, "offerer")

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetNetworkParams maps the configured network name to its chain
// parameters.
func GetNetworkParams() (*chaincfg.Params, error) {
	switch network := GetString(NetworkKey); network {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %s", network)
	}
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if _, err := GetNetworkParams(); err != nil {
		return err
	}

	if !vip.IsSet(WalletKeyKey) {
		return fmt.Errorf("missing wallet key")
	}
	if !vip.IsSet(FeeAddressKey) {
		return fmt.Errorf("missing fee address")
	}
	if !vip.IsSet(PayoutAddressKey) {
		return fmt.Errorf("missing payout address")
	}

	switch role := GetString(RoleKey); role {
	case "offerer":
	case "taker":
		if !vip.IsSet(PeerAddrKey) {
			return fmt.Errorf("taker role requires a peer address")
		}
	default:
		return fmt.Errorf("unknown role %s", role)
	}

	return nil
}

func initDatadir() error {
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
