package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/escrow-network/escrowd/internal/config"
	"github.com/escrow-network/escrowd/internal/core/domain"
	"github.com/escrow-network/escrowd/internal/core/protocol"
	"github.com/escrow-network/escrowd/internal/core/protocol/offerer"
	"github.com/escrow-network/escrowd/internal/core/protocol/taker"
	"github.com/escrow-network/escrowd/internal/infrastructure/signer"
	dbbadger "github.com/escrow-network/escrowd/internal/infrastructure/storage/db/badger"
	wstransport "github.com/escrow-network/escrowd/internal/infrastructure/transport/websocket"
	btcwallet "github.com/escrow-network/escrowd/internal/infrastructure/wallet/btc"
	"github.com/escrow-network/escrowd/pkg/explorer/esplora"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	if err := run(); err != nil {
		log.WithError(err).Fatal("daemon exited with error")
	}
	log.Info("exiting")
}

func run() error {
	netParams, err := config.GetNetworkParams()
	if err != nil {
		return err
	}

	rawKey, err := hex.DecodeString(config.GetString(config.WalletKeyKey))
	if err != nil {
		return fmt.Errorf("decoding wallet key: %w", err)
	}
	privKey, _ := btcec.PrivKeyFromBytes(rawKey)

	explorerSvc, err := esplora.NewService(config.GetString(config.ExplorerUrlKey))
	if err != nil {
		return fmt.Errorf("connecting to explorer: %w", err)
	}
	walletSvc := btcwallet.NewService(
		netParams, privKey, explorerSvc, config.GetString(config.FeeAddressKey),
	)

	dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
	dbManager, err := dbbadger.NewDbManager(dbDir, log.StandardLogger())
	if err != nil {
		return fmt.Errorf("opening db: %w", err)
	}
	defer dbManager.Close()
	tradeRepository := dbbadger.NewTradeRepositoryImpl(dbManager)

	messengerSvc := wstransport.NewService()
	defer messengerSvc.Close()

	offer, err := loadOffer(config.GetString(config.OfferFileKey), walletSvc)
	if err != nil {
		return err
	}

	model := &protocol.Context{
		Offer:            *offer,
		Wallet:           walletSvc,
		Messenger:        messengerSvc,
		Signer:           signer.NewService(),
		Trades:           tradeRepository,
		AccountId:        config.GetString(config.AccountIdKey),
		BankAccountId:    config.GetString(config.BankAccountIdKey),
		AccountKeyHex:    config.GetString(config.WalletKeyKey),
		MessagePubKeyHex: walletSvc.PubKeyHex(),
		PayoutAddress:    config.GetString(config.PayoutAddressKey),
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/ws", messengerSvc)
	server := &http.Server{
		Addr:    config.GetString(config.ListenAddrKey),
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("peer transport listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	switch config.GetString(config.RoleKey) {
	case "offerer":
		p := offerer.New(model, offerer.Handlers{})
		p.Start()
		defer p.Cleanup()
		log.Infof("serving offer %s as offerer", offer.Id)
		go commandLoop(ctx, offererCommands(p))
	case "taker":
		peer, err := messengerSvc.Connect(ctx, config.GetString(config.PeerAddrKey))
		if err != nil {
			return err
		}
		model.Peer = peer
		p := taker.New(model, taker.Handlers{})
		p.Start()
		defer p.Cleanup()
		log.Infof("connected to offerer %s for offer %s", peer.Address(), offer.Id)
		go commandLoop(ctx, takerCommands(p))
	}

	return g.Wait()
}

// loadOffer reads the offer description from the configured JSON file.
// A missing id is generated; a missing message pubkey defaults to the
// wallet key.
func loadOffer(path string, wallet *btcwallet.Service) (*domain.Offer, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("missing offer file")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading offer file: %w", err)
	}

	offer := &domain.Offer{}
	if err := json.Unmarshal(raw, offer); err != nil {
		return nil, fmt.Errorf("parsing offer file: %w", err)
	}
	if len(offer.Id) == 0 {
		offer.Id = uuid.NewString()
	}
	if len(offer.MessagePubKeyHex) == 0 {
		offer.MessagePubKeyHex = wallet.PubKeyHex()
	}
	if offer.Amount == 0 {
		return nil, fmt.Errorf("offer amount must be positive")
	}
	return offer, nil
}

// commandLoop reads trade commands from stdin until the daemon stops.
func commandLoop(ctx context.Context, commands map[string]func(args []string) error) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, ok := commands[fields[0]]
		if !ok {
			log.Errorf("unknown command %s", fields[0])
			continue
		}
		if err := cmd(fields[1:]); err != nil {
			log.WithError(err).Errorf("command %s failed", fields[0])
		}
	}
}

func offererCommands(p *offerer.Protocol) map[string]func(args []string) error {
	return map[string]func(args []string) error{
		// paid: the offerer confirms the fiat transfer was sent.
		"paid": func([]string) error {
			p.HandleBankTransferStarted()
			return nil
		},
	}
}

func takerCommands(p *taker.Protocol) map[string]func(args []string) error {
	return map[string]func(args []string) error{
		// take <amount>: take the served offer for the given satoshis.
		"take": func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: take <amount>")
			}
			amount, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %s", args[0])
			}
			p.HandleTakeOffer(amount)
			return nil
		},
	}
}
