package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/escrow-network/escrowd/internal/core/domain"
	dbbadger "github.com/escrow-network/escrowd/internal/infrastructure/storage/db/badger"
)

var listtrades = cli.Command{
	Name:   "listtrades",
	Usage:  "list all trades known to the daemon",
	Action: listTradesAction,
}

var completedtrades = cli.Command{
	Name:   "completedtrades",
	Usage:  "list all successfully settled trades",
	Action: completedTradesAction,
}

var showtrade = cli.Command{
	Name:      "trade",
	Usage:     "show one trade by id",
	ArgsUsage: "<tradeId>",
	Action:    showTradeAction,
}

var tradebytx = cli.Command{
	Name:      "tradebytx",
	Usage:     "show the trade referencing the given deposit or payout transaction",
	ArgsUsage: "<txId>",
	Action:    showTradeByTxAction,
}

func listTradesAction(ctx *cli.Context) error {
	return withTradeRepository(ctx, func(repo domain.TradeRepository) error {
		trades, err := repo.GetAllTrades(context.Background())
		if err != nil {
			return err
		}
		printJSON(trades)
		return nil
	})
}

func completedTradesAction(ctx *cli.Context) error {
	return withTradeRepository(ctx, func(repo domain.TradeRepository) error {
		trades, err := repo.GetCompletedTrades(context.Background())
		if err != nil {
			return err
		}
		printJSON(trades)
		return nil
	})
}

func showTradeAction(ctx *cli.Context) error {
	tradeId := ctx.Args().First()
	if len(tradeId) == 0 {
		return fmt.Errorf("missing trade id")
	}

	return withTradeRepository(ctx, func(repo domain.TradeRepository) error {
		trade, err := repo.GetTrade(context.Background(), tradeId)
		if err != nil {
			return err
		}
		printJSON(trade)
		return nil
	})
}

func showTradeByTxAction(ctx *cli.Context) error {
	txId := ctx.Args().First()
	if len(txId) == 0 {
		return fmt.Errorf("missing transaction id")
	}

	return withTradeRepository(ctx, func(repo domain.TradeRepository) error {
		trade, err := repo.GetTradeByDepositTxId(context.Background(), txId)
		if err != nil {
			trade, err = repo.GetTradeByPayoutTxId(context.Background(), txId)
		}
		if err != nil {
			return err
		}
		printJSON(trade)
		return nil
	})
}

func withTradeRepository(
	ctx *cli.Context, fn func(repo domain.TradeRepository) error,
) error {
	dbDir := filepath.Join(ctx.String("datadir"), "db")
	dbManager, err := dbbadger.NewDbManager(dbDir, nil)
	if err != nil {
		return fmt.Errorf("opening db at %s: %w", dbDir, err)
	}
	defer dbManager.Close()

	return fn(dbbadger.NewTradeRepositoryImpl(dbManager))
}

func toJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
