package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var datadirFlag = &cli.StringFlag{
	Name:  "datadir",
	Usage: "data directory of the escrowd daemon",
	Value: btcutil.AppDataDir("escrowd", false),
}

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "escrow trader CLI"
	app.Usage = "command line interface for inspecting escrowd trades"
	app.Flags = []cli.Flag{datadirFlag}
	app.Commands = append(
		app.Commands,
		&listtrades,
		&showtrade,
		&tradebytx,
		&completedtrades,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	log.Errorf("%v", err)
	os.Exit(1)
}

func printJSON(v interface{}) {
	fmt.Println(toJSON(v))
}
