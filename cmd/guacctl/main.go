package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[guacctl] %v\n", err)
	os.Exit(1)
}

func main() {
	app := cli.NewApp()
	app.Name = "guacctl"
	app.Version = "0.1"
	app.Usage = "control plane for a guacd payment channel daemon"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rpcserver",
			Value: "localhost:9736",
			Usage: "host:port of guacd's UserApi",
		},
	}
	app.Commands = []cli.Command{
		fillChannelCommand,
		withdrawCommand,
		makePaymentCommand,
		checkAccrualCommand,
		checkMyBalanceCommand,
		getStateCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
