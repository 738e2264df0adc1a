package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/urfave/cli"
)

func userAPIURL(ctx *cli.Context, path string) string {
	return fmt.Sprintf("http://%s/guac/userapi/v1/%s", ctx.GlobalString("rpcserver"), path)
}

func postJSON(url string, req, resp any) error {
	buf, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpResp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode/100 != 2 {
		var errBody struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(httpResp.Body).Decode(&errBody); err != nil {
			return fmt.Errorf("guacd returned status %d", httpResp.StatusCode)
		}
		return fmt.Errorf("guacd: %s", errBody.Message)
	}

	if resp == nil {
		return nil
	}
	return json.NewDecoder(httpResp.Body).Decode(resp)
}

func peerAmountArgs(ctx *cli.Context) (peer string, amount string, err error) {
	if ctx.NArg() != 2 {
		return "", "", fmt.Errorf("usage: guacctl %s <peer-address> <amount>", ctx.Command.Name)
	}
	return ctx.Args().Get(0), ctx.Args().Get(1), nil
}

var fillChannelCommand = cli.Command{
	Name:      "fillchannel",
	Usage:     "open a new channel, or deposit more into an existing one",
	ArgsUsage: "peer-address amount",
	Action: func(ctx *cli.Context) error {
		peer, amount, err := peerAmountArgs(ctx)
		if err != nil {
			return err
		}
		return postJSON(userAPIURL(ctx, "fill_channel"), map[string]string{
			"peer": peer, "amount": amount,
		}, nil)
	},
}

var withdrawCommand = cli.Command{
	Name:      "withdraw",
	Usage:     "withdraw funds from an open channel",
	ArgsUsage: "peer-address amount",
	Action: func(ctx *cli.Context) error {
		peer, amount, err := peerAmountArgs(ctx)
		if err != nil {
			return err
		}
		return postJSON(userAPIURL(ctx, "withdraw"), map[string]string{
			"peer": peer, "amount": amount,
		}, nil)
	},
}

var makePaymentCommand = cli.Command{
	Name:      "pay",
	Usage:     "send an off-chain payment to a counterparty",
	ArgsUsage: "peer-address amount",
	Action: func(ctx *cli.Context) error {
		peer, amount, err := peerAmountArgs(ctx)
		if err != nil {
			return err
		}
		return postJSON(userAPIURL(ctx, "make_payment"), map[string]string{
			"peer": peer, "amount": amount,
		}, nil)
	},
}

var checkAccrualCommand = cli.Command{
	Name:      "accrual",
	Usage:     "check and reset accumulated incoming payments from a counterparty",
	ArgsUsage: "peer-address",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("usage: guacctl accrual <peer-address>")
		}
		var resp struct {
			Accrual string `json:"accrual"`
		}
		if err := postJSON(userAPIURL(ctx, "check_accrual"), map[string]string{"peer": ctx.Args().First()}, &resp); err != nil {
			return err
		}
		fmt.Println(resp.Accrual)
		return nil
	},
}

var checkMyBalanceCommand = cli.Command{
	Name:      "balance",
	Usage:     "check this account's current balance with a counterparty",
	ArgsUsage: "peer-address",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("usage: guacctl balance <peer-address>")
		}
		var resp struct {
			Balance string `json:"balance"`
		}
		if err := postJSON(userAPIURL(ctx, "check_my_balance"), map[string]string{"peer": ctx.Args().First()}, &resp); err != nil {
			return err
		}
		fmt.Println(resp.Balance)
		return nil
	},
}

var getStateCommand = cli.Command{
	Name:      "state",
	Usage:     "print a counterparty's current lifecycle state and channel snapshot",
	ArgsUsage: "peer-address",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return fmt.Errorf("usage: guacctl state <peer-address>")
		}
		var resp map[string]any
		if err := postJSON(userAPIURL(ctx, "get_state"), map[string]string{"peer": ctx.Args().First()}, &resp); err != nil {
			return err
		}
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
