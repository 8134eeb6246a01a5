package main

import (
	"github.com/chucky-1/papertrade/protocol"
	"github.com/google/subcommands"
	"google.golang.org/protobuf/types/known/structpb"

	"context"
	"flag"
	"fmt"
	"os"
)

// run performs one act and prints the rendered reply
func run(ctx context.Context, act string, fields map[string]string, render func(*structpb.Struct, string) string) subcommands.ExitStatus {
	resp, err := exchange(ctx, act, fields)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(render(resp, *currency))
	if protocol.String(resp, protocol.FieldError) != "" {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type balanceCmd struct{}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show the virtual balance left to spend" }
func (*balanceCmd) Usage() string {
	return `papertradectl -user <id> balance
`
}
func (*balanceCmd) SetFlags(*flag.FlagSet) {}

func (*balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, protocol.ActBalance, nil, renderBalance)
}

type buyCmd struct{}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy a coin at the current price" }
func (*buyCmd) Usage() string {
	return `papertradectl -user <id> buy <coin> <amount>

  Opens a new lot. Fails if the cost exceeds the balance.
`
}
func (*buyCmd) SetFlags(*flag.FlagSet) {}

func (*buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: buy coin amount")
		return subcommands.ExitUsageError
	}
	return run(ctx, protocol.ActBuy, map[string]string{
		protocol.FieldAsset:  f.Arg(0),
		protocol.FieldAmount: f.Arg(1),
	}, renderBuy)
}

type sellCmd struct{}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell from the oldest lot of a coin" }
func (*sellCmd) Usage() string {
	return `papertradectl -user <id> sell <coin> <amount>

  Sells from the oldest lot of the coin. That lot alone must hold the amount.
`
}
func (*sellCmd) SetFlags(*flag.FlagSet) {}

func (*sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: sell coin amount")
		return subcommands.ExitUsageError
	}
	return run(ctx, protocol.ActSell, map[string]string{
		protocol.FieldAsset:  f.Arg(0),
		protocol.FieldAmount: f.Arg(1),
	}, renderSell)
}

type portfolioCmd struct{}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "list open lots with current value and P/L" }
func (*portfolioCmd) Usage() string {
	return `papertradectl -user <id> portfolio
`
}
func (*portfolioCmd) SetFlags(*flag.FlagSet) {}

func (*portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, protocol.ActPortfolio, nil, renderPortfolio)
}

type priceCmd struct{}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "show the current price of a coin" }
func (*priceCmd) Usage() string {
	return `papertradectl -user <id> price <coin>
`
}
func (*priceCmd) SetFlags(*flag.FlagSet) {}

func (*priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: price bitcoin")
		return subcommands.ExitUsageError
	}
	return run(ctx, protocol.ActPrice, map[string]string{protocol.FieldAsset: f.Arg(0)}, renderPrice)
}
