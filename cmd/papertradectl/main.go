// Command papertradectl talks to a papertrade server
package main

import (
	"github.com/google/subcommands"

	"context"
	"flag"
	"os"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&balanceCmd{}, "ledger")
	subcommands.Register(&buyCmd{}, "ledger")
	subcommands.Register(&sellCmd{}, "ledger")
	subcommands.Register(&portfolioCmd{}, "ledger")
	subcommands.Register(&priceCmd{}, "ledger")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
