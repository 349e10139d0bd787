package main

import (
	"os"

	"github.com/shopspring/decimal"

	"github.com/vsinha/cockpit/pkg/interfaces/cli/commands"
)

// Version info set via ldflags at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

func main() {
	// lead times and quantities go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	os.Exit(commands.Execute(commands.NewRootCommand(commands.BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	})))
}
