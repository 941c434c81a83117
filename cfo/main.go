// Command cfo is the cost basis and portfolio valuation engine.
package main

import (
	"context"
	"os"

	"github.com/costfolio/costfolio/cmd"
)

func main() {
	cmd.Register()
	os.Exit(cmd.Execute(context.Background()))
}
