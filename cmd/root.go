package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "opinion-clob",
	Short: "Opinion CLOB trading client",
	Long: `Trading client for the Opinion CLOB prediction market exchange.

Places and cancels signed orders, manages ERC20 approvals, and performs
on-chain split/merge/redeem of conditional outcome tokens.

Configuration is read from the environment (a .env file is loaded if
present). OPINION_HOST and PRIVATE_KEY are required for most commands.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
