package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var enableTradingCmd = &cobra.Command{
	Use:   "enable-trading",
	Short: "Approve quote tokens for trading",
	Long: `Grant each supported exchange contract an ERC20 allowance on its
quote token. Pairs that already carry a sufficient allowance are skipped.`,
	RunE: runEnableTrading,
}

func init() {
	rootCmd.AddCommand(enableTradingCmd)
}

func runEnableTrading(cmd *cobra.Command, args []string) error {
	c, _, logger, err := buildClient(true)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
		_ = logger.Sync()
	}()

	results, err := c.EnableTrading(context.Background())
	if err != nil {
		return fmt.Errorf("enable trading: %w", err)
	}

	if len(results) == 0 {
		fmt.Printf("All quote tokens already approved.\n")
		return nil
	}

	fmt.Printf("Submitted %d approval(s):\n", len(results))
	for _, r := range results {
		fmt.Printf("  tx=%s\n", r.TxHash)
	}

	return nil
}
