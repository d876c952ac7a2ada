package main

import (
	"fmt"

	"gaming-ops-portal/internal/relay"

	"github.com/spf13/cobra"
)

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Inspect and retry undelivered photo relays",
}

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Retry every pending relay once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.store.Close()

		rl, err := relay.Open(cmd.Context(), a.cfg, a.store)
		if err != nil {
			return fmt.Errorf("could not open %s relay: %w", a.cfg.Relay.Driver, err)
		}
		res, err := a.outbox(rl).Drain(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "delivered: %d, failed: %d, pending: %d\n", res.Delivered, res.Failed, res.Pending)
		return nil
	},
}

func init() {
	outboxCmd.AddCommand(drainCmd)
	rootCmd.AddCommand(outboxCmd)
}
