// ABOUTME: The voices subcommand: list account voices
// ABOUTME: Prints ID, name and category per voice
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the voices on the account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		c := newClient()
		infos, err := c.VoiceList(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", info.ID, info.Name, info.Category)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(voicesCmd)
}
