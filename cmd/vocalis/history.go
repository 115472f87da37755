// ABOUTME: The history subcommand: list and fetch past generations
// ABOUTME: Optional audio download of a single item by ID
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vocalis-audio/vocalis-go/pkg/vocalis"
)

var historySave string

var historyCmd = &cobra.Command{
	Use:   "history [item-id]",
	Short: "List past generations, or download one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		c := newClient()
		items, err := c.History(ctx)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			for _, item := range items {
				if item.ID != args[0] {
					continue
				}
				data, err := item.Audio(ctx)
				if err != nil {
					return err
				}
				path := historySave
				if path == "" {
					path = item.ID + ".mp3"
				}
				if err := vocalis.SaveAudio(data, path); err != nil {
					return err
				}
				fmt.Printf("saved %d bytes to %s\n", len(data), path)
				return nil
			}
			return fmt.Errorf("no history item %q", args[0])
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tVOICE\tCHARS\tTEXT")
		for _, item := range items {
			date := time.Unix(item.DateUnix, 0).Format("2006-01-02 15:04")
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				item.ID, date, item.VoiceName, item.CharCount(), clip(item.Text, 40))
		}
		return w.Flush()
	},
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	historyCmd.Flags().StringVar(&historySave, "save", "", "Output path for the downloaded audio")
	rootCmd.AddCommand(historyCmd)
}
