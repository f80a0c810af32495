package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/marcelsud/webhook-dispatch/eventtypes"
	"github.com/spf13/cobra"
)

func newEventTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event-types [file]",
		Short: "Validate an event types file, or list the built-in vocabulary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := eventtypes.Default()
			if len(args) == 1 {
				c, err := eventtypes.Load(args[0])
				if err != nil {
					return err
				}
				catalog = c
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, et := range catalog.List() {
				fmt.Fprintf(w, "%s\t%s\n", et.Name, et.Description)
			}
			return w.Flush()
		},
	}
}
