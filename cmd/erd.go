package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var regenerate bool

var erdCmd = &cobra.Command{
	Use:   "erd",
	Short: "Print the cached ERD, generating it if needed",
	Long: `Print the Mermaid ERD used as chat context.

The diagram is read from the cache file when present. With --regenerate
the schema is introspected again and the cache is overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		s, err := openSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if regenerate {
			err = s.tool.Regenerate(ctx)
		} else {
			err = s.tool.Initialize(ctx)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.tool.Diagram())
		return nil
	},
}

func init() {
	erdCmd.Flags().BoolVar(&regenerate, "regenerate", false, "introspect again and overwrite the cache")
	rootCmd.AddCommand(erdCmd)
}
