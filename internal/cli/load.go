package cli

import (
	"github.com/spf13/cobra"

	"trading-backoffice/internal/loader"
	"trading-backoffice/internal/store"
)

func newLoadCmd(app *App) *cobra.Command {
	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Load broker CSV files into the store",
	}

	netCmd := &cobra.Command{
		Use:   "net <csv-file>",
		Short: "Load a net position snapshot (upsert on business key)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(cmd.Context(), app.Config.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			l := loader.NewNetPositionLoader(st, app.Config.Store.NetPositionsTable, app.Logger)
			return l.Load(cmd.Context(), args[0])
		},
	}

	intradayCmd := &cobra.Command{
		Use:   "intraday <csv-file>",
		Short: "Load intraday executions (insert only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(cmd.Context(), app.Config.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			l := loader.NewIntradayLoader(st, app.Config.Store.IntradayTradesTable, app.Logger)
			return l.Load(cmd.Context(), args[0])
		},
	}

	loadCmd.AddCommand(netCmd)
	loadCmd.AddCommand(intradayCmd)
	return loadCmd
}
