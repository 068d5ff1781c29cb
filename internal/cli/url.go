package cli

import (
	"fmt"

	"github.com/ligoview/ligoview/internal/viewstate"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newURLCmd())
}

func newURLCmd() *cobra.Command {
	var (
		flags viewFlags
		host  string
	)

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the shareable URL of a view",
		Long: `Print the dashboard URL that opens the described view.

Examples:
  ligoview url --mode compare --old 42 --new 57
  ligoview url --mode chart --chartx finishdate --charty reads --project met1.json
  ligoview url --params "$LINK" --where "sampleid=S2"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := flags.state(cmd)
			if err != nil {
				return err
			}
			h := host
			if h == "" {
				h = dashboardHost()
			}
			fmt.Fprintln(cmd.OutOrStdout(), st.URL(viewstate.Location{Host: h, Path: "/dashboard"}))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&host, "host", "", "dashboard host (default: the address of the last 'ligoview serve')")
	return cmd
}
