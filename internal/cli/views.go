package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/ligoview/ligoview/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	viewsCmd := &cobra.Command{
		Use:   "views",
		Short: "Manage saved views",
		Long: `Saved views are named dashboard URLs, reachable at /v/<name>.

Examples:
  ligoview views save s1-reads --mode chart --where "sampleid=S1" --chartx finishdate --charty reads
  ligoview views list
  ligoview views open s1-reads
  ligoview views delete s1-reads`,
	}

	viewsCmd.AddCommand(newViewsSaveCmd(), newViewsListCmd(), newViewsOpenCmd(), newViewsDeleteCmd())
	rootCmd.AddCommand(viewsCmd)
}

func newViewsSaveCmd() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a view under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := flags.state(cmd)
			if err != nil {
				return err
			}

			return withStore(func(s *store.SQLiteStore) error {
				view, err := s.SaveView(context.Background(), args[0], st)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved view '%s' (%s, %s)\n", view.Name, view.Mode, view.Project)
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newViewsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.SQLiteStore) error {
				views, err := s.ListViews(context.Background())
				if err != nil {
					return fmt.Errorf("failed to list views: %w", err)
				}

				if len(views) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved views yet.")
					fmt.Fprintln(cmd.OutOrStdout(), "Save one with: ligoview views save <name> [view flags]")
					return nil
				}

				// Print table
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tMODE\tPROJECT\tUPDATED")
				for _, v := range views {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						v.Name,
						v.Mode,
						v.Project,
						v.UpdatedAt.Format("2006-01-02 15:04"),
					)
				}
				return w.Flush()
			})
		},
	}
}

func newViewsOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <name>",
		Short: "Print the dashboard URL of a saved view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := dashboardHost()
			return withStore(func(s *store.SQLiteStore) error {
				view, err := s.GetView(context.Background(), args[0])
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("view '%s' not found", args[0])
				}
				if err != nil {
					return fmt.Errorf("failed to get view: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s/dashboard?params=%s\n", host, view.Params)
				return nil
			})
		},
	}
}

func newViewsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.SQLiteStore) error {
				err := s.DeleteView(context.Background(), args[0])
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("view '%s' not found", args[0])
				}
				if err != nil {
					return fmt.Errorf("failed to delete view: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted view '%s'\n", args[0])
				return nil
			})
		},
	}
}
