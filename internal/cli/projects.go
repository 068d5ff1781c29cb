package cli

import (
	"fmt"
	"sort"

	"github.com/ligoview/ligoview/internal/viewstate"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newProjectsCmd())
}

func newProjectsCmd() *cobra.Command {
	var (
		pick  bool
		flags viewFlags
	)

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List metrics definitions",
		Long: `List the metrics definitions (projects) the backend offers.

With --pick, choose one interactively and print the URL of the view
switched to it.

Examples:
  ligoview projects
  ligoview projects --pick --mode chart`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, err := newClient(defaultMaxInFlight, defaultTimeout).ListMetricSets(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list metric sets: %w", err)
			}
			sort.Strings(sets)

			out := cmd.OutOrStdout()
			if !pick {
				for _, s := range sets {
					fmt.Fprintln(out, s)
				}
				return nil
			}

			if len(sets) == 0 {
				return fmt.Errorf("the backend has no metrics definitions")
			}

			project, err := promptProject(sets)
			if err != nil {
				return err
			}
			if project == "" {
				return nil
			}

			st, err := flags.state(cmd)
			if err != nil {
				return err
			}
			st.Project = project
			fmt.Fprintln(out, st.URL(viewstate.Location{Host: dashboardHost(), Path: "/dashboard"}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "choose a project interactively")
	flags.register(cmd)
	return cmd
}

// promptProject returns the chosen project, or "" if the user backed out.
func promptProject(sets []string) (string, error) {
	prompt := promptui.Select{
		Label: "Metrics definition",
		Items: sets,
		Size:  10,
	}

	_, project, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt || err == promptui.ErrEOF {
			return "", nil
		}
		return "", err
	}
	return project, nil
}
