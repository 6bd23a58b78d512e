package main

import (
	"github.com/spf13/cobra"

	"github.com/scoutline/compete-cli/internal/runstate"
)

var stateProjectID string

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Derive the decision run state for a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("state"); err != nil {
			return err
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		state := runstate.GetDecisionRunState(cmd.Context(), storeRepos(st), stateProjectID)
		return printJSON(state)
	},
}

func init() {
	stateCmd.Flags().StringVar(&stateProjectID, "project", "", "project id (required)")
	stateCmd.MarkFlagRequired("project") //nolint:errcheck
	rootCmd.AddCommand(stateCmd)
}
