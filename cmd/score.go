package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/scoutline/compete-cli/internal/citations"
	"github.com/scoutline/compete-cli/internal/coverage"
	"github.com/scoutline/compete-cli/internal/model"
)

var (
	scoreBundlePath   string
	scorePolicyPath   string
	scoreDomains      []string
	gateScoreValue    float64
	gateCitationsPath string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run the scoring engines on local JSON files",
}

var scoreCoverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Score an evidence bundle for coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := readJSONFile[model.EvidenceBundle](scoreBundlePath)
		if err != nil {
			return err
		}

		policy, err := resolvePolicy()
		if err != nil {
			return err
		}

		result := coverage.ComputeScore(bundle, coverage.Options{
			Policy:            &policy,
			CompetitorDomains: scoreDomains,
		}, time.Now().UTC())

		return printJSON(result)
	},
}

var scoreGateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Gate a competitor score behind its citations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cits, err := readJSONFile[[]model.Citation](gateCitationsPath)
		if err != nil {
			return err
		}

		var score *float64
		if cmd.Flags().Changed("score") {
			score = &gateScoreValue
		}

		return printJSON(citations.GateScore(score, *cits, time.Now().UTC()))
	},
}

// resolvePolicy loads the policy file from the --policy flag, then the
// configured path, then built-in defaults.
func resolvePolicy() (coverage.Policy, error) {
	path := scorePolicyPath
	if path == "" {
		path = cfg.Coverage.PolicyPath
	}
	if path == "" {
		return coverage.DefaultPolicy(), nil
	}
	return coverage.LoadPolicy(path)
}

func readJSONFile[T any](path string) (*T, error) {
	if path == "" {
		return nil, eris.New("cmd: input file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "cmd: read input file")
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, eris.Wrap(err, "cmd: parse input file")
	}
	return &v, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "cmd: encode output")
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	scoreCoverageCmd.Flags().StringVar(&scoreBundlePath, "bundle", "", "path to EvidenceBundle JSON (required)")
	scoreCoverageCmd.Flags().StringVar(&scorePolicyPath, "policy", "", "path to coverage policy YAML (default from config)")
	scoreCoverageCmd.Flags().StringSliceVar(&scoreDomains, "competitor-domain", nil, "explicit first-party domains (repeatable)")
	scoreCoverageCmd.MarkFlagRequired("bundle") //nolint:errcheck

	scoreGateCmd.Flags().Float64Var(&gateScoreValue, "score", 0, "numeric score to gate (omit for no score)")
	scoreGateCmd.Flags().StringVar(&gateCitationsPath, "citations", "", "path to citations JSON (required)")
	scoreGateCmd.MarkFlagRequired("citations") //nolint:errcheck

	scoreCmd.AddCommand(scoreCoverageCmd)
	scoreCmd.AddCommand(scoreGateCmd)
	rootCmd.AddCommand(scoreCmd)
}
