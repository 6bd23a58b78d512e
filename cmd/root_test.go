package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/compete-cli/internal/config"
	"github.com/scoutline/compete-cli/internal/coverage"
	"github.com/scoutline/compete-cli/internal/model"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"score", "state", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "compete-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestScoreCommand_HasSubcommands(t *testing.T) {
	cmds := scoreCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	assert.True(t, names["coverage"], "score should have a coverage subcommand")
	assert.True(t, names["gate"], "score should have a gate subcommand")
}

func TestScoreCoverageCommand_Flags(t *testing.T) {
	require.NotNil(t, scoreCoverageCmd.Flags().Lookup("bundle"))
	require.NotNil(t, scoreCoverageCmd.Flags().Lookup("policy"))
	require.NotNil(t, scoreCoverageCmd.Flags().Lookup("competitor-domain"))
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestStateCommand_Flags(t *testing.T) {
	require.NotNil(t, stateCmd.Flags().Lookup("project"))
}

func TestReadJSONFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	in := model.EvidenceBundle{Company: "Acme", Items: []model.EvidenceItem{
		{URL: "https://acme.com/pricing", Type: model.EvidencePricing},
	}}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	out, err := readJSONFile[model.EvidenceBundle](path)
	require.NoError(t, err)
	assert.Equal(t, "Acme", out.Company)
	require.Len(t, out.Items, 1)
}

func TestReadJSONFile_MissingPath(t *testing.T) {
	_, err := readJSONFile[model.EvidenceBundle]("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input file is required")
}

func TestResolvePolicy_DefaultsWhenUnset(t *testing.T) {
	origCfg, origFlag := cfg, scorePolicyPath
	t.Cleanup(func() { cfg, scorePolicyPath = origCfg, origFlag })

	cfg = &config.Config{}
	scorePolicyPath = ""

	policy, err := resolvePolicy()
	require.NoError(t, err)
	assert.Equal(t, coverage.DefaultPolicy(), policy)
}

func TestResolvePolicy_FlagWinsOverConfig(t *testing.T) {
	origCfg, origFlag := cfg, scorePolicyPath
	t.Cleanup(func() { cfg, scorePolicyPath = origCfg, origFlag })

	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	yaml := `
coverage:
  min_total_sources: 7
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg = &config.Config{}
	cfg.Coverage.PolicyPath = filepath.Join(dir, "does-not-exist.yaml")
	scorePolicyPath = path

	policy, err := resolvePolicy()
	require.NoError(t, err)
	assert.Equal(t, 7, policy.MinTotalSources)
}
