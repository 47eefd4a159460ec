// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/diagnostics"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/election"
	"github.com/Quality-Assurance-DAO/Offline-election-tool/lib/source"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one election and print its result",
		Long: `Run one election over a dataset loaded from a JSON file,
fetched from a chain node, or generated synthetically, and print the
selected validators with their backing stake.`,
		RunE: execRun,
	}

	flags := cmd.Flags()
	flags.String("algorithm", election.SequentialPhragmen.String(),
		"Selection algorithm: sequential-phragmen, parallel-phragmen or multi-phase")
	flags.Uint32("active-set-size", 10,
		"Number of validators to select")

	flags.String("input-file", "",
		"Path of a JSON dataset file")
	flags.String("rpc-url", "",
		"HTTP JSON-RPC endpoint of a chain node to snapshot staking state from")
	flags.Uint64("block-number", 0,
		"Block number to fetch chain state at, defaulting to the chain head")
	flags.Bool("synthetic", false,
		"Generate a synthetic dataset")
	flags.Uint32("synthetic-candidates", 0,
		"Number of synthetic candidates")
	flags.Uint32("synthetic-nominators", 0,
		"Number of synthetic nominators")
	flags.Uint32("synthetic-max-targets", 0,
		"Maximum targets per synthetic nominator")
	flags.Int64("synthetic-seed", 0,
		"Seed of the synthetic dataset generator")

	flags.StringSlice("override-candidate-stake", nil,
		`Candidate stake override in the form "account_id=stake", repeatable`)
	flags.StringSlice("override-nominator-stake", nil,
		`Nominator stake override in the form "account_id=stake", repeatable`)
	flags.StringSlice("add-edge", nil,
		`Voting edge to add in the form "nominator_id=candidate_id", repeatable`)
	flags.StringSlice("remove-edge", nil,
		`Voting edge to remove in the form "nominator_id=candidate_id", repeatable`)

	flags.String("save-dataset", "",
		"Write the resolved dataset to this JSON file")
	flags.String("format", "text",
		"Output format: text or json")
	flags.String("output-file", "",
		"Write the output to this file instead of stdout")
	flags.Bool("diagnostics", false,
		"Include a diagnostics report in the output")

	return cmd
}

func execRun(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	dataset, blockNumber, err := resolveDataset(cmd)
	if err != nil {
		return err
	}

	if savePath, _ := flags.GetString("save-dataset"); savePath != "" {
		if err := source.SaveJSONFile(savePath, dataset); err != nil {
			return err
		}
		logger.Infof("dataset saved to %s", savePath)
	}

	algorithmName, _ := flags.GetString("algorithm")
	algorithm, err := election.ParseAlgorithm(algorithmName)
	if err != nil {
		return err
	}

	overrides, err := parseOverrides(cmd)
	if err != nil {
		return err
	}

	activeSetSize, _ := flags.GetUint32("active-set-size")
	electionConfig, err := election.BuildConfig(election.Config{
		Algorithm:     algorithm,
		ActiveSetSize: activeSetSize,
		Overrides:     overrides,
		BlockNumber:   blockNumber,
	})
	if err != nil {
		return err
	}

	result, err := election.NewEngine().Execute(electionConfig, dataset)
	if err != nil {
		return err
	}

	var report *diagnostics.Report
	if withDiagnostics, _ := flags.GetBool("diagnostics"); withDiagnostics {
		report = diagnostics.Explain(result, dataset, &electionConfig)
	}

	return writeOutput(cmd, result, report)
}

// resolveDataset loads the dataset from the single configured source.
func resolveDataset(cmd *cobra.Command) (dataset *election.Dataset,
	blockNumber *uint64, err error) {
	flags := cmd.Flags()
	inputFile, _ := flags.GetString("input-file")
	rpcURL, _ := flags.GetString("rpc-url")
	synthetic, _ := flags.GetBool("synthetic")

	sourcesSet := 0
	for _, set := range []bool{inputFile != "", rpcURL != "", synthetic} {
		if set {
			sourcesSet++
		}
	}
	if sourcesSet != 1 {
		return nil, nil, fmt.Errorf(
			"exactly one of --input-file, --rpc-url and --synthetic must be set")
	}

	if flags.Changed("block-number") {
		number, _ := flags.GetUint64("block-number")
		blockNumber = &number
	}

	switch {
	case inputFile != "":
		dataset, err = source.LoadJSONFile(inputFile)
	case rpcURL != "":
		dataset, err = source.NewClient(rpcURL).FetchDataset(cmd.Context(), blockNumber)
	default:
		candidates, _ := flags.GetUint32("synthetic-candidates")
		nominators, _ := flags.GetUint32("synthetic-nominators")
		maxTargets, _ := flags.GetUint32("synthetic-max-targets")
		seed, _ := flags.GetInt64("synthetic-seed")
		dataset, err = source.GenerateSynthetic(source.SyntheticOptions{
			Candidates: candidates,
			Nominators: nominators,
			MaxTargets: maxTargets,
			Seed:       seed,
		})
	}
	if err != nil {
		return nil, nil, err
	}
	return dataset, blockNumber, nil
}

// parseOverrides builds the override set from the repeatable flags.
func parseOverrides(cmd *cobra.Command) (*election.Overrides, error) {
	flags := cmd.Flags()
	overrides := election.NewOverrides()

	candidateStakes, _ := flags.GetStringSlice("override-candidate-stake")
	for _, directive := range candidateStakes {
		accountID, stake, err := election.ParseStakeDirective(directive)
		if err != nil {
			return nil, err
		}
		overrides.SetCandidateStake(accountID, stake)
	}

	nominatorStakes, _ := flags.GetStringSlice("override-nominator-stake")
	for _, directive := range nominatorStakes {
		accountID, stake, err := election.ParseStakeDirective(directive)
		if err != nil {
			return nil, err
		}
		overrides.SetNominatorStake(accountID, stake)
	}

	addEdges, _ := flags.GetStringSlice("add-edge")
	for _, directive := range addEdges {
		nominatorID, candidateID, err := election.ParseEdgeDirective(directive)
		if err != nil {
			return nil, err
		}
		overrides.AddEdge(nominatorID, candidateID)
	}

	removeEdges, _ := flags.GetStringSlice("remove-edge")
	for _, directive := range removeEdges {
		nominatorID, candidateID, err := election.ParseEdgeDirective(directive)
		if err != nil {
			return nil, err
		}
		overrides.RemoveEdge(nominatorID, candidateID)
	}

	if overrides.Empty() {
		return nil, nil
	}
	return overrides, nil
}

func writeOutput(cmd *cobra.Command, result *election.Result,
	report *diagnostics.Report) error {
	flags := cmd.Flags()

	writer := io.Writer(os.Stdout)
	if outputFile, _ := flags.GetString("output-file"); outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				logger.Errorf("closing output file: %s", closeErr)
			}
		}()
		writer = file
		color.NoColor = true
	}

	format, _ := flags.GetString("format")
	switch format {
	case "json":
		return writeJSON(writer, result, report)
	case "text":
		return writeText(writer, result, report)
	default:
		return fmt.Errorf("unknown output format %q, expected text or json", format)
	}
}

func writeJSON(writer io.Writer, result *election.Result,
	report *diagnostics.Report) error {
	output := struct {
		Result      *election.Result    `json:"result"`
		Diagnostics *diagnostics.Report `json:"diagnostics,omitempty"`
	}{
		Result:      result,
		Diagnostics: report,
	}
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func writeText(writer io.Writer, result *election.Result,
	report *diagnostics.Report) error {
	heading := color.New(color.FgCyan, color.Bold)
	_, _ = heading.Fprintf(writer, "Selected validators (%s)\n", result.AlgorithmUsed)

	table := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(table, "RANK\tACCOUNT\tBACKING STAKE\tNOMINATORS")
	for _, validator := range result.SelectedValidators {
		fmt.Fprintf(table, "%d\t%s\t%s\t%d\n", validator.Rank,
			validator.AccountID, validator.TotalBackingStake.Text(10),
			validator.NominatorCount)
	}
	if err := table.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(writer, "Total stake: %s\n", result.TotalStake.Text(10))
	if result.ExecutionMetadata.BlockNumber != nil {
		fmt.Fprintf(writer, "Block number: %d\n", *result.ExecutionMetadata.BlockNumber)
	}

	if report == nil {
		return nil
	}

	_, _ = heading.Fprintln(writer, "\nDiagnostics")
	for _, insight := range report.AlgorithmInsights {
		fmt.Fprintf(writer, "- %s\n", insight)
	}
	warning := color.New(color.FgYellow)
	for _, message := range report.Warnings {
		_, _ = warning.Fprintf(writer, "! %s\n", message)
	}
	return nil
}
