package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored evaluation runs",
	Long:  `List, inspect, compare, re-submit and delete stored evaluation runs.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all evaluation runs",
	RunE:  runRunsList,
}

var runsGetCmd = &cobra.Command{
	Use:   "get <run-id>",
	Short: "Show a run including per-case results",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsGet,
}

var runsCompareCmd = &cobra.Command{
	Use:   "compare <run-a> <run-b>",
	Short: "Compare the overall metrics of two runs",
	Args:  cobra.ExactArgs(2),
	RunE:  runRunsCompare,
}

var runsResubmitCmd = &cobra.Command{
	Use:   "resubmit <run-id>",
	Short: "Re-submit a run's frozen request as a fresh run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsResubmit,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

var runsResubmitName string

func init() {
	runsResubmitCmd.Flags().StringVarP(&runsResubmitName, "name", "n", "", "Name for the new run (defaults to a rerun suffix)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsGetCmd)
	runsCmd.AddCommand(runsCompareCmd)
	runsCmd.AddCommand(runsResubmitCmd)
	runsCmd.AddCommand(runsDeleteCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	runs, err := evalSvc.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No evaluation runs stored yet.")
		return nil
	}

	fmt.Printf("%s📋 Evaluation Runs%s %s\n", HeaderStyle, Reset, FormatMeta(fmt.Sprintf("(%d)", len(runs))))
	fmt.Println()

	for _, run := range runs {
		fmt.Printf("%s  %s\n", FormatValue(run.Name), FormatMeta(run.ID))
		fmt.Printf("  %s  cases: %s  faithfulness: %s  answer_relevancy: %s\n",
			FormatDim(run.CreatedAt.Format("2006-01-02 15:04")),
			FormatCount(len(run.Result.TestCaseResults)),
			formatScore(run.Result.OverallMetrics.Faithfulness),
			formatScore(run.Result.OverallMetrics.AnswerRelevancy))
		fmt.Println()
	}

	return nil
}

func runRunsGet(cmd *cobra.Command, args []string) error {
	run, err := evalSvc.GetRun(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	printRunSummary(run)

	fmt.Println()
	fmt.Println(FormatHeader("Request Snapshot"))
	fmt.Println(FormatLabelValue("  Provider:", run.Request.Model.Provider))
	fmt.Println(FormatLabelValue("  Deployment:", run.Request.Model.DeploymentName))
	fmt.Println(FormatLabelValue("  Index:", run.Request.SearchIndex.IndexName))
	fmt.Println(FormatLabelValue("  Temperature:", fmt.Sprintf("%g", run.Request.Model.Temperature)))
	fmt.Println(FormatLabelValue("  Top K:", fmt.Sprintf("%d", run.Request.Model.TopK)))

	fmt.Println()
	fmt.Println(FormatHeader("Per-Case Results"))
	for _, result := range run.Result.TestCaseResults {
		fmt.Printf("  %s %s\n", FormatValue(result.TestCaseID), FormatDim(result.Question))
		fmt.Printf("    faithfulness: %s  answer_relevancy: %s  context_recall: %s  context_precision: %s\n",
			formatScore(result.Metrics.Faithfulness),
			formatScore(result.Metrics.AnswerRelevancy),
			formatScore(result.Metrics.ContextRecall),
			formatScore(result.Metrics.ContextPrecision))
	}

	return nil
}

func runRunsCompare(cmd *cobra.Command, args []string) error {
	report, err := compareSvc.Compare(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	fmt.Printf("%s⚖️  Comparing runs%s\n", HeaderStyle, Reset)
	fmt.Printf("  A: %s %s\n", FormatValue(report.RunAName), FormatMeta(report.RunAID))
	fmt.Printf("  B: %s %s\n", FormatValue(report.RunBName), FormatMeta(report.RunBID))
	fmt.Println()

	fmt.Printf("  %-20s %10s %10s %10s\n", "metric", "A", "B", "delta")
	for _, delta := range report.Deltas {
		fmt.Printf("  %-20s %10.4f %10.4f %s\n", delta.Metric, delta.ValueA, delta.ValueB, formatDelta(delta.Delta))
	}

	return nil
}

func runRunsResubmit(cmd *cobra.Command, args []string) error {
	fmt.Println(FormatDim("Re-submitting to the scoring pipeline..."))

	run, err := evalSvc.ResubmitRun(cmd.Context(), args[0], runsResubmitName)
	if err != nil {
		return fmt.Errorf("re-submission failed: %w", err)
	}

	fmt.Printf("%s✅ Evaluation complete%s\n", SuccessStyle, Reset)
	fmt.Println()
	printRunSummary(run)
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	if err := evalSvc.DeleteRun(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	fmt.Printf("%s✅ Run %s deleted%s\n", SuccessStyle, args[0], Reset)
	return nil
}

// formatDelta colors a signed delta: green for improvement, red for regression
func formatDelta(delta float64) string {
	text := fmt.Sprintf("%+10.4f", delta)
	switch {
	case delta > 0:
		return Green + text + Reset
	case delta < 0:
		return Red + text + Reset
	default:
		return Gray + text + Reset
	}
}
