package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragbench/ragbench/internal/dataset"
	"github.com/ragbench/ragbench/internal/models"
	"github.com/ragbench/ragbench/internal/services"
)

const cliSession = "cli"

var (
	submitName            string
	submitLLMConfigID     string
	submitSearchConfigID  string
	submitIndexName       string
	submitDatasetPath     string
	submitAssistantPrompt string
	submitRAGPrompt       string
	submitTemperature     float64
	submitTopK            int
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an evaluation to the scoring pipeline",
	Long: `Stage a test dataset from a JSON file and submit an evaluation built from
stored LLM and search configs. The submission blocks until the scoring
pipeline returns; the scored run is then persisted and printed.

The dataset file holds an array of records:
  [{"id": "tc-001", "question": "...", "ground_truth": "..."}, ...]`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVarP(&submitName, "name", "n", "", "Name for the evaluation run (required)")
	submitCmd.Flags().StringVar(&submitLLMConfigID, "llm-config", "", "LLM config id (required)")
	submitCmd.Flags().StringVar(&submitSearchConfigID, "search-config", "", "Search config id (required)")
	submitCmd.Flags().StringVar(&submitIndexName, "index", "", "Search index name (required)")
	submitCmd.Flags().StringVarP(&submitDatasetPath, "dataset", "d", "", "Path to the test dataset JSON file (required)")
	submitCmd.Flags().StringVar(&submitAssistantPrompt, "assistant-prompt", "", "Assistant prompt (required)")
	submitCmd.Flags().StringVar(&submitRAGPrompt, "rag-prompt", "", "RAG prompt template (defaults to the built-in template)")
	submitCmd.Flags().Float64VarP(&submitTemperature, "temperature", "t", 0, "Temperature override (defaults to the LLM config's value)")
	submitCmd.Flags().IntVarP(&submitTopK, "top-k", "k", 5, "Number of search documents to retrieve per question")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(submitDatasetPath)
	if err != nil {
		return fmt.Errorf("failed to read dataset file: %w", err)
	}

	var records []dataset.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse dataset file: %w", err)
	}

	cases, err := stager.Stage(cliSession, records)
	if err != nil {
		return fmt.Errorf("dataset validation failed: %w", err)
	}

	fmt.Printf("%s📦 Staged dataset%s %s\n", InfoStyle, Reset, FormatMeta(fmt.Sprintf("(%d test cases)", len(cases))))
	fmt.Printf("%s🧪 Submitting evaluation %s%s\n", InfoStyle, FormatValue(submitName), Reset)
	fmt.Println(FormatDim("Waiting for the scoring pipeline..."))
	fmt.Println()

	var temperature *float64
	if cmd.Flags().Changed("temperature") {
		temperature = &submitTemperature
	}

	run, err := evalSvc.SubmitEvaluation(cmd.Context(), services.SubmitInput{
		Name: submitName,
		BuildInput: services.BuildInput{
			SessionID:      cliSession,
			LLMConfigID:    submitLLMConfigID,
			SearchConfigID: submitSearchConfigID,
			IndexName:      submitIndexName,
			Prompts: models.Prompts{
				AssistantPrompt: submitAssistantPrompt,
				RAGPrompt:       submitRAGPrompt,
			},
			Temperature: temperature,
			TopK:        submitTopK,
		},
	})
	if err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}

	fmt.Printf("%s✅ Evaluation complete%s\n", SuccessStyle, Reset)
	fmt.Println()
	printRunSummary(run)
	return nil
}

// printRunSummary prints a run header plus its overall metric table
func printRunSummary(run *models.EvaluationRun) {
	fmt.Println(FormatLabelValue("Run:", run.Name))
	fmt.Println(FormatLabelValue("ID:", run.ID))
	fmt.Println(FormatLabelValue("Created:", run.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	fmt.Println(FormatLabelValue("Test cases:", fmt.Sprintf("%d", len(run.Result.TestCaseResults))))
	fmt.Println()
	printMetrics(run.Result.OverallMetrics)
}

func printMetrics(m models.Metrics) {
	fmt.Println(FormatHeader("Overall Metrics"))
	fmt.Printf("  %-20s %s\n", "faithfulness", formatScore(m.Faithfulness))
	fmt.Printf("  %-20s %s\n", "answer_relevancy", formatScore(m.AnswerRelevancy))
	fmt.Printf("  %-20s %s\n", "context_recall", formatScore(m.ContextRecall))
	fmt.Printf("  %-20s %s\n", "context_precision", formatScore(m.ContextPrecision))
}

// formatScore colors a metric by how close it is to 1.0
func formatScore(score float64) string {
	text := fmt.Sprintf("%.4f", score)
	switch {
	case score >= 0.8:
		return Green + text + Reset
	case score >= 0.5:
		return Yellow + text + Reset
	default:
		return Red + text + Reset
	}
}
