package models

import (
	"time"
)

// LLMConfig represents a stored LLM connection profile.
// Evaluation requests embed a snapshot of these values, never the id.
type LLMConfig struct {
	ID              string    `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name"`
	Provider        string    `json:"provider" bson:"provider"` // azure, google, perplexity
	ChatEndpoint    string    `json:"chat_endpoint" bson:"chat_endpoint"`
	DeploymentName  string    `json:"deployment_name" bson:"deployment_name"`
	APIVersion      string    `json:"api_version" bson:"api_version"`
	SubscriptionKey string    `json:"subscription_key,omitempty" bson:"subscription_key"`
	Temperature     float64   `json:"temperature" bson:"temperature"` // 0.0 - 2.0
	MaxTokens       int       `json:"max_tokens" bson:"max_tokens"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// SearchConfig represents a stored search service connection profile.
type SearchConfig struct {
	ID                    string    `json:"id" bson:"_id"`
	Name                  string    `json:"name" bson:"name"`
	SearchServiceEndpoint string    `json:"search_service_endpoint" bson:"search_service_endpoint"`
	CreatedAt             time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" bson:"updated_at"`
}

// TestCase is one question/ground-truth pair of an uploaded dataset.
type TestCase struct {
	ID          string `json:"id" bson:"id"`
	Question    string `json:"question" bson:"question"`
	GroundTruth string `json:"ground_truth" bson:"ground_truth"`
}

// ModelSnapshot holds the LLM parameters frozen into an evaluation request.
type ModelSnapshot struct {
	Provider        string  `json:"provider" bson:"provider"`
	ChatEndpoint    string  `json:"chat_endpoint" bson:"chat_endpoint"`
	DeploymentName  string  `json:"deployment_name" bson:"deployment_name"`
	APIVersion      string  `json:"api_version" bson:"api_version"`
	SubscriptionKey string  `json:"subscription_key" bson:"subscription_key"`
	Temperature     float64 `json:"temperature" bson:"temperature"`
	TopK            int     `json:"top_k" bson:"top_k"`
	MaxTokens       int     `json:"max_tokens" bson:"max_tokens"`
}

// SearchIndexSnapshot holds the search target frozen into an evaluation request.
type SearchIndexSnapshot struct {
	SearchServiceEndpoint string `json:"search_service_endpoint" bson:"search_service_endpoint"`
	IndexName             string `json:"index_name" bson:"index_name"`
}

// Prompts holds the prompt templates used by the scoring pipeline.
// RAGPrompt contains {context} and {question} placeholders.
type Prompts struct {
	AssistantPrompt string `json:"assistant_prompt" bson:"assistant_prompt"`
	RAGPrompt       string `json:"rag_prompt" bson:"rag_prompt"`
}

// EvaluationRequest is the immutable value assembled at submission time.
// It is never persisted standalone, only embedded inside an EvaluationRun.
type EvaluationRequest struct {
	Model       ModelSnapshot       `json:"model" bson:"model"`
	SearchIndex SearchIndexSnapshot `json:"search_index" bson:"search_index"`
	Prompts     Prompts             `json:"prompts" bson:"prompts"`
	TestCases   []TestCase          `json:"test_cases" bson:"test_cases"`
}

// Metrics holds the four RAGAS scores, each in [0,1].
type Metrics struct {
	Faithfulness     float64 `json:"faithfulness" bson:"faithfulness"`
	AnswerRelevancy  float64 `json:"answer_relevancy" bson:"answer_relevancy"`
	ContextRecall    float64 `json:"context_recall" bson:"context_recall"`
	ContextPrecision float64 `json:"context_precision" bson:"context_precision"`
}

// PerCaseResult is the scored outcome of a single test case.
type PerCaseResult struct {
	TestCaseID      string   `json:"test_case_id" bson:"test_case_id"`
	Question        string   `json:"question" bson:"question"`
	GeneratedAnswer string   `json:"generated_answer" bson:"generated_answer"`
	GroundTruth     string   `json:"ground_truth" bson:"ground_truth"`
	Contexts        []string `json:"contexts,omitempty" bson:"contexts,omitempty"`
	Metrics         Metrics  `json:"metrics" bson:"metrics"`
}

// EvaluationResult pairs the aggregate metrics with the ordered per-case results.
type EvaluationResult struct {
	OverallMetrics  Metrics         `json:"overall_metrics" bson:"overall_metrics"`
	TestCaseResults []PerCaseResult `json:"test_case_results" bson:"test_case_results"`
}

// EvaluationRun is one persisted, append-only execution of a request.
type EvaluationRun struct {
	ID        string            `json:"id" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	Request   EvaluationRequest `json:"request" bson:"request"`
	Result    EvaluationResult  `json:"result" bson:"result"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
}

// MetricDelta is one row of a comparison report.
type MetricDelta struct {
	Metric string  `json:"metric"`
	ValueA float64 `json:"value_a"`
	ValueB float64 `json:"value_b"`
	Delta  float64 `json:"delta"` // value_a - value_b, no rounding
}

// ComparisonReport is a derived per-metric delta table between two runs.
// It is never persisted.
type ComparisonReport struct {
	RunAID   string        `json:"run_a_id"`
	RunAName string        `json:"run_a_name"`
	RunBID   string        `json:"run_b_id"`
	RunBName string        `json:"run_b_name"`
	Deltas   []MetricDelta `json:"deltas"`
}

// Schedule re-submits the frozen request snapshot of a stored run on a cron
// expression, producing a fresh run per tick.
type Schedule struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	RunID     string     `json:"run_id"`
	CronExpr  string     `json:"cron_expr"`
	Enabled   bool       `json:"enabled"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SearchIndexInfo describes one index of a search service.
type SearchIndexInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	FieldsCount int    `json:"fields_count"`
}
