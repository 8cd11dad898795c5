package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ragbench/ragbench/internal/models"
)

const defaultAPIVersion = "2023-11-01"

// Client is a thin REST client for Azure AI Search index metadata.
// It only lists indexes; document retrieval belongs to the external
// scoring pipeline.
type Client struct {
	apiVersion string
	httpClient *http.Client
}

// NewClient creates a new search metadata client
func NewClient() *Client {
	return &Client{
		apiVersion: defaultAPIVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListIndexes lists the indexes of a search service. apiKey may be empty
// when the service accepts the ambient credential of the host.
func (c *Client) ListIndexes(ctx context.Context, endpoint, apiKey string) ([]models.SearchIndexInfo, error) {
	url := fmt.Sprintf("%s/indexes?api-version=%s", endpoint, c.apiVersion)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("api-key", apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service error: %s", string(body))
	}

	var listResp struct {
		Value []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Fields      []struct {
				Name string `json:"name"`
			} `json:"fields"`
		} `json:"value"`
	}

	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	indexes := make([]models.SearchIndexInfo, 0, len(listResp.Value))
	for _, idx := range listResp.Value {
		indexes = append(indexes, models.SearchIndexInfo{
			Name:        idx.Name,
			Description: idx.Description,
			FieldsCount: len(idx.Fields),
		})
	}

	return indexes, nil
}
