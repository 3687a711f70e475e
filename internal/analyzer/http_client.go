package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient talks to the analyzer service over JSON. Callers wrap it in a
// Service so failures degrade instead of propagating.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) AnalyzeChange(ctx context.Context, input ChangeInput) (FileAnalysis, error) {
	var result FileAnalysis
	if err := c.post(ctx, "/analyze/change", input, &result); err != nil {
		return FileAnalysis{}, err
	}
	return result, nil
}

func (c *HTTPClient) AnalyzeOverall(ctx context.Context, files []FileAnalysis, commitMessage string) (OverallAnalysis, error) {
	payload := struct {
		Files         []FileAnalysis `json:"files"`
		CommitMessage string         `json:"commit_message"`
	}{Files: files, CommitMessage: commitMessage}

	var result OverallAnalysis
	if err := c.post(ctx, "/analyze/overall", payload, &result); err != nil {
		return OverallAnalysis{}, err
	}
	return result, nil
}

func (c *HTTPClient) post(ctx context.Context, endpoint string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal analyzer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build analyzer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call analyzer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analyzer returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode analyzer response: %w", err)
	}
	return nil
}
