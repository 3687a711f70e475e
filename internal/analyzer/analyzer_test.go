package analyzer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type failingAnalyzer struct{}

func (failingAnalyzer) AnalyzeChange(context.Context, ChangeInput) (FileAnalysis, error) {
	return FileAnalysis{}, errors.New("analyzer down")
}

func (failingAnalyzer) AnalyzeOverall(context.Context, []FileAnalysis, string) (OverallAnalysis, error) {
	return OverallAnalysis{}, errors.New("analyzer down")
}

func TestServiceFallsBackOnError(t *testing.T) {
	svc := NewService(failingAnalyzer{})

	result := svc.AnalyzeChange(context.Background(), ChangeInput{
		FilePath:   "guides/setup.md",
		ChangeType: "modified",
	})
	if result.Changelog == "" {
		t.Fatalf("expected fallback changelog")
	}
	if result.Confidence >= LowConfidenceThreshold {
		t.Fatalf("fallback confidence %f must sit below the threshold", result.Confidence)
	}
	if len(result.RiskFlags) != 0 {
		t.Fatalf("fallback must not invent risk flags")
	}
}

func TestServiceWithoutInnerUsesFallback(t *testing.T) {
	svc := NewService(nil)
	overall := svc.AnalyzeOverall(context.Background(), nil, "Update onboarding steps")
	if overall.Title != "Update onboarding steps" {
		t.Fatalf("unexpected title: %q", overall.Title)
	}
}

func TestFallbackChangeVerbs(t *testing.T) {
	cases := map[string]string{
		"added":    "Added",
		"deleted":  "Deleted",
		"modified": "Modified",
	}
	for changeType, verb := range cases {
		result := FallbackChange(ChangeInput{FilePath: "a/b.md", ChangeType: changeType})
		if result.Changelog != verb+" b.md" {
			t.Fatalf("changeType %s: got %q", changeType, result.Changelog)
		}
	}
}

func TestHTTPClientRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze/change" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"file_path":"a.md","changelog":"Rewrote intro","risk_flags":["tone"],"confidence":0.9}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	result, err := client.AnalyzeChange(context.Background(), ChangeInput{FilePath: "a.md", ChangeType: "modified"})
	if err != nil {
		t.Fatalf("analyze change: %v", err)
	}
	if result.Changelog != "Rewrote intro" || result.Confidence != 0.9 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHTTPClientNon200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	if _, err := client.AnalyzeChange(context.Background(), ChangeInput{FilePath: "a.md"}); err == nil {
		t.Fatalf("expected error")
	}
}
