// Package analyzer is the contract with the external text-analysis service
// that annotates pull requests with changelogs and risk flags. Analysis is
// best effort: any failure degrades to a deterministic fallback so PR
// creation never blocks on it.
package analyzer

import (
	"context"
	"fmt"
	"path"
)

// Confidence below LowConfidenceThreshold marks an annotation as machine
// guesswork rather than real analysis.
const (
	LowConfidenceThreshold = 0.6
	fallbackConfidence     = 0.5
)

type ChangeInput struct {
	FilePath     string `json:"file_path"`
	BaseText     string `json:"base_text,omitempty"`
	ForkText     string `json:"fork_text,omitempty"`
	ProposedText string `json:"proposed_text"`
	ChangeType   string `json:"change_type"`
}

type FileAnalysis struct {
	FilePath   string   `json:"file_path"`
	Changelog  string   `json:"changelog"`
	RiskFlags  []string `json:"risk_flags"`
	Confidence float64  `json:"confidence"`
}

type OverallAnalysis struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	HighRisks      []string `json:"high_risks"`
	MergeChecklist []string `json:"merge_checklist"`
}

type Analyzer interface {
	AnalyzeChange(ctx context.Context, input ChangeInput) (FileAnalysis, error)
	AnalyzeOverall(ctx context.Context, files []FileAnalysis, commitMessage string) (OverallAnalysis, error)
}

// FallbackChange is the deterministic annotation used when the analyzer is
// unconfigured or failing: generic changelog, no risk flags, confidence
// below the low-confidence threshold.
func FallbackChange(input ChangeInput) FileAnalysis {
	verb := "Modified"
	switch input.ChangeType {
	case "added":
		verb = "Added"
	case "deleted":
		verb = "Deleted"
	}
	return FileAnalysis{
		FilePath:   input.FilePath,
		Changelog:  fmt.Sprintf("%s %s", verb, path.Base(input.FilePath)),
		RiskFlags:  []string{},
		Confidence: fallbackConfidence,
	}
}

// FallbackOverall summarizes from the per-file annotations alone.
func FallbackOverall(files []FileAnalysis, commitMessage string) OverallAnalysis {
	description := commitMessage
	if description == "" {
		description = fmt.Sprintf("Changes to %d file(s)", len(files))
	}
	return OverallAnalysis{
		Title:          description,
		Description:    description,
		HighRisks:      []string{},
		MergeChecklist: []string{"Review the diff before merging"},
	}
}

// Service wraps an optional inner analyzer and guarantees a usable result.
type Service struct {
	inner Analyzer
}

// NewService accepts a nil inner analyzer; everything then falls back.
func NewService(inner Analyzer) *Service {
	return &Service{inner: inner}
}

func (s *Service) AnalyzeChange(ctx context.Context, input ChangeInput) FileAnalysis {
	if s.inner == nil {
		return FallbackChange(input)
	}
	result, err := s.inner.AnalyzeChange(ctx, input)
	if err != nil {
		return FallbackChange(input)
	}
	if result.FilePath == "" {
		result.FilePath = input.FilePath
	}
	if result.RiskFlags == nil {
		result.RiskFlags = []string{}
	}
	return result
}

func (s *Service) AnalyzeOverall(ctx context.Context, files []FileAnalysis, commitMessage string) OverallAnalysis {
	if s.inner == nil {
		return FallbackOverall(files, commitMessage)
	}
	result, err := s.inner.AnalyzeOverall(ctx, files, commitMessage)
	if err != nil {
		return FallbackOverall(files, commitMessage)
	}
	if result.HighRisks == nil {
		result.HighRisks = []string{}
	}
	if result.MergeChecklist == nil {
		result.MergeChecklist = []string{}
	}
	return result
}
