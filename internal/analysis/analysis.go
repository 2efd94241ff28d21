// Package analysis models the structured results the AI collaborator can
// produce for a file. Results are parsed and validated here, at the boundary
// where they enter the system, and persisted as opaque JSON columns.
package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type identifies one kind of analysis.
type Type string

const (
	TypeCodeReview    Type = "code-review"
	TypeCodeExplain   Type = "code-explain"
	TypeRefactor      Type = "refactor"
	TypeBugDetect     Type = "bug-detect"
	TypeDocumentation Type = "documentation"
	TypePerformance   Type = "performance"
	TypeSecurity      Type = "security"
	TypeAccessibility Type = "accessibility"
)

// Types lists every supported analysis type.
var Types = []Type{
	TypeCodeReview,
	TypeCodeExplain,
	TypeRefactor,
	TypeBugDetect,
	TypeDocumentation,
	TypePerformance,
	TypeSecurity,
	TypeAccessibility,
}

// Valid reports whether t is a known analysis type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Result is one validated analysis outcome.
type Result interface {
	Type() Type
	Validate() error
}

// CodeReviewResult rates a file and lists findings.
type CodeReviewResult struct {
	OverallRating float64           `json:"overallRating"`
	Summary       string            `json:"summary"`
	Issues        []CodeReviewIssue `json:"issues,omitempty"`
	Strengths     []string          `json:"strengths,omitempty"`
	Improvements  []string          `json:"improvements,omitempty"`
}

type CodeReviewIssue struct {
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Line       int    `json:"line,omitempty"`
}

func (r *CodeReviewResult) Type() Type { return TypeCodeReview }

func (r *CodeReviewResult) Validate() error {
	if r.OverallRating < 0 || r.OverallRating > 10 {
		return fmt.Errorf("overallRating must be within [0,10], got %v", r.OverallRating)
	}
	if r.Summary == "" {
		return fmt.Errorf("summary is required")
	}
	for _, issue := range r.Issues {
		if err := oneOf("issues.severity", issue.Severity, "critical", "warning", "info"); err != nil {
			return err
		}
	}
	return nil
}

// CodeExplanation describes what a file does and how.
type CodeExplanation struct {
	Summary     string               `json:"summary"`
	Purpose     string               `json:"purpose"`
	Components  []ExplainedComponent `json:"components,omitempty"`
	KeyFeatures []string             `json:"keyFeatures,omitempty"`
	Usage       string               `json:"usage,omitempty"`
}

type ExplainedComponent struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *CodeExplanation) Type() Type { return TypeCodeExplain }

func (r *CodeExplanation) Validate() error {
	if r.Summary == "" {
		return fmt.Errorf("summary is required")
	}
	if r.Purpose == "" {
		return fmt.Errorf("purpose is required")
	}
	return nil
}

// RefactoringSuggestions proposes before/after rewrites.
type RefactoringSuggestions struct {
	Priority    string                  `json:"priority"`
	Suggestions []RefactoringSuggestion `json:"suggestions"`
}

type RefactoringSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Before      string `json:"before"`
	After       string `json:"after"`
	Benefit     string `json:"benefit"`
	Effort      string `json:"effort"`
}

func (r *RefactoringSuggestions) Type() Type { return TypeRefactor }

func (r *RefactoringSuggestions) Validate() error {
	if err := oneOf("priority", r.Priority, "low", "medium", "high"); err != nil {
		return err
	}
	for _, s := range r.Suggestions {
		if err := oneOf("suggestions.effort", s.Effort, "low", "medium", "high"); err != nil {
			return err
		}
	}
	return nil
}

// BugDetectionResult lists discovered defects.
type BugDetectionResult struct {
	BugsFound       int           `json:"bugsFound"`
	Bugs            []DetectedBug `json:"bugs,omitempty"`
	PotentialIssues []string      `json:"potentialIssues,omitempty"`
}

type DetectedBug struct {
	Severity    string `json:"severity"`
	BugType     string `json:"type"`
	Description string `json:"description"`
	Fix         string `json:"fix"`
	Impact      string `json:"impact"`
	Line        int    `json:"line,omitempty"`
}

func (r *BugDetectionResult) Type() Type { return TypeBugDetect }

func (r *BugDetectionResult) Validate() error {
	if r.BugsFound < 0 {
		return fmt.Errorf("bugsFound cannot be negative")
	}
	for _, b := range r.Bugs {
		if err := oneOf("bugs.severity", b.Severity, "critical", "major", "minor"); err != nil {
			return err
		}
	}
	return nil
}

// DocumentationResult carries the rewritten, documented source.
type DocumentationResult struct {
	DocumentedCode string `json:"documentedCode"`
}

func (r *DocumentationResult) Type() Type { return TypeDocumentation }

func (r *DocumentationResult) Validate() error {
	if r.DocumentedCode == "" {
		return fmt.Errorf("documentedCode is required")
	}
	return nil
}

// PerformanceAnalysis scores a file and lists bottlenecks.
type PerformanceAnalysis struct {
	Score         float64            `json:"score"`
	Issues        []PerformanceIssue `json:"issues,omitempty"`
	Optimizations []string           `json:"optimizations,omitempty"`
}

type PerformanceIssue struct {
	Category        string `json:"category"`
	Severity        string `json:"severity"`
	Description     string `json:"description"`
	Recommendation  string `json:"recommendation"`
	EstimatedImpact string `json:"estimatedImpact"`
}

func (r *PerformanceAnalysis) Type() Type { return TypePerformance }

func (r *PerformanceAnalysis) Validate() error {
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("score must be within [0,100], got %v", r.Score)
	}
	for _, issue := range r.Issues {
		if err := oneOf("issues.severity", issue.Severity, "low", "medium", "high"); err != nil {
			return err
		}
	}
	return nil
}

// SecurityScanResult grades risk and lists vulnerabilities.
type SecurityScanResult struct {
	RiskLevel       string          `json:"riskLevel"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
}

type Vulnerability struct {
	VulnType    string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Fix         string `json:"fix"`
	CVE         string `json:"cve,omitempty"`
}

func (r *SecurityScanResult) Type() Type { return TypeSecurity }

func (r *SecurityScanResult) Validate() error {
	if err := oneOf("riskLevel", r.RiskLevel, "low", "medium", "high", "critical", "safe"); err != nil {
		return err
	}
	for _, v := range r.Vulnerabilities {
		if err := oneOf("vulnerabilities.severity", v.Severity, "low", "medium", "high", "critical"); err != nil {
			return err
		}
	}
	return nil
}

// AccessibilityCheckResult scores WCAG conformance.
type AccessibilityCheckResult struct {
	Score     float64              `json:"score"`
	WCAGLevel string               `json:"wcagLevel,omitempty"`
	Issues    []AccessibilityIssue `json:"issues,omitempty"`
	Passed    []string             `json:"passed,omitempty"`
}

type AccessibilityIssue struct {
	Rule        string `json:"rule"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
	Element     string `json:"element,omitempty"`
	Fix         string `json:"fix"`
}

func (r *AccessibilityCheckResult) Type() Type { return TypeAccessibility }

func (r *AccessibilityCheckResult) Validate() error {
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("score must be within [0,100], got %v", r.Score)
	}
	for _, issue := range r.Issues {
		if err := oneOf("issues.impact", issue.Impact, "minor", "moderate", "serious", "critical"); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed, "|"), value)
}

// ParseResult decodes and validates a raw analysis payload for the given type.
func ParseResult(t Type, raw []byte) (Result, error) {
	var result Result
	switch t {
	case TypeCodeReview:
		result = &CodeReviewResult{}
	case TypeCodeExplain:
		result = &CodeExplanation{}
	case TypeRefactor:
		result = &RefactoringSuggestions{}
	case TypeBugDetect:
		result = &BugDetectionResult{}
	case TypeDocumentation:
		result = &DocumentationResult{}
	case TypePerformance:
		result = &PerformanceAnalysis{}
	case TypeSecurity:
		result = &SecurityScanResult{}
	case TypeAccessibility:
		result = &AccessibilityCheckResult{}
	default:
		return nil, fmt.Errorf("unknown analysis type: %s", t)
	}

	if err := json.Unmarshal(raw, result); err != nil {
		return nil, fmt.Errorf("malformed %s result: %w", t, err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s result: %w", t, err)
	}
	return result, nil
}

// Severity extracts the headline severity/risk field for persistence, when
// the result shape carries one.
func Severity(r Result) string {
	switch v := r.(type) {
	case *RefactoringSuggestions:
		return v.Priority
	case *SecurityScanResult:
		return v.RiskLevel
	default:
		return ""
	}
}
