package formatters

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"atsmatch/internal/ats"
	"atsmatch/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisResult", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "ImproveOutput", &ImproveTextFormatter{})
	registry.RegisterFormatter("markdown", "ImproveOutput", &ImproveMarkdownFormatter{})
	registry.RegisterFormatter("text", "KeywordsOutput", &KeywordsTextFormatter{})
	registry.RegisterFormatter("markdown", "KeywordsOutput", &KeywordsMarkdownFormatter{})
	registry.RegisterFormatter("text", "SessionStatus", &StatusTextFormatter{})
	registry.RegisterFormatter("markdown", "SessionStatus", &StatusTextFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	return slices.Sorted(maps.Keys(fr.formatters))
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult:
		return "AnalysisResult"
	case types.ImproveOutput:
		return "ImproveOutput"
	case types.KeywordsOutput:
		return "KeywordsOutput"
	case types.SessionStatus:
		return "SessionStatus"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalysisTextFormatter handles text formatting for analysis results
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder
	writeAnalysisText(&output, result)
	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

func writeAnalysisText(output *strings.Builder, result types.AnalysisResult) {
	output.WriteString("=== ATS ANALYSIS ===\n")
	fmt.Fprintf(output, "Score: %d/100 (%s)\n", result.Score, ats.ScoreBand(result.Score))
	fmt.Fprintf(output, "Keyword Match: %d%% (%s)\n", result.MatchPercentage, ats.MatchBand(result.MatchPercentage))
	fmt.Fprintf(output, "Keyword Density: %d\n\n", result.KeywordDensity)

	writeTextList(output, "MATCHED KEYWORDS", result.MatchedKeywords, "None")
	writeTextList(output, "MISSING KEYWORDS", result.MissingKeywords, "None, every job keyword is covered")

	output.WriteString("=== SUGGESTIONS ===\n")
	for i, suggestion := range result.Suggestions {
		fmt.Fprintf(output, "%d. %s\n", i+1, suggestion)
	}
}

func writeTextList(output *strings.Builder, title string, items []string, empty string) {
	fmt.Fprintf(output, "=== %s (%d) ===\n", title, len(items))
	if len(items) == 0 {
		output.WriteString(empty)
		output.WriteString("\n\n")
		return
	}
	output.WriteString(strings.Join(items, ", "))
	output.WriteString("\n\n")
}

// AnalysisMarkdownFormatter handles markdown formatting for analysis results
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# ATS Analysis\n\n")
	writeAnalysisMarkdown(&output, result, "##")
	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

func writeAnalysisMarkdown(output *strings.Builder, result types.AnalysisResult, heading string) {
	fmt.Fprintf(output, "**Score:** %d/100 (%s)\n\n", result.Score, ats.ScoreBand(result.Score))
	fmt.Fprintf(output, "**Keyword Match:** %d%% (%s)\n\n", result.MatchPercentage, ats.MatchBand(result.MatchPercentage))
	fmt.Fprintf(output, "**Keyword Density:** %d\n\n", result.KeywordDensity)

	writeMarkdownList(output, heading+" Matched Keywords", result.MatchedKeywords)
	writeMarkdownList(output, heading+" Missing Keywords", result.MissingKeywords)

	fmt.Fprintf(output, "%s Suggestions\n\n", heading)
	for i, suggestion := range result.Suggestions {
		fmt.Fprintf(output, "%d. %s\n", i+1, suggestion)
	}
	output.WriteString("\n")
}

func writeMarkdownList(output *strings.Builder, title string, items []string) {
	output.WriteString(title)
	output.WriteString("\n\n")
	if len(items) == 0 {
		output.WriteString("_None_\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(output, "- `%s`\n", item)
	}
	output.WriteString("\n")
}

// ImproveTextFormatter handles text formatting for improvement results
type ImproveTextFormatter struct{}

func (itf *ImproveTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ImproveOutput)
	if !ok {
		return "", fmt.Errorf("expected ImproveOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== IMPROVED RESUME ===\n\n")
	output.WriteString(result.ImprovedText)
	output.WriteString("\n\n")

	output.WriteString("=== SCORE ===\n")
	if result.After != nil {
		fmt.Fprintf(&output, "Before: %d/100, match %d%%\n", result.Before.Score, result.Before.MatchPercentage)
		fmt.Fprintf(&output, "After:  %d/100, match %d%%\n", result.After.Score, result.After.MatchPercentage)
	} else {
		fmt.Fprintf(&output, "Current: %d/100, match %d%%\n", result.Before.Score, result.Before.MatchPercentage)
	}
	if len(result.AddedKeywords) > 0 {
		fmt.Fprintf(&output, "Added skills: %s\n", strings.Join(result.AddedKeywords, ", "))
	}
	if result.AppliedToStore {
		output.WriteString("Saved as the current resume.\n")
	}
	if result.SavedTo != "" {
		fmt.Fprintf(&output, "Downloaded to %s\n", result.SavedTo)
	}

	return output.String(), nil
}

func (itf *ImproveTextFormatter) SupportedType() string {
	return "ImproveOutput"
}

// ImproveMarkdownFormatter handles markdown formatting for improvement results
type ImproveMarkdownFormatter struct{}

func (imf *ImproveMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ImproveOutput)
	if !ok {
		return "", fmt.Errorf("expected ImproveOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Improved Resume\n\n")
	output.WriteString("```text\n")
	output.WriteString(result.ImprovedText)
	if !strings.HasSuffix(result.ImprovedText, "\n") {
		output.WriteString("\n")
	}
	output.WriteString("```\n\n")

	output.WriteString("## Score\n\n")
	output.WriteString("| | Score | Match |\n|---|---|---|\n")
	fmt.Fprintf(&output, "| Before | %d | %d%% |\n", result.Before.Score, result.Before.MatchPercentage)
	if result.After != nil {
		fmt.Fprintf(&output, "| After | %d | %d%% |\n", result.After.Score, result.After.MatchPercentage)
	}
	output.WriteString("\n")

	if len(result.AddedKeywords) > 0 {
		writeMarkdownList(&output, "## Added Skills", result.AddedKeywords)
	}
	if result.SavedTo != "" {
		fmt.Fprintf(&output, "Downloaded to `%s`\n", result.SavedTo)
	}

	return output.String(), nil
}

func (imf *ImproveMarkdownFormatter) SupportedType() string {
	return "ImproveOutput"
}

// KeywordsTextFormatter handles text formatting for keyword sets
type KeywordsTextFormatter struct{}

func (ktf *KeywordsTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.KeywordsOutput)
	if !ok {
		return "", fmt.Errorf("expected KeywordsOutput, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "=== KEYWORDS: %s ===\n", result.Source)
	fmt.Fprintf(&output, "Density: %d\n\n", result.Density)
	for i, kw := range result.Keywords {
		fmt.Fprintf(&output, "%2d. %s\n", i+1, kw)
	}
	return output.String(), nil
}

func (ktf *KeywordsTextFormatter) SupportedType() string {
	return "KeywordsOutput"
}

// KeywordsMarkdownFormatter handles markdown formatting for keyword sets
type KeywordsMarkdownFormatter struct{}

func (kmf *KeywordsMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.KeywordsOutput)
	if !ok {
		return "", fmt.Errorf("expected KeywordsOutput, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "# Keywords: %s\n\n", result.Source)
	fmt.Fprintf(&output, "**Density:** %d\n\n", result.Density)
	for i, kw := range result.Keywords {
		fmt.Fprintf(&output, "%d. `%s`\n", i+1, kw)
	}
	return output.String(), nil
}

func (kmf *KeywordsMarkdownFormatter) SupportedType() string {
	return "KeywordsOutput"
}

// StatusTextFormatter prints the session status. Markdown uses it too.
type StatusTextFormatter struct{}

func (stf *StatusTextFormatter) Format(data any) (string, error) {
	status, ok := data.(types.SessionStatus)
	if !ok {
		return "", fmt.Errorf("expected SessionStatus, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== SESSION ===\n")
	fmt.Fprintf(&output, "Page: %s\n", status.CurrentPage)
	resume := "none"
	if status.HasResume {
		resume = "uploaded"
		if status.ResumeFileName != "" {
			resume += " (" + status.ResumeFileName + ")"
		}
	}
	fmt.Fprintf(&output, "Resume: %s\n", resume)
	fmt.Fprintf(&output, "Job description: %s\n", yesNo(status.HasJobDescription))
	if status.LastScore != nil {
		fmt.Fprintf(&output, "Last score: %d/100 (%s)\n", *status.LastScore, ats.ScoreBand(*status.LastScore))
	} else {
		output.WriteString("Last score: none\n")
	}
	fmt.Fprintf(&output, "Theme: %s\n", status.Theme)
	return output.String(), nil
}

func (stf *StatusTextFormatter) SupportedType() string {
	return "SessionStatus"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
