package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RelevanceThreshold is the minimum relevance score for a submission to be
// stored; anything below is analyzed but discarded.
const RelevanceThreshold = 0.3

// ClassificationResult is the validated form of the generative service's
// JSON classification payload. It is parsed at the boundary so the rest of
// the core never handles untyped maps.
type ClassificationResult struct {
	IsRelevant      bool               `json:"is_relevant"`
	RelevanceScore  float64            `json:"relevance_score"`
	RelevanceReason string             `json:"relevance_reason"`
	Classification  ClassificationType `json:"classification"`
	Confidence      float64            `json:"confidence"`
	Rationale       string             `json:"rationale"`
	DCWFTasks       []TaskMapping      `json:"dcwf_tasks"`
	WorkRoles       []string           `json:"work_roles"`
	KeyFindings     []string           `json:"key_findings"`
	AITools         []string           `json:"ai_tools_mentioned"`
}

// DefaultClassification is the documented fallback when classification fails
// or returns malformed data: assume relevant, Augment, middling confidence.
func DefaultClassification(reason string) ClassificationResult {
	if reason == "" {
		reason = "auto-classification failed"
	}
	return ClassificationResult{
		IsRelevant:     true,
		RelevanceScore: 0.5,
		Classification: ClassificationAugment,
		Confidence:     0.5,
		Rationale:      fmt.Sprintf("%s, defaulting to Augment", reason),
	}
}

// ParseClassification decodes and validates a raw classification payload.
// Malformed or out-of-range payloads yield the default record, never an
// untyped map or a propagated fault.
func ParseClassification(raw string) (ClassificationResult, error) {
	// relevance_score is decoded through a pointer so an omitted field can be
	// told apart from an explicit zero: models that skip it mean "relevant".
	var wire struct {
		ClassificationResult
		RelevanceScore *float64 `json:"relevance_score"`
	}

	trimmed := extractJSONObject(raw)
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return DefaultClassification("malformed classification payload"), fmt.Errorf("parse classification json: %w", err)
	}

	result := wire.ClassificationResult
	if result.Classification != "" && !result.Classification.Valid() {
		return DefaultClassification(fmt.Sprintf("unknown classification %q", result.Classification)), nil
	}
	result.Confidence = clamp01(result.Confidence)
	if wire.RelevanceScore != nil {
		result.RelevanceScore = clamp01(*wire.RelevanceScore)
	} else {
		result.RelevanceScore = 1.0
	}
	for i := range result.DCWFTasks {
		result.DCWFTasks[i].RelevanceScore = clamp01(result.DCWFTasks[i].RelevanceScore)
	}
	return result, nil
}

// Accepted reports whether the submission passed the relevance gate.
func (r ClassificationResult) Accepted() bool {
	return r.IsRelevant && r.RelevanceScore >= RelevanceThreshold
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// extractJSONObject trims markdown fences and prose around the first JSON
// object in a model response.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
