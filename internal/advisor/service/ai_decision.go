package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang-stock-advisor/internal/advisor/dto"
)

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseError reports model output that cannot be used as a decision.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return "invalid model output: " + e.Reason
}

// ParseAIDecision extracts and validates the decision object from free-form model text.
// Code fences are ignored and the outermost JSON object is used.
func ParseAIDecision(raw string) (dto.AIDecision, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	obj := jsonObjectPattern.FindString(text)
	if obj == "" {
		return dto.AIDecision{}, &ParseError{Reason: "no JSON object found", Raw: raw}
	}

	var decision dto.AIDecision
	if err := json.Unmarshal([]byte(obj), &decision); err != nil {
		return dto.AIDecision{}, &ParseError{Reason: fmt.Sprintf("malformed JSON: %v", err), Raw: raw}
	}

	decision.Decision = dto.Decision(strings.ToUpper(strings.TrimSpace(string(decision.Decision))))
	if !decision.Decision.Valid() {
		return dto.AIDecision{}, &ParseError{Reason: fmt.Sprintf("unknown recommendation %q", decision.Decision), Raw: raw}
	}
	if decision.Confidence == nil || !isFinite(*decision.Confidence) {
		return dto.AIDecision{}, &ParseError{Reason: "confidence missing or not a number", Raw: raw}
	}
	decision.Rationale = strings.TrimSpace(decision.Rationale)
	if decision.Rationale == "" {
		return dto.AIDecision{}, &ParseError{Reason: "rationale is empty", Raw: raw}
	}

	c := clamp01(*decision.Confidence)
	decision.Confidence = &c
	return decision, nil
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
