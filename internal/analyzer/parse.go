package analyzer

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/models"
)

const (
	minScore = 75
	maxScore = 100

	maxStrengths     = 5
	maxImprovements  = 3
	maxTalkingPoints = 5
)

// rawAnalysis mirrors the JSON the model is asked for. Pointers and nil
// slices let validation tell "missing" apart from "present but empty".
type rawAnalysis struct {
	Summary       *string      `json:"summary"`
	Strengths     []string     `json:"strengths"`
	Improvements  []string     `json:"improvements"`
	TalkingPoints []string     `json:"talkingPoints"`
	Score         *json.Number `json:"score"`
}

// parseModelOutput decodes the model reply. It tries the reply as is, then
// without a markdown code fence, then the span from the first '{' to the
// last '}'.
func parseModelOutput(content string) (*rawAnalysis, error) {
	content = strings.TrimSpace(content)

	var firstErr error
	for _, candidate := range []string{content, stripCodeFence(content), outermostObject(content)} {
		if candidate == "" {
			continue
		}
		var raw rawAnalysis
		err := json.Unmarshal([]byte(candidate), &raw)
		if err == nil {
			return &raw, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		firstErr = fmt.Errorf("empty response")
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, firstErr)
}

// stripCodeFence removes a leading ```lang line and a trailing ``` fence.
func stripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return ""
	}

	start := strings.IndexByte(content, '\n')
	if start < 0 {
		return ""
	}
	body := content[start+1:]

	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func outermostObject(content string) string {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

// validate checks that every field is present and that the summary and the
// three lists carry content. Blank list entries are dropped first.
func validate(raw *rawAnalysis) (*models.AnalysisResult, error) {
	var missing []string

	summary := ""
	if raw.Summary != nil {
		summary = strings.TrimSpace(*raw.Summary)
	}
	if summary == "" {
		missing = append(missing, "summary")
	}

	strengths := compact(raw.Strengths)
	if len(strengths) == 0 {
		missing = append(missing, "strengths")
	}
	improvements := compact(raw.Improvements)
	if len(improvements) == 0 {
		missing = append(missing, "improvements")
	}
	talkingPoints := compact(raw.TalkingPoints)
	if len(talkingPoints) == 0 {
		missing = append(missing, "talkingPoints")
	}

	var score int
	if raw.Score == nil {
		missing = append(missing, "score")
	} else {
		f, err := raw.Score.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			missing = append(missing, "score")
		} else {
			score = clampScore(f)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing or empty %s", ErrIncompleteAnalysis, strings.Join(missing, ", "))
	}

	return &models.AnalysisResult{
		Summary:       summary,
		Strengths:     strengths,
		Improvements:  improvements,
		TalkingPoints: talkingPoints,
		Score:         score,
	}, nil
}

// normalize truncates the lists to their maximum lengths. Short lists are
// left alone.
func normalize(result *models.AnalysisResult) *models.AnalysisResult {
	result.Strengths = truncate(result.Strengths, maxStrengths)
	result.Improvements = truncate(result.Improvements, maxImprovements)
	result.TalkingPoints = truncate(result.TalkingPoints, maxTalkingPoints)
	return result
}

// clampScore bounds the model's score to [75, 100]. Scores inside the range
// are only rounded.
func clampScore(v float64) int {
	switch {
	case v < minScore:
		return minScore
	case v > maxScore:
		return maxScore
	}
	return int(math.Round(v))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func truncate(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
