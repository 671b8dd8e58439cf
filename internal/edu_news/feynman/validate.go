package feynman

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"edu-news/internal/edu_news/model"
)

const (
	defaultDifficulty = 3
	minDifficulty     = 1
	maxDifficulty     = 5
)

var ErrInvalidArticle = errors.New("invalid feynman article")

// Validate parses a generation payload. Title, content and exactly three
// questions are required; question types are assigned by position and
// missing optional fields get defaults.
func Validate(payload string) (model.FeynmanContent, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(stripFence(payload)), &m); err != nil {
		return model.FeynmanContent{}, fmt.Errorf("%w: %v", ErrInvalidArticle, err)
	}

	out := model.FeynmanContent{
		Title:            str(m["feynmanTitle"]),
		Summary:          str(m["feynmanSummary"]),
		Content:          str(m["feynmanContent"]),
		EducationContext: str(m["educationContext"]),
		Tags:             strList(m["tags"]),
		TargetAudience:   model.Audience(str(m["targetAudience"])),
		DifficultyLevel:  difficulty(m["difficultyLevel"]),
	}
	if strings.TrimSpace(out.Title) == "" {
		return model.FeynmanContent{}, fmt.Errorf("%w: missing feynmanTitle", ErrInvalidArticle)
	}
	if strings.TrimSpace(out.Content) == "" {
		return model.FeynmanContent{}, fmt.Errorf("%w: missing feynmanContent", ErrInvalidArticle)
	}

	qs, ok := m["questions"].([]any)
	if !ok {
		return model.FeynmanContent{}, fmt.Errorf("%w: questions must be a list", ErrInvalidArticle)
	}
	if len(qs) != len(model.QuestionOrder) {
		return model.FeynmanContent{}, fmt.Errorf("%w: want %d questions, got %d", ErrInvalidArticle, len(model.QuestionOrder), len(qs))
	}
	out.Questions = make([]model.Question, len(qs))
	for i, q := range qs {
		var item model.Question
		switch v := q.(type) {
		case map[string]any:
			item.Question = str(v["question"])
			item.Reasoning = str(v["reasoning"])
		case string:
			item.Question = v
		}
		item.Type = model.QuestionOrder[i]
		out.Questions[i] = item
	}

	if !out.TargetAudience.Valid() {
		out.TargetAudience = model.AudienceTeacher
	}
	return out, nil
}

// stripFence removes a surrounding ```json block if the model added one.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strList(v any) []string {
	out := []string{}
	items, _ := v.([]any)
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// difficulty reads a number or numeric string, clamped to 1..5.
// Missing, zero or unparsable values give the default.
func difficulty(v any) int {
	var f float64
	switch d := v.(type) {
	case float64:
		f = d
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(d), 64)
		if err != nil {
			return defaultDifficulty
		}
		f = parsed
	default:
		return defaultDifficulty
	}
	if f == 0 || math.IsNaN(f) {
		return defaultDifficulty
	}
	n := int(math.Round(f))
	return min(max(n, minDifficulty), maxDifficulty)
}
