package crawler

import (
	"strings"

	"edu-news/internal/edu_news/model"
)

// Locale holds the keyword lists used to classify and tag one country's news.
type Locale struct {
	AI         []string
	Education  []string
	Vocabulary []string
	// FoldCase matches case-insensitively against title and summary.
	// Otherwise matching is case-sensitive against the title only.
	FoldCase bool
}

var (
	koreanLocale = Locale{
		AI:         []string{"AI", "인공지능", "GPT", "챗봇", "딥러닝", "머신러닝", "생성형"},
		Education:  []string{"교육", "학교", "학생", "교사", "수업", "학습", "대학"},
		Vocabulary: []string{"AI", "인공지능", "GPT", "ChatGPT", "Claude", "챗봇", "교육", "학교", "학생", "교사", "대학", "온라인", "디지털", "에듀테크"},
	}
	usLocale = Locale{
		AI:         []string{"ai", "artificial intelligence", "gpt", "chatbot", "machine learning", "deep learning", "llm", "generative"},
		Education:  []string{"education", "school", "student", "teacher", "classroom", "learning", "university", "edtech"},
		Vocabulary: []string{"AI", "ChatGPT", "GPT", "Claude", "Gemini", "OpenAI", "Anthropic", "Google", "Microsoft", "education", "school", "student", "teacher", "learning", "edtech"},
		FoldCase:   true,
	}
)

func LocaleFor(c model.Country) Locale {
	if c == model.CountryKR {
		return koreanLocale
	}
	return usLocale
}

// Classify resolves the category. Both keyword sets win over either one, and
// the declared category applies only when neither matches.
func (l Locale) Classify(title, summary string, declared model.Category) model.Category {
	text := title
	if l.FoldCase {
		text = strings.ToLower(title + " " + summary)
	}
	hasAI := containsAny(text, l.AI)
	hasEdu := containsAny(text, l.Education)

	switch {
	case hasAI && hasEdu:
		return model.CategoryAIEducation
	case hasAI:
		return model.CategoryAI
	case hasEdu:
		return model.CategoryEducation
	}
	return declared
}

// Keywords returns the vocabulary terms found in title, in vocabulary order.
func (l Locale) Keywords(title string) []string {
	if l.FoldCase {
		title = strings.ToLower(title)
	}
	out := []string{}
	for _, kw := range l.Vocabulary {
		needle := kw
		if l.FoldCase {
			needle = strings.ToLower(kw)
		}
		if strings.Contains(title, needle) {
			out = append(out, kw)
		}
	}
	return out
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
