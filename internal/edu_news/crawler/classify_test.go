package crawler

import (
	"testing"

	"edu-news/internal/edu_news/model"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	kr := LocaleFor(model.CountryKR)
	us := LocaleFor(model.CountryUS)

	tests := []struct {
		name     string
		locale   Locale
		title    string
		summary  string
		declared model.Category
		want     model.Category
	}{
		{"kr both", kr, "AI 디지털교과서 학교 도입", "", model.CategoryAI, model.CategoryAIEducation},
		{"kr both from education feed", kr, "생성형 AI로 수업 설계", "", model.CategoryEducation, model.CategoryAIEducation},
		{"kr ai only", kr, "딥러닝 반도체 경쟁", "", model.CategoryEducation, model.CategoryAI},
		{"kr edu only", kr, "교사 연수 확대", "", model.CategoryAI, model.CategoryEducation},
		{"kr neither keeps declared", kr, "반도체 수출 증가", "", model.CategoryAI, model.CategoryAI},
		{"kr neither keeps declared edu", kr, "입시 일정 발표", "", model.CategoryEducation, model.CategoryEducation},
		{"kr case sensitive", kr, "ai 반도체", "", model.CategoryEducation, model.CategoryEducation},
		{"kr ignores summary", kr, "반도체", "교육 인공지능", model.CategoryAI, model.CategoryAI},
		{"us both", us, "New LLM tools", "built for every Teacher", model.CategoryAI, model.CategoryAIEducation},
		{"us ai only from summary", us, "Big release", "A Generative model", model.CategoryEducation, model.CategoryAI},
		{"us edu only", us, "Classroom budgets rise", "", model.CategoryAI, model.CategoryEducation},
		{"us neither", us, "Quantum chips", "benchmarks", model.CategoryEducation, model.CategoryEducation},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.locale.Classify(tt.title, tt.summary, tt.declared))
		})
	}
}

func TestKeywords(t *testing.T) {
	kr := LocaleFor(model.CountryKR)
	assert.Equal(t, []string{"AI", "GPT", "ChatGPT", "교육"}, kr.Keywords("ChatGPT 교육 활용 AI"))
	assert.Empty(t, kr.Keywords("chatgpt"))

	us := LocaleFor(model.CountryUS)
	assert.Equal(t, []string{"AI", "OpenAI", "school"}, us.Keywords("openai ships school ai"))
}
