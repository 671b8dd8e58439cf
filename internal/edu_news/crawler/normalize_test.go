package crawler

import (
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"edu-news/internal/edu_news/model"
	"edu-news/internal/edu_news/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID_StableAndAlphanumeric(t *testing.T) {
	urls := []string{
		"https://www.aitimes.com/news/articleView.html?idxno=1",
		"https://www.aitimes.com/news/articleView.html?idxno=2",
		"",
		"http://한국.kr/경로?q=1",
	}
	alnum := regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	seen := map[string]string{}
	for _, u := range urls {
		id := GenerateID(u)
		assert.Equal(t, id, GenerateID(u), "same url must give the same id")
		assert.Len(t, id, 32)
		assert.Regexp(t, alnum, id)
		if prev, ok := seen[id]; ok {
			t.Fatalf("collision between %q and %q", prev, u)
		}
		seen[id] = u
	}
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Hello world !", StripHTML("<p>Hello <b>world</b></p>\n\n <br/>!"))
	assert.Equal(t, "", StripHTML("   "))
	assert.Equal(t, "plain text", StripHTML("plain   text"))
	assert.Equal(t, "a & b", StripHTML("a &amp; b"))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("가나다라마", 150) // 750 runes
	got := Truncate(long, MaxContentRunes)
	assert.Equal(t, MaxContentRunes, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(long, got))

	assert.Equal(t, "short", Truncate("short", MaxContentRunes))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	pub := now.Add(-2 * time.Hour)
	e := source.Entry{
		Feed:     source.Feed{Name: "EdSurge", URL: "https://www.edsurge.com/news.rss"},
		Category: model.CategoryEducation,
		Country:  model.CountryUS,
	}

	it := Item{
		Title:     "Teachers try ChatGPT in the classroom",
		Summary:   "<p>" + strings.Repeat("x", 600) + "</p>",
		Link:      "https://www.edsurge.com/news/1",
		Published: &pub,
	}
	got := Normalize(it, e, now)

	assert.Equal(t, GenerateID(it.Link), got.ID)
	assert.Equal(t, "EdSurge", got.Source)
	assert.Equal(t, model.CategoryAIEducation, got.Category)
	assert.Equal(t, model.CountryUS, got.Country)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, pub, got.PublishedAt)
	assert.True(t, got.CrawledAt.IsZero())
	assert.Len(t, got.Content, MaxContentRunes)
	assert.Equal(t, []string{"ChatGPT", "GPT", "teacher"}, got.Keywords)
}

func TestNormalize_MissingFields(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := source.Entry{Feed: source.Feed{Name: "에듀프레스"}, Category: model.CategoryEducation, Country: model.CountryKR}

	got := Normalize(Item{}, e, now)
	assert.Equal(t, "", got.Title)
	assert.Equal(t, "", got.Content)
	assert.Equal(t, "", got.URL)
	assert.Equal(t, now, got.PublishedAt)
	assert.Equal(t, model.CategoryEducation, got.Category)
	require.NotNil(t, got.Keywords)
	assert.Empty(t, got.Keywords)
}

func TestNormalize_ContentFallsBackToBody(t *testing.T) {
	e := source.Entry{Feed: source.Feed{Name: "AI타임스"}, Category: model.CategoryAI, Country: model.CountryKR}
	got := Normalize(Item{Title: "t", Content: "<div>본문</div>"}, e, time.Now())
	assert.Equal(t, "본문", got.Content)
}
