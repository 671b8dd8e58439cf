package crawler

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"edu-news/internal/edu_news/model"
	"edu-news/internal/edu_news/source"

	"github.com/PuerkitoBio/goquery"
)

const (
	MaxItemsPerFeed = 20
	MaxContentRunes = 500
	idLength        = 32
)

// StripHTML returns the text content of s with whitespace collapsed.
func StripHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Truncate keeps the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// GenerateID derives a stable alphanumeric id from a URL.
func GenerateID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:idLength]
}

// Normalize turns a parsed feed item into a pending RawNews.
// CrawledAt is left zero; the gateway stamps it on write.
func Normalize(it Item, e source.Entry, now time.Time) model.RawNews {
	loc := LocaleFor(e.Country)

	text := it.Summary
	if text == "" {
		text = it.Content
	}

	published := now
	if it.Published != nil {
		published = *it.Published
	}

	return model.RawNews{
		ID:          GenerateID(it.Link),
		Title:       it.Title,
		Content:     Truncate(StripHTML(text), MaxContentRunes),
		Source:      e.Name,
		URL:         it.Link,
		PublishedAt: published,
		Category:    loc.Classify(it.Title, it.Summary, e.Category),
		Country:     e.Country,
		Status:      model.StatusPending,
		Keywords:    loc.Keywords(it.Title),
	}
}
