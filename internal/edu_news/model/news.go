package model

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryAI          Category = "AI"
	CategoryEducation   Category = "Education"
	CategoryAIEducation Category = "AI+Education"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryAI, CategoryEducation, CategoryAIEducation:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type Country string

const (
	CountryKR Country = "KR"
	CountryUS Country = "US"
)

func ParseCountry(s string) (Country, error) {
	switch c := Country(s); c {
	case CountryKR, CountryUS:
		return c, nil
	}
	return "", fmt.Errorf("unknown country %q", s)
}

// Language is the default output language for articles from this country.
func (c Country) Language() string {
	if c == CountryKR {
		return "ko"
	}
	return "en"
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusSelected  Status = "selected"
	StatusProcessed Status = "processed"
	StatusPublished Status = "published"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusSelected, StatusProcessed, StatusPublished:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// RawNews is one normalized feed item. ID is derived from URL.
type RawNews struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Content     string    `bson:"content" json:"content"` // plain text, <= 500 runes
	Source      string    `bson:"source" json:"source"`
	URL         string    `bson:"url" json:"url"`
	PublishedAt time.Time `bson:"publishedAt" json:"publishedAt"`
	CrawledAt   time.Time `bson:"crawledAt" json:"crawledAt"` // stamped at write time
	Category    Category  `bson:"category" json:"category"`
	Country     Country   `bson:"country" json:"country"`
	Status      Status    `bson:"status" json:"status"`
	Keywords    []string  `bson:"keywords" json:"keywords"`
}

// NewsQuery filters the read side. Zero values mean "no filter".
type NewsQuery struct {
	Category Category
	Country  Country
	Status   Status
	Since    time.Time
	Limit    int
}

const DefaultQueryLimit = 100
