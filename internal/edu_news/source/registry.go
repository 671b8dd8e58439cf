package source

import (
	"strings"

	"edu-news/internal/edu_news/model"
)

// Filter decides from the item title whether a feed item is kept.
type Filter func(title string) bool

// Feed describes one RSS endpoint.
type Feed struct {
	Name   string
	URL    string
	Filter Filter // optional
}

// Entry is a feed bound to the category and country it was registered under.
type Entry struct {
	Feed
	Category model.Category
	Country  model.Country
}

// Registry lists the feeds of one country per declared category.
type Registry struct {
	Country   model.Country
	AI        []Feed
	Education []Feed
}

// Entries flattens the registry. AI feeds come first, each list in declaration
// order; dedup precedence depends on this order.
func (r Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.AI)+len(r.Education))
	for _, f := range r.AI {
		out = append(out, Entry{Feed: f, Category: model.CategoryAI, Country: r.Country})
	}
	for _, f := range r.Education {
		out = append(out, Entry{Feed: f, Category: model.CategoryEducation, Country: r.Country})
	}
	return out
}

// TitleContainsAny builds a Filter matching any of words as a substring.
// With foldCase the title is lowercased first; words are expected lowercase.
func TitleContainsAny(foldCase bool, words ...string) Filter {
	return func(title string) bool {
		if foldCase {
			title = strings.ToLower(title)
		}
		for _, w := range words {
			if strings.Contains(title, w) {
				return true
			}
		}
		return false
	}
}

// Defaults returns the built-in registries, Korea first.
func Defaults() []Registry {
	return []Registry{Korea(), USA()}
}
