package feynman

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxSlugLen     = 100
	maxMetaDescLen = 160
)

var (
	slugDrop   = regexp.MustCompile(`[^\w\s-]`)
	slugSpaces = regexp.MustCompile(`\s+`)
	slugDashes = regexp.MustCompile(`-+`)
)

// Slug makes an ASCII url segment from title. Titles with no ASCII word
// characters (most Korean titles) fall back to fallback.
func Slug(title, fallback string) string {
	s := strings.ToLower(title)
	s = slugDrop.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return fallback
	}
	return s
}

// MetaDescription is the summary, or the start of the body, cut to 160 runes.
func MetaDescription(summary, content string) string {
	s := strings.TrimSpace(summary)
	if s == "" {
		s = strings.Join(strings.Fields(strings.NewReplacer("#", "", "*", "").Replace(content)), " ")
	}
	if utf8.RuneCountInString(s) <= maxMetaDescLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxMetaDescLen])
}
