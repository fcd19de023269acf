package seeder

import (
	"regexp"
	"strings"
	"unicode"
)

// ContentProcessor normalizes scraped help-center content before it becomes
// a knowledge entry.
type ContentProcessor struct {
	multiWhitespace *regexp.Regexp
	htmlTags        *regexp.Regexp
	breadcrumbs     *regexp.Regexp
}

func NewContentProcessor() *ContentProcessor {
	return &ContentProcessor{
		multiWhitespace: regexp.MustCompile(`\s+`),
		htmlTags:        regexp.MustCompile(`<[^>]*>`),
		breadcrumbs:     regexp.MustCompile(`(?i)home\s*[>›»]\s*[^\n]*`),
	}
}

// CleanContent removes leftover markup and normalizes whitespace
func (cp *ContentProcessor) CleanContent(content string) string {
	content = cp.htmlTags.ReplaceAllString(content, "")
	content = cp.breadcrumbs.ReplaceAllString(content, "")
	content = cp.multiWhitespace.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// ExtractTags derives tag candidates from a section title: lowercased
// alphabetic words of 3+ characters, deduplicated.
func (cp *ContentProcessor) ExtractTags(title string) []string {
	var tags []string
	seen := make(map[string]bool)

	for _, field := range strings.Fields(strings.ToLower(title)) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if len(word) >= 3 && !seen[word] {
			seen[word] = true
			tags = append(tags, word)
		}
	}

	return tags
}

// WordCount counts whitespace-separated words
func (cp *ContentProcessor) WordCount(content string) int {
	return len(strings.Fields(content))
}

// SuggestConfidence assigns an initial editorial confidence from content
// length. Longer, substantial articles start higher; editors adjust later
// in the admin console.
func (cp *ContentProcessor) SuggestConfidence(content string) float64 {
	words := cp.WordCount(content)
	switch {
	case words >= 300:
		return 0.8
	case words >= 100:
		return 0.7
	case words >= 30:
		return 0.6
	default:
		return 0.4
	}
}
