package agent

import (
	"regexp"
	"strings"
)

const maxKeywords = 6

var nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// stopWords are filtered out of customer questions before searching.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"being": true, "have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "must": true, "shall": true, "can": true,
	"i": true, "you": true, "he": true, "she": true, "it": true, "we": true,
	"they": true, "me": true, "my": true, "your": true, "his": true, "her": true,
	"its": true, "our": true, "their": true, "this": true, "that": true,
	"these": true, "those": true, "what": true, "which": true, "who": true,
	"whom": true, "when": true, "where": true, "why": true, "how": true,
	"to": true, "of": true, "in": true, "on": true, "at": true, "by": true,
	"for": true, "with": true, "about": true, "from": true, "as": true,
	"if": true, "then": true, "than": true, "so": true, "not": true, "no": true,
	"please": true, "help": true, "want": true, "need": true, "get": true,
	"there": true, "here": true, "any": true, "some": true, "all": true,
}

// importantKeywords are business terms always kept, even when short or
// otherwise a stop word.
var importantKeywords = map[string]bool{
	"return":    true,
	"returns":   true,
	"refund":    true,
	"refunds":   true,
	"shipping":  true,
	"ship":      true,
	"delivery":  true,
	"warranty":  true,
	"order":     true,
	"orders":    true,
	"address":   true,
	"payment":   true,
	"cancel":    true,
	"exchange":  true,
	"points":    true,
	"loyalty":   true,
	"discount":  true,
	"tracking":  true,
	"invoice":   true,
	"part":      true,
	"parts":     true,
	"fit":       true,
	"fitment":   true,
	"installer": true,
}

// ExtractKeywords turns a customer question into search terms: lowercase,
// punctuation stripped, stop words removed except the important-keyword
// allowlist, words under 3 characters dropped. If filtering leaves nothing,
// it falls back to the first words of 3+ characters so a non-empty question
// never yields an empty term list. Deduplicated, capped at 6.
func ExtractKeywords(question string) []string {
	normalized := nonAlphanumeric.ReplaceAllString(strings.ToLower(question), " ")
	words := strings.Fields(normalized)

	var keywords []string
	seen := make(map[string]bool)

	keep := func(word string) {
		if !seen[word] && len(keywords) < maxKeywords {
			seen[word] = true
			keywords = append(keywords, word)
		}
	}

	for _, word := range words {
		if importantKeywords[word] {
			keep(word)
			continue
		}
		if len(word) >= 3 && !stopWords[word] {
			keep(word)
		}
	}

	// Last resort: take up to 3 words of 3+ characters ignoring the stop
	// word filter entirely.
	if len(keywords) == 0 {
		for _, word := range words {
			if len(word) >= 3 {
				keep(word)
				if len(keywords) == 3 {
					break
				}
			}
		}
	}

	return keywords
}
