package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords_FiltersStopWords(t *testing.T) {
	keywords := ExtractKeywords("How do I install new brake pads?")

	assert.Contains(t, keywords, "install")
	assert.Contains(t, keywords, "brake")
	assert.Contains(t, keywords, "pads")
	assert.NotContains(t, keywords, "how")
	assert.NotContains(t, keywords, "do")
}

func TestExtractKeywords_KeepsImportantKeywords(t *testing.T) {
	// "fit" is short and "order" appears in casual phrasing, but both are
	// business terms that must survive filtering
	keywords := ExtractKeywords("Will this fit my car and can I change the address on my order?")

	assert.Contains(t, keywords, "fit")
	assert.Contains(t, keywords, "address")
	assert.Contains(t, keywords, "order")
}

func TestExtractKeywords_NeverEmptyForAlphabeticInput(t *testing.T) {
	questions := []string{
		"what is this",
		"can you help",
		"the and for with",
		"asdkjasdkj",
		"Do you have it?",
	}

	for _, q := range questions {
		keywords := ExtractKeywords(q)
		assert.NotEmpty(t, keywords, "question %q should yield keywords", q)
	}
}

func TestExtractKeywords_FallbackIgnoresStopWordFilter(t *testing.T) {
	// Every word is a stop word, so the fallback takes words of 3+ chars
	keywords := ExtractKeywords("what when where")

	assert.NotEmpty(t, keywords)
	assert.LessOrEqual(t, len(keywords), 3)
	assert.Contains(t, keywords, "what")
}

func TestExtractKeywords_DeduplicatesAndCaps(t *testing.T) {
	keywords := ExtractKeywords("brake brake brake rotor caliper piston bearing gasket spark filter")

	assert.LessOrEqual(t, len(keywords), 6)

	seen := make(map[string]bool)
	for _, kw := range keywords {
		assert.False(t, seen[kw], "keyword %q duplicated", kw)
		seen[kw] = true
	}
}

func TestExtractKeywords_StripsPunctuationAndCase(t *testing.T) {
	keywords := ExtractKeywords("REFUND!!! (please)")

	assert.Contains(t, keywords, "refund")
}

func TestExtractKeywords_KeepsNonASCIIWords(t *testing.T) {
	keywords := ExtractKeywords("¿Dónde está mi pedido?")
	assert.NotEmpty(t, keywords)
	assert.Contains(t, keywords, "pedido")
	assert.Contains(t, keywords, "dónde")

	// Unspaced scripts still produce at least one searchable term
	assert.NotEmpty(t, ExtractKeywords("如何退货"))
}

func TestExtractKeywords_EmptyQuestion(t *testing.T) {
	assert.Empty(t, ExtractKeywords(""))
	assert.Empty(t, ExtractKeywords("   "))
	assert.Empty(t, ExtractKeywords("?!"))
}
