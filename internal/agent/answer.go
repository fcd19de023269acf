package agent

import (
	"fmt"
	"strings"

	"github.com/partspoint/backend/internal/ai"
)

const (
	lowConfidenceThreshold = 0.7
	reviewThreshold        = 0.6

	noInformationAnswer = "I couldn't find specific information about your question in our knowledge base. " +
		"Please contact our support team and they'll be happy to help."

	technicalDifficultiesAnswer = "We're sorry, we're experiencing technical difficulties right now. " +
		"Please try again in a moment or contact our support team directly."

	contactSupportSentence = "If you need more detailed assistance, please don't hesitate to contact our support team."
)

var noResultSuggestions = []string{
	"Try asking about our general policies",
	"Check our FAQ section",
	"Contact our support team",
}

var genericFollowUps = []string{
	"Is there anything else I can help you with?",
	"Would you like to speak with a support agent?",
	"Do you need help with a specific order?",
}

var shippingFollowUps = []string{
	"What are the shipping costs?",
	"How long does delivery take?",
}

var returnFollowUps = []string{
	"How do I start a return?",
	"When will I receive my refund?",
}

// buildSourceContext concatenates "{title}: {excerpt}" per source for the
// generation request.
func buildSourceContext(sources []KnowledgeSource) string {
	lines := make([]string, 0, len(sources))
	for _, src := range sources {
		lines = append(lines, fmt.Sprintf("%s: %s", src.Title, src.Excerpt))
	}
	return strings.Join(lines, "\n")
}

func toSourceDocuments(sources []KnowledgeSource) []ai.SourceDocument {
	docs := make([]ai.SourceDocument, 0, len(sources))
	for _, src := range sources {
		docs = append(docs, ai.SourceDocument{
			Title:      src.Title,
			Category:   src.Category,
			Excerpt:    src.Excerpt,
			Confidence: src.Confidence,
		})
	}
	return docs
}

// templateAnswer composes the structured fallback used when generation is
// unavailable: the top source's excerpt under a category header, up to two
// more excerpts as a numbered list, and a contact-support sentence when any
// source carries low stored confidence.
func templateAnswer(sources []KnowledgeSource) string {
	if len(sources) == 0 {
		return noInformationAnswer
	}

	top := sources[0]

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Based on our %s information:\n\n", strings.ToLower(top.Category)))
	b.WriteString(top.Excerpt)

	if len(sources) > 1 {
		b.WriteString("\n\nAdditional relevant information:\n")
		for i, src := range sources[1:] {
			if i == 2 {
				break
			}
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, src.Excerpt))
		}
	}

	for _, src := range sources {
		if src.Confidence < lowConfidenceThreshold {
			b.WriteString("\n\n")
			b.WriteString(contactSupportSentence)
			break
		}
	}

	return b.String()
}

// buildSuggestions returns one "learn more" suggestion per distinct source
// category, or the fixed fallback list when there are no sources.
func buildSuggestions(sources []KnowledgeSource) []string {
	if len(sources) == 0 {
		return append([]string(nil), noResultSuggestions...)
	}

	var suggestions []string
	seen := make(map[string]bool)
	for _, src := range sources {
		if src.Category == "" || seen[src.Category] {
			continue
		}
		seen[src.Category] = true
		suggestions = append(suggestions, fmt.Sprintf("Learn more about %s", src.Category))
	}
	return suggestions
}

// buildFollowUps assembles up to 3 follow-up questions, most specific first:
// shipping questions when a source category mentions shipping, return
// questions when one mentions returns, then the generic pool.
func buildFollowUps(sources []KnowledgeSource) []string {
	var followUps []string

	if anyCategoryContains(sources, "shipping") {
		followUps = append(followUps, shippingFollowUps...)
	}
	if anyCategoryContains(sources, "return") {
		followUps = append(followUps, returnFollowUps...)
	}
	followUps = append(followUps, genericFollowUps...)

	if len(followUps) > 3 {
		followUps = followUps[:3]
	}
	return followUps
}

func anyCategoryContains(sources []KnowledgeSource, substr string) bool {
	for _, src := range sources {
		if strings.Contains(strings.ToLower(src.Category), substr) {
			return true
		}
	}
	return false
}
