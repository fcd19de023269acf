package agent

import (
	"sort"
	"strings"
	"unicode"

	"github.com/partspoint/backend/internal/models"
)

const (
	maxSources       = 5
	relevanceWeight  = 0.6
	confidenceWeight = 0.4
	excerptLength    = 200
)

// relevanceScore measures how well an entry matches the question: the share
// of question words longer than 3 characters that appear somewhere in the
// entry's title or content, clamped to [0,1]. Deliberately a crude
// containment check, not semantic similarity; downstream ranking is
// calibrated to exactly this formula.
func relevanceScore(question string, entry models.KnowledgeEntry) float64 {
	words := strings.Fields(question)
	if len(words) == 0 {
		return 0
	}

	haystack := strings.ToLower(entry.Title + " " + entry.Content)

	matched := 0
	for _, word := range words {
		word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}))
		if len(word) > 3 && strings.Contains(haystack, word) {
			matched++
		}
	}

	score := float64(matched) / float64(len(words))
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// rankSources scores every candidate against the question, orders by the
// blended score 0.6*relevance + 0.4*storedConfidence, and keeps the top 5.
func rankSources(question string, entries []models.KnowledgeEntry) []KnowledgeSource {
	sources := make([]KnowledgeSource, 0, len(entries))
	for _, entry := range entries {
		sources = append(sources, KnowledgeSource{
			ID:         entry.ID,
			Title:      entry.Title,
			Excerpt:    excerpt(entry.Content),
			Category:   entry.Category,
			Confidence: entry.ConfidenceScore,
			Relevance:  relevanceScore(question, entry),
		})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		si := relevanceWeight*sources[i].Relevance + confidenceWeight*sources[i].Confidence
		sj := relevanceWeight*sources[j].Relevance + confidenceWeight*sources[j].Confidence
		return si > sj
	})

	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	return sources
}

// overallConfidence blends the average stored confidence and the average
// relevance across the returned sources.
func overallConfidence(sources []KnowledgeSource) float64 {
	if len(sources) == 0 {
		return 0
	}

	var confidenceSum, relevanceSum float64
	for _, src := range sources {
		confidenceSum += src.Confidence
		relevanceSum += src.Relevance
	}

	avgConfidence := confidenceSum / float64(len(sources))
	avgRelevance := relevanceSum / float64(len(sources))
	return (avgConfidence + avgRelevance) / 2
}

func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}
	return string(runes[:excerptLength]) + "..."
}
