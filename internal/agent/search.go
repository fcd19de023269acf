package agent

import (
	"strings"

	"github.com/partspoint/backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	phraseSearchLimit     = 3
	keywordSearchLimit    = 5
	unapprovedSearchLimit = 8
	topEntriesLimit       = 3
)

// searchKnowledge runs the search cascade: exact phrase against approved
// entries, then per-keyword against approved entries (appending new rows to
// whatever the phrase search found), then per-keyword without the approval
// filter, and finally the top entries by stored confidence with no keyword
// filter at all. A failed stage is logged and treated as empty; the cascade
// never returns an error.
func (e *Engine) searchKnowledge(keywords []string) []models.KnowledgeEntry {
	var results []models.KnowledgeEntry

	if len(keywords) >= 2 {
		phrase := strings.Join(keywords, " ")
		entries, err := e.knowledge.SearchPhrase(phrase, true, phraseSearchLimit)
		if err != nil {
			e.logger.WithError(err).WithField("phrase", phrase).Warn("Phrase search failed")
		} else {
			results = entries
		}
	}

	entries, err := e.knowledge.SearchAnyKeyword(keywords, true, keywordSearchLimit)
	if err != nil {
		e.logger.WithError(err).Warn("Keyword search failed")
	} else {
		results = appendNewEntries(results, entries)
	}

	if len(results) == 0 {
		entries, err := e.knowledge.SearchAnyKeyword(keywords, false, unapprovedSearchLimit)
		if err != nil {
			e.logger.WithError(err).Warn("Unapproved keyword search failed")
		} else {
			results = entries
		}
	}

	if len(results) == 0 {
		entries, err := e.knowledge.TopByConfidence(topEntriesLimit)
		if err != nil {
			e.logger.WithError(err).Warn("Top-by-confidence fallback failed")
		} else {
			results = entries
		}
	}

	e.logger.WithFields(logrus.Fields{
		"keywords": keywords,
		"results":  len(results),
	}).Debug("Knowledge search completed")

	return results
}

// appendNewEntries appends entries not already present by ID.
func appendNewEntries(existing, candidates []models.KnowledgeEntry) []models.KnowledgeEntry {
	seen := make(map[string]bool, len(existing))
	for _, entry := range existing {
		seen[entry.ID] = true
	}
	for _, entry := range candidates {
		if !seen[entry.ID] {
			seen[entry.ID] = true
			existing = append(existing, entry)
		}
	}
	return existing
}
