// Package intent decides whether a completed user utterance should trigger a
// product search. The classifier is a pure predicate over the transcript text;
// swapping in something smarter only needs to keep the boolean contract.
package intent

import "strings"

type Classifier struct {
	keywords []string
}

// NewClassifier builds a classifier over the given vocabulary. Keywords are
// matched case-insensitively as substrings; multi-word phrases are allowed.
func NewClassifier(vocabulary []string) *Classifier {
	keywords := make([]string, 0, len(vocabulary))
	for _, kw := range vocabulary {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return &Classifier{keywords: keywords}
}

// ShouldSearch reports whether the utterance looks like a product query.
// Deterministic, no I/O, no state.
func (c *Classifier) ShouldSearch(utterance string) bool {
	if utterance == "" {
		return false
	}
	lower := strings.ToLower(utterance)
	for _, kw := range c.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
