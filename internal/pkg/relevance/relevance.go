// Package relevance classifies ingestion candidates. A document is relevant
// only when it is anchored to the monitored region AND mentions at least one
// topic keyword; either signal alone is not enough.
package relevance

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// ScoreFunc rates how well keyword matches somewhere inside text on a
// 0..100 scale. It is only consulted after an exact substring check fails.
type ScoreFunc func(keyword, text string) int

// Classifier evaluates title+body text against a location term list and a
// per-source keyword list.
type Classifier struct {
	locationTerms  []string
	fuzzyEnabled   bool
	fuzzyThreshold int
	maxTags        int
	score          ScoreFunc
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithScoreFunc swaps the fuzzy scorer. Tests use this to observe which
// keywords reach the fuzzy stage.
func WithScoreFunc(fn ScoreFunc) Option {
	return func(c *Classifier) { c.score = fn }
}

// WithFuzzy toggles the fuzzy fallback and sets its acceptance threshold.
func WithFuzzy(enabled bool, threshold int) Option {
	return func(c *Classifier) {
		c.fuzzyEnabled = enabled
		c.fuzzyThreshold = threshold
	}
}

// WithMaxTags caps the number of tags attached to a relevant document.
// Zero or negative means unlimited.
func WithMaxTags(n int) Option {
	return func(c *Classifier) { c.maxTags = n }
}

// New builds a Classifier over the given location anchor terms.
func New(locationTerms []string, opts ...Option) *Classifier {
	c := &Classifier{
		locationTerms:  lowerAll(locationTerms),
		fuzzyEnabled:   true,
		fuzzyThreshold: 90,
		maxTags:        10,
		score:          fuzzy.PartialRatio,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify reports whether the document text is relevant and, if so, which
// keywords matched. Tags preserve the order of the keyword list, not match
// quality, and are capped at the configured maximum. A geo miss returns
// (false, nil) without evaluating any keyword.
func (c *Classifier) Classify(title, body string, keywords []string) (bool, []string) {
	text := strings.ToLower(title + " " + body)

	if !c.mentionsLocation(text) {
		return false, nil
	}

	var tags []string
	for _, kw := range keywords {
		if c.maxTags > 0 && len(tags) >= c.maxTags {
			break
		}
		if c.matches(strings.ToLower(kw), text) {
			tags = append(tags, kw)
		}
	}
	if len(tags) == 0 {
		return false, nil
	}
	return true, tags
}

// MentionsLocation reports whether the text is anchored to the region.
// Location matching is always exact; the fuzzy fallback applies to topic
// keywords only.
func (c *Classifier) MentionsLocation(title, body string) bool {
	return c.mentionsLocation(strings.ToLower(title + " " + body))
}

func (c *Classifier) mentionsLocation(lowered string) bool {
	for _, term := range c.locationTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func (c *Classifier) matches(keyword, text string) bool {
	if strings.Contains(text, keyword) {
		return true
	}
	if !c.fuzzyEnabled {
		return false
	}
	return c.score(keyword, text) >= c.fuzzyThreshold
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	return out
}
