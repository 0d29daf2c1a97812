// File: internal/services/safety/classifier.go
package safety

import "strings"

// DefaultCrisisKeywords is the built-in crisis phrase set. Deployments can
// override it through configuration so the set can be extended and audited
// without a code change.
var DefaultCrisisKeywords = []string{
	"suicide",
	"kill myself",
	"end it all",
	"want to die",
	"end my life",
	"hurt myself",
	"i want to end this",
}

// Classifier scans message text for crisis phrases. It is pure and
// deterministic: no I/O, no side effects. It must run before any external
// model call so that crisis detection cannot be bypassed by generator
// failure or latency.
type Classifier struct {
	keywords []string
}

// NewClassifier builds a classifier over the given phrase set; an empty
// set falls back to DefaultCrisisKeywords. Phrases are normalized to
// lower case once, at construction.
func NewClassifier(keywords []string) *Classifier {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			normalized = append(normalized, kw)
		}
	}
	// A blank override must not disable detection.
	if len(normalized) == 0 {
		return NewClassifier(DefaultCrisisKeywords)
	}
	return &Classifier{keywords: normalized}
}

// Classify reports whether the text contains any crisis phrase.
// Matching is case-insensitive and substring-based: a phrase anywhere in
// the text triggers the signal, with no word-boundary requirement. The
// permissive matching raises the false-positive rate and that trade-off
// is intentional for this domain.
func (c *Classifier) Classify(text string) bool {
	normalized := strings.ToLower(text)
	for _, kw := range c.keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// Keywords returns a copy of the active phrase set, for audit endpoints
// and logging.
func (c *Classifier) Keywords() []string {
	out := make([]string, len(c.keywords))
	copy(out, c.keywords)
	return out
}

// ParseKeywordList splits a comma-separated configuration value into a
// phrase set, dropping empty entries.
func ParseKeywordList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}
