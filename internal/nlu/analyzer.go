// Package nlu implements the rule-based language understanding core: keyword intent
// classification and first-match-wins entity extraction over an injected vocabulary.
//
// Every type in this package is immutable after construction and safe for concurrent use.
package nlu

import (
	"math"
	"regexp"
	"strings"
)

// Intent is a classified intent with its confidence
type Intent struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Result is the combined output of one Analyze call
type Result struct {
	Intent   Intent   `json:"intent"`
	Entities Entities `json:"entities"`
	Trace    []string `json:"trace"`
}

// Analyzer composes the classifier and the extractor
type Analyzer struct {
	classifier *Classifier
	extractor  *Extractor
}

// NewAnalyzer builds an analyzer from a vocabulary. A nil vocabulary selects the defaults.
func NewAnalyzer(vocab *Vocabulary) (*Analyzer, error) {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if err := vocab.Validate(); err != nil {
		return nil, err
	}
	extractor, err := NewExtractor(vocab)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		classifier: NewClassifier(vocab.Intents),
		extractor:  extractor,
	}, nil
}

// MustNewAnalyzer is NewAnalyzer that panics on an invalid vocabulary
func MustNewAnalyzer(vocab *Vocabulary) *Analyzer {
	a, err := NewAnalyzer(vocab)
	if err != nil {
		panic(err)
	}
	return a
}

// Analyze classifies and extracts entities from text. The trace holds classifier hits only.
func (a *Analyzer) Analyze(text string) Result {
	c := a.classifier.Classify(text)
	return Result{
		Intent:   Intent{Label: c.Label, Confidence: roundTo(c.Confidence, 3)},
		Entities: a.extractor.Extract(text),
		Trace:    c.Trace,
	}
}

// Classifier exposes the underlying classifier
func (a *Analyzer) Classifier() *Classifier {
	return a.classifier
}

// Extractor exposes the underlying extractor
func (a *Analyzer) Extractor() *Extractor {
	return a.extractor
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

var (
	fillerPhrases = []string{"remind me to", "remind me"}
	spaceRun      = regexp.MustCompile(`\s+`)

	// left behind once "at 3pm" or "on monday" loses its time phrase
	danglingPreposition = regexp.MustCompile(`(?i)(?:\s+(?:at|on|by|in))+$`)
)

// ReminderTitle derives a short title for a reminder: it removes the given time phrases and
// the "remind me (to)" filler from text, case-insensitively, and collapses whitespace.
// If nothing is left the trimmed original text is returned.
func ReminderTitle(text string, timePhrases []string) string {
	title := text
	for _, phrase := range timePhrases {
		title = removeFold(title, phrase)
	}
	title = spaceRun.ReplaceAllString(title, " ")
	for _, filler := range fillerPhrases {
		title = removeFold(title, filler)
	}
	title = strings.TrimSpace(spaceRun.ReplaceAllString(title, " "))
	title = strings.Trim(title, " ,.;:")
	title = danglingPreposition.ReplaceAllString(title, "")
	if title == "" {
		return strings.TrimSpace(text)
	}
	return title
}

// removeFold deletes every case-insensitive occurrence of phrase from s
func removeFold(s, phrase string) string {
	if phrase == "" {
		return s
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))
	return re.ReplaceAllString(s, " ")
}
