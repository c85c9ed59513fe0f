package nlu

import (
	"fmt"
	"regexp"
	"strings"
)

// Entities maps an entity category to the single value extracted for it
type Entities map[string]string

// set stores value only if the category is still empty
func (e Entities) set(category, value string) {
	if _, exists := e[category]; !exists {
		e[category] = value
	}
}

// Extractor pulls time, app, topic and date entities out of free text
type Extractor struct {
	timePatterns []*regexp.Regexp
	apps         []string
	topics       []string
	datePattern  *regexp.Regexp
}

// NewExtractor compiles the vocabulary's patterns
func NewExtractor(vocab *Vocabulary) (*Extractor, error) {
	patterns := make([]*regexp.Regexp, 0, len(vocab.TimePatterns))
	for i, p := range vocab.TimePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile time pattern %d: %w", i, err)
		}
		patterns = append(patterns, re)
	}

	datePattern, err := regexp.Compile(vocab.DatePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile date pattern: %w", err)
	}

	return &Extractor{
		timePatterns: patterns,
		apps:         cloneStrings(vocab.Apps),
		topics:       cloneStrings(vocab.Topics),
		datePattern:  datePattern,
	}, nil
}

// Extract runs the four category passes. Each pass stops at its first match.
func (e *Extractor) Extract(text string) Entities {
	entities := Entities{}
	lowered := strings.ToLower(text)

	for _, re := range e.timePatterns {
		if m := re.FindString(lowered); m != "" {
			entities.set(EntityTime, m)
			break
		}
	}

	if app, ok := firstContained(lowered, e.apps); ok {
		entities.set(EntityApp, app)
	}

	if topic, ok := firstContained(lowered, e.topics); ok {
		entities.set(EntityTopic, topic)
	}

	// dates are matched on the original casing
	if m := e.datePattern.FindString(text); m != "" {
		entities.set(EntityDate, m)
	}

	return entities
}

// TimePhrases returns every substring of text matched by any time pattern, in pattern order.
// Used to strip time expressions when deriving reminder titles.
func (e *Extractor) TimePhrases(text string) []string {
	lowered := strings.ToLower(text)
	var phrases []string
	for _, re := range e.timePatterns {
		phrases = append(phrases, re.FindAllString(lowered, -1)...)
	}
	return phrases
}

func firstContained(lowered string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if c != "" && strings.Contains(lowered, c) {
			return c, true
		}
	}
	return "", false
}
