package nlu

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Intent labels produced by the default vocabulary
const (
	LabelGreeting  = "greeting"
	LabelQA        = "qa"
	LabelReminder  = "reminder"
	LabelOpenApp   = "open_app"
	LabelSummarize = "summarize"
	LabelCodeHelp  = "code_help"
	// LabelUnknown is returned when no keyword of any intent is present
	LabelUnknown = "unknown"
)

// Entity categories
const (
	EntityTime  = "time"
	EntityApp   = "app"
	EntityTopic = "topic"
	EntityDate  = "date"
)

// IntentKeywords is one row of the intent table. Keywords are matched verbatim as substrings
// of the lowercased text, so they may contain spaces or punctuation.
type IntentKeywords struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Vocabulary is the pattern library the classifier and extractor are built from.
// Intents and TimePatterns are ordered: the order decides tie-breaks and first-match-wins.
type Vocabulary struct {
	Intents      []IntentKeywords `yaml:"intents"`
	TimePatterns []string         `yaml:"time_patterns"`
	Apps         []string         `yaml:"apps"`
	Topics       []string         `yaml:"topics"`
	DatePattern  string           `yaml:"date_pattern"`
}

// DefaultVocabulary returns the built-in pattern library. Each call returns a fresh copy.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Intents: []IntentKeywords{
			{Label: LabelGreeting, Keywords: []string{"hello", "hi", "hey", "good morning", "good evening"}},
			{Label: LabelQA, Keywords: []string{"what is", "explain", "how do", "why"}},
			{Label: LabelReminder, Keywords: []string{"remind", "follow up", "schedule", "ping", "set a reminder"}},
			{Label: LabelOpenApp, Keywords: []string{"open", "launch", "go to", "pull up", "show"}},
			{Label: LabelSummarize, Keywords: []string{"summarize", "tl;dr", "recap"}},
			{Label: LabelCodeHelp, Keywords: []string{"code", "bug", "error", "stack", "pull request", "deploy", "race condition"}},
		},
		TimePatterns: []string{
			`\b(?:today|tomorrow|next week|next month|next monday|next tuesday|next wednesday|next thursday|next friday|next saturday|next sunday)\b`,
			`\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`,
			`\b(?:\d{1,2}:\d{2}\s?(?:am|pm)?|\d{1,2}\s?(?:am|pm))\b`,
			`\b(?:in \d+ (?:minute|hour|day|week)s?)\b`,
		},
		Apps:        []string{"linkedin", "calendly", "gmail", "slack", "notion", "jira"},
		Topics:      []string{"race condition", "resume", "interview", "offer", "salary", "voice assistant"},
		DatePattern: `\b\d{4}-\d{2}-\d{2}\b`,
	}
}

// LoadVocabulary reads a YAML vocabulary file. Sections missing from the file keep their
// default values.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes a YAML vocabulary document on top of the defaults.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var doc Vocabulary
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}

	vocab := DefaultVocabulary()
	if len(doc.Intents) > 0 {
		vocab.Intents = doc.Intents
	}
	if len(doc.TimePatterns) > 0 {
		vocab.TimePatterns = doc.TimePatterns
	}
	if len(doc.Apps) > 0 {
		vocab.Apps = doc.Apps
	}
	if len(doc.Topics) > 0 {
		vocab.Topics = doc.Topics
	}
	if doc.DatePattern != "" {
		vocab.DatePattern = doc.DatePattern
	}

	if err := vocab.Validate(); err != nil {
		return nil, err
	}
	return vocab, nil
}

// Validate checks that labels are unique and non-reserved and that every pattern compiles.
func (v *Vocabulary) Validate() error {
	seen := make(map[string]struct{}, len(v.Intents))
	for _, row := range v.Intents {
		if row.Label == "" {
			return fmt.Errorf("intent label cannot be empty")
		}
		if row.Label == LabelUnknown {
			return fmt.Errorf("intent label %q is reserved", LabelUnknown)
		}
		if _, dup := seen[row.Label]; dup {
			return fmt.Errorf("duplicate intent label %q", row.Label)
		}
		seen[row.Label] = struct{}{}
	}
	for i, p := range v.TimePatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid time pattern %d: %w", i, err)
		}
	}
	if _, err := regexp.Compile(v.DatePattern); err != nil {
		return fmt.Errorf("invalid date pattern: %w", err)
	}
	return nil
}

// Marshal renders the vocabulary as YAML.
func (v *Vocabulary) Marshal() ([]byte, error) {
	return yaml.Marshal(v)
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
