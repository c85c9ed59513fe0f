package nlu

import (
	"fmt"
	"strings"
)

const (
	// UnknownConfidence is reported when no intent keyword matched
	UnknownConfidence = 0.2
	// baseConfidence is the floor for any matched intent
	baseConfidence = 0.4
	// maxConfidence caps the confidence of a matched intent
	maxConfidence = 0.9
)

// Classification is the raw classifier output
type Classification struct {
	Label      string
	Confidence float64
	Trace      []string
}

// Classifier scores text against an ordered intent keyword table
type Classifier struct {
	intents []IntentKeywords
}

// NewClassifier creates a classifier over a copy of the given intent table
func NewClassifier(intents []IntentKeywords) *Classifier {
	table := make([]IntentKeywords, len(intents))
	for i, row := range intents {
		table[i] = IntentKeywords{Label: row.Label, Keywords: cloneStrings(row.Keywords)}
	}
	return &Classifier{intents: table}
}

// Classify counts keyword hits per label. The label with the strictly highest count wins;
// ties go to the label declared first.
func (c *Classifier) Classify(text string) Classification {
	lowered := strings.ToLower(text)

	var (
		trace     []string
		winner    string
		winnerHit int
		total     int
	)
	for _, row := range c.intents {
		hits := 0
		for _, kw := range row.Keywords {
			if kw != "" && strings.Contains(lowered, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		trace = append(trace, fmt.Sprintf("intent_hit:%s:%d", row.Label, hits))
		total += hits
		if hits > winnerHit {
			winner = row.Label
			winnerHit = hits
		}
	}

	if total == 0 {
		return Classification{Label: LabelUnknown, Confidence: UnknownConfidence, Trace: []string{}}
	}

	confidence := baseConfidence + float64(winnerHit)/float64(total)
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	return Classification{Label: winner, Confidence: confidence, Trace: trace}
}

// Labels returns the intent labels in declaration order
func (c *Classifier) Labels() []string {
	labels := make([]string, 0, len(c.intents))
	for _, row := range c.intents {
		labels = append(labels, row.Label)
	}
	return labels
}
