package nlu

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	a, err := NewAnalyzer(nil)
	require.NoError(t, err)

	got := a.Analyze("Remind me to follow up on the interview tomorrow at 3pm")
	assert.Equal(t, Intent{Label: LabelReminder, Confidence: 0.9}, got.Intent)
	assert.Equal(t, Entities{EntityTime: "tomorrow", EntityTopic: "interview"}, got.Entities)
	assert.Equal(t, []string{"intent_hit:reminder:2"}, got.Trace)
}

func TestAnalyzer_RoundsConfidence(t *testing.T) {
	t.Parallel()

	a := MustNewAnalyzer(nil)
	got := a.Analyze("hey, why open it")
	assert.Equal(t, 0.733, got.Intent.Confidence)
	assert.Len(t, got.Trace, 3)
}

func TestAnalyzer_Unknown(t *testing.T) {
	t.Parallel()

	got := MustNewAnalyzer(nil).Analyze("asdf")
	assert.Equal(t, LabelUnknown, got.Intent.Label)
	assert.Equal(t, 0.2, got.Intent.Confidence)
	assert.Empty(t, got.Entities)
	assert.NotNil(t, got.Trace)
}

func TestNewAnalyzer_RejectsInvalidVocabulary(t *testing.T) {
	t.Parallel()

	vocab := DefaultVocabulary()
	vocab.Intents = append(vocab.Intents, IntentKeywords{Label: LabelUnknown, Keywords: []string{"x"}})
	_, err := NewAnalyzer(vocab)
	assert.Error(t, err)
	assert.Panics(t, func() { MustNewAnalyzer(vocab) })
}

func TestAnalyzer_ConcurrentUse(t *testing.T) {
	t.Parallel()

	a := MustNewAnalyzer(nil)
	want := a.Analyze("open slack tomorrow")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, a.Analyze("open slack tomorrow"))
		}()
	}
	wg.Wait()
}

func TestReminderTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		phrases []string
		want    string
	}{
		{
			name:    "strips filler time and dangling preposition",
			text:    "remind me to call John at 3pm tomorrow",
			phrases: []string{"tomorrow", "3pm"},
			want:    "call John",
		},
		{
			name:    "case insensitive removal",
			text:    "Remind me to water the plants Tomorrow.",
			phrases: []string{"tomorrow"},
			want:    "water the plants",
		},
		{
			name:    "weekday with on",
			text:    "remind me to send the invoice on friday",
			phrases: []string{"friday"},
			want:    "send the invoice",
		},
		{
			name:    "nothing left falls back to text",
			text:    "  Remind me  ",
			phrases: nil,
			want:    "Remind me",
		},
		{
			name:    "no filler",
			text:    "dentist in 2 days",
			phrases: []string{"in 2 days"},
			want:    "dentist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ReminderTitle(tt.text, tt.phrases))
		})
	}
}

func TestReminderTitle_FillerSplitByTimePhrase(t *testing.T) {
	t.Parallel()

	got := ReminderTitle("remind me in 2 hours to stretch", []string{"in 2 hours"})
	assert.Equal(t, "stretch", got)
}
