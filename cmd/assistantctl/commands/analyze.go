package commands

import (
	"fmt"
	"strings"

	"github.com/benvon/talk-to-my-ai/internal/nlu"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	var vocabFile string
	var title bool

	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Classify intent and extract entities",
		Long:  "Run the intent classifier and entity extractor over text and print the result as JSON.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("text is required")
			}
			vocab, err := loadVocabulary(vocabFile)
			if err != nil {
				return err
			}
			analyzer, err := nlu.NewAnalyzer(vocab)
			if err != nil {
				return err
			}

			result := analyzer.Analyze(text)
			if !title {
				return printJSON(cmd.OutOrStdout(), result)
			}
			var phrases []string
			if phrase, ok := result.Entities[nlu.EntityTime]; ok {
				phrases = append(phrases, phrase)
			}
			return printJSON(cmd.OutOrStdout(), struct {
				nlu.Result
				Title string `json:"title"`
			}{Result: result, Title: nlu.ReminderTitle(text, phrases)})
		},
	}

	cmd.Flags().StringVar(&vocabFile, "vocab", "", "YAML vocabulary file (default: built-in)")
	cmd.Flags().BoolVar(&title, "title", false, "Also print the reminder title derived from the text")
	return cmd
}
