package commands

import (
	"strings"

	"github.com/benvon/talk-to-my-ai/internal/nlu"
	"github.com/spf13/cobra"
)

// NewVocabCmd creates the vocab command
func NewVocabCmd() *cobra.Command {
	var check string

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Print or check a vocabulary",
		Long:  "Print the built-in vocabulary as YAML, a starting point for VOCABULARY_FILE. With --check, validate a vocabulary file instead.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check != "" {
				vocab, err := loadVocabulary(check)
				if err != nil {
					return err
				}
				analyzer, err := nlu.NewAnalyzer(vocab)
				if err != nil {
					return err
				}
				cmd.Printf("%s: ok (intents: %s)\n", check, strings.Join(analyzer.Classifier().Labels(), ", "))
				return nil
			}

			out, err := nlu.DefaultVocabulary().Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&check, "check", "", "Validate this vocabulary file")
	return cmd
}
