package main

import (
	"fmt"
	"os"

	"github.com/benvon/talk-to-my-ai/cmd/assistantctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:           "assistantctl",
		Short:         "Developer tool for the talk-to-my-ai assistant",
		Long:          "Run the language understanding and time resolution locally, mint bearer tokens and inspect reminders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCmd())
	rootCmd.AddCommand(commands.NewResolveCmd())
	rootCmd.AddCommand(commands.NewTokenCmd())
	rootCmd.AddCommand(commands.NewVocabCmd())
	rootCmd.AddCommand(commands.NewRemindersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
