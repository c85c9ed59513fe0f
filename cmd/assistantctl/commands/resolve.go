package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/temporal"
	"github.com/spf13/cobra"
)

// NewResolveCmd creates the resolve command
func NewResolveCmd() *cobra.Command {
	var nowFlag string

	cmd := &cobra.Command{
		Use:   "resolve <phrase>",
		Short: "Resolve a time phrase to an instant",
		Long:  "Resolve a natural language time phrase against the current time, or --now, and print the instant and the rule that matched.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if nowFlag != "" {
				parsed, err := time.Parse(time.RFC3339, nowFlag)
				if err != nil {
					return fmt.Errorf("--now must be RFC3339: %w", err)
				}
				now = parsed
			}
			res := temporal.Default().Resolve(strings.Join(args, " "), now)
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&nowFlag, "now", "", "Reference instant in RFC3339 (default: current time)")
	return cmd
}
