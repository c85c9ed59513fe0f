package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/config"
	"github.com/benvon/talk-to-my-ai/internal/database"
	"github.com/benvon/talk-to-my-ai/internal/logger"
	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRemindersCmd creates the reminders command with list and due subcommands
func NewRemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Inspect stored reminders",
		Long:  "List a user's reminders or the ones currently due, reading DATABASE_URL.",
	}
	cmd.AddCommand(newRemindersListCmd())
	cmd.AddCommand(newRemindersDueCmd())
	return cmd
}

func newRemindersListCmd() *cobra.Command {
	var userID string
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReminderRepo(func(ctx context.Context, repo *database.ReminderRepository) error {
				reminders, err := repo.ListByUser(ctx, userID, all)
				if err != nil {
					return fmt.Errorf("list reminders: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), nonNil(reminders))
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", models.AnonymousUserID, "User ID")
	cmd.Flags().BoolVar(&all, "all", false, "Include completed reminders")
	return cmd
}

func newRemindersDueCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List reminders that are due now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReminderRepo(func(ctx context.Context, repo *database.ReminderRepository) error {
				reminders, err := repo.ListDue(ctx, userID, time.Now())
				if err != nil {
					return fmt.Errorf("list due reminders: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), nonNil(reminders))
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", models.AnonymousUserID, "User ID")
	return cmd
}

func withReminderRepo(fn func(ctx context.Context, repo *database.ReminderRepository) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.NewDevelopmentLogger(cfg.WorkerDebugMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Debug("database_connected")
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("database_close_failed", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return fn(ctx, database.NewReminderRepository(db))
}

func nonNil(reminders []*models.Reminder) []*models.Reminder {
	if reminders == nil {
		return []*models.Reminder{}
	}
	return reminders
}
