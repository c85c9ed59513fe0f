package database

import (
	"context"
	"testing"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *ReminderRepository {
	t.Helper()
	db, err := New("sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewReminderRepository(db)
}

var base = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func createReminder(t *testing.T, repo *ReminderRepository, userID, title string, at time.Time) *models.Reminder {
	t.Helper()
	r := &models.Reminder{UserID: userID, Title: title, RemindAt: at}
	require.NoError(t, repo.Create(context.Background(), r))
	return r
}

func TestReminderRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	r := &models.Reminder{UserID: "u1", Title: "call John", Description: "remind me to call John", RemindAt: base}
	require.NoError(t, repo.Create(ctx, r))
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, r.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "call John", got.Title)
	assert.Equal(t, "remind me to call John", got.Description)
	assert.True(t, base.Equal(got.RemindAt))
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)

	_, err = repo.GetByID(ctx, r.ID, "someone-else")
	assert.ErrorIs(t, err, ErrReminderNotFound)
}

func TestReminderRepository_ListByUserOrdering(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	late := createReminder(t, repo, "u1", "late", base.Add(2*time.Hour))
	early := createReminder(t, repo, "u1", "early", base.Add(time.Hour))
	createReminder(t, repo, "u2", "other user", base)

	done := createReminder(t, repo, "u1", "done", base.Add(-time.Hour))
	ok, err := repo.Complete(ctx, done.ID, "u1", base)
	require.NoError(t, err)
	require.True(t, ok)

	open, err := repo.ListByUser(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, early.ID, open[0].ID)
	assert.Equal(t, late.ID, open[1].ID)

	all, err := repo.ListByUser(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, done.ID, all[0].ID)
	assert.True(t, all[0].Completed)
	require.NotNil(t, all[0].CompletedAt)

	none, err := repo.ListByUser(ctx, "nobody", true)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReminderRepository_ListDue(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	past := createReminder(t, repo, "u1", "past", base.Add(-time.Minute))
	exact := createReminder(t, repo, "u1", "exact", base)
	createReminder(t, repo, "u1", "future", base.Add(time.Minute))
	completed := createReminder(t, repo, "u1", "completed", base.Add(-time.Hour))
	_, err := repo.Complete(ctx, completed.ID, "u1", base)
	require.NoError(t, err)

	due, err := repo.ListDue(ctx, "u1", base)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, past.ID, due[0].ID)
	assert.Equal(t, exact.ID, due[1].ID)
}

func TestReminderRepository_CompleteAndDeleteReportMisses(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	r := createReminder(t, repo, "u1", "x", base)

	ok, err := repo.Complete(ctx, uuid.New(), "u1", base)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, r.ID, "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, r.ID, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, r.ID, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReminderRepository_DueUnnotified(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	a := createReminder(t, repo, "u1", "a", base.Add(-2*time.Minute))
	b := createReminder(t, repo, "u2", "b", base.Add(-time.Minute))
	createReminder(t, repo, "u1", "later", base.Add(time.Hour))

	due, err := repo.ListDueUnnotified(ctx, base, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, a.ID, due[0].ID)

	limited, err := repo.ListDueUnnotified(ctx, base, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, repo.MarkNotified(ctx, a.ID, base))
	due, err = repo.ListDueUnnotified(ctx, base, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, b.ID, due[0].ID)

	got, err := repo.GetByID(ctx, a.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.NotifiedAt)

	assert.ErrorIs(t, repo.MarkNotified(ctx, uuid.New(), base), ErrReminderNotFound)
}

func TestReminderRepository_NonUTCInput(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	loc := time.FixedZone("UTC-5", -5*60*60)
	// 06:30 local is 11:30 UTC, before base
	r := createReminder(t, repo, "u1", "tz", time.Date(2024, time.January, 1, 6, 30, 0, 0, loc))

	due, err := repo.ListDue(ctx, "u1", base)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, r.ID, due[0].ID)
}
