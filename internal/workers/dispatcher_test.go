package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/benvon/talk-to-my-ai/internal/queue"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dispatchNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu        sync.Mutex
	due       []*models.Reminder
	listErr   error
	markErr   error
	limit     int
	listedAt  time.Time
	notified  []uuid.UUID
	listCalls int
}

func (f *fakeSource) ListDueUnnotified(_ context.Context, now time.Time, limit int) ([]*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.limit = limit
	f.listedAt = now
	return f.due, f.listErr
}

func (f *fakeSource) MarkNotified(_ context.Context, id uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, id)
	return f.markErr
}

type fakeQueue struct {
	mu     sync.Mutex
	jobs   []*queue.Job
	failOn map[uuid.UUID]bool
	err    error
}

func (f *fakeQueue) Enqueue(_ context.Context, job *queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if job.Reminder != nil && f.failOn[job.Reminder.ReminderID] {
		return errors.New("broker unavailable")
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func dueReminder(title string) *models.Reminder {
	return &models.Reminder{ID: uuid.New(), UserID: "u1", Title: title, RemindAt: dispatchNow.Add(-time.Minute)}
}

func newTestDispatcher(src *fakeSource, q *fakeQueue) *Dispatcher {
	d := NewDispatcher(src, q, nil, nil, time.Minute)
	d.now = func() time.Time { return dispatchNow }
	return d
}

func TestDispatcher_RunOnce(t *testing.T) {
	t.Parallel()

	first, second := dueReminder("stretch"), dueReminder("call mom")
	src := &fakeSource{due: []*models.Reminder{first, second}}
	q := &fakeQueue{}

	n, err := newTestDispatcher(src, q).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, DefaultDispatchBatch, src.limit)
	assert.True(t, dispatchNow.Equal(src.listedAt))
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, src.notified)

	require.Len(t, q.jobs, 2)
	assert.Equal(t, queue.JobTypeReminderDue, q.jobs[0].Type)
	assert.Equal(t, "stretch", q.jobs[0].Reminder.Title)
	assert.Equal(t, "u1", q.jobs[0].UserID)
}

func TestDispatcher_EnqueueFailureLeavesReminderUnnotified(t *testing.T) {
	t.Parallel()

	ok, broken := dueReminder("ok"), dueReminder("broken")
	src := &fakeSource{due: []*models.Reminder{broken, ok}}
	q := &fakeQueue{failOn: map[uuid.UUID]bool{broken.ID: true}}

	n, err := newTestDispatcher(src, q).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uuid.UUID{ok.ID}, src.notified)
}

func TestDispatcher_MarkFailureStillCounts(t *testing.T) {
	t.Parallel()

	src := &fakeSource{due: []*models.Reminder{dueReminder("x")}, markErr: errors.New("db down")}
	n, err := newTestDispatcher(src, &fakeQueue{}).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDispatcher_ListError(t *testing.T) {
	t.Parallel()

	src := &fakeSource{listErr: errors.New("db down")}
	n, err := newTestDispatcher(src, &fakeQueue{}).RunOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestDispatcher_StartPollsImmediately(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	d := newTestDispatcher(src, &fakeQueue{})
	d.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.listCalls > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
