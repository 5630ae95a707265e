package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/breezepoint/breezepoint-backend/pkg/logger"
)

type fakeOutboxPruner struct {
	cutoff      time.Time
	minAttempts int
	calls       int
	err         error
}

func (f *fakeOutboxPruner) DeletePublishedBefore(_ context.Context, _ *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	f.minAttempts = minAttemptCount
	return 7, f.err
}

type fakeDeadLetterPruner struct {
	cutoff time.Time
	calls  int
	err    error
}

func (f *fakeDeadLetterPruner) DeleteFailedBefore(_ context.Context, _ *gorm.DB, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return 2, f.err
}

var retentionNow = time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

func retentionJobForTest(t *testing.T, params OutboxRetentionJobParams) *outboxRetentionJob {
	t.Helper()
	params.Logger = logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	params.DB = passthroughTx{}
	job, err := NewOutboxRetentionJob(params)
	require.NoError(t, err)
	impl := job.(*outboxRetentionJob)
	impl.now = func() time.Time { return retentionNow }
	return impl
}

func TestOutboxRetentionJobUsesDefaults(t *testing.T) {
	events := &fakeOutboxPruner{}
	dead := &fakeDeadLetterPruner{}
	job := retentionJobForTest(t, OutboxRetentionJobParams{Outbox: events, DeadLetters: dead})

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, retentionNow.Add(-defaultOutboxRetention), events.cutoff)
	assert.Equal(t, defaultOutboxMinAttempts, events.minAttempts)
	assert.Equal(t, retentionNow.Add(-defaultDLQRetention), dead.cutoff)
	assert.Equal(t, 1, events.calls)
	assert.Equal(t, 1, dead.calls)
}

func TestOutboxRetentionJobHonoursConfiguredWindows(t *testing.T) {
	events := &fakeOutboxPruner{}
	dead := &fakeDeadLetterPruner{}
	job := retentionJobForTest(t, OutboxRetentionJobParams{
		Outbox:       events,
		DeadLetters:  dead,
		Retention:    7 * 24 * time.Hour,
		DLQRetention: 14 * 24 * time.Hour,
		MinAttempts:  3,
	})

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, retentionNow.Add(-7*24*time.Hour), events.cutoff)
	assert.Equal(t, retentionNow.Add(-14*24*time.Hour), dead.cutoff)
	assert.Equal(t, 3, events.minAttempts)
}

func TestOutboxRetentionJobSkipsDeadLettersWhenUnset(t *testing.T) {
	events := &fakeOutboxPruner{}
	job := retentionJobForTest(t, OutboxRetentionJobParams{Outbox: events})

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, events.calls)
}

func TestOutboxRetentionJobStopsOnOutboxError(t *testing.T) {
	events := &fakeOutboxPruner{err: errors.New("boom")}
	dead := &fakeDeadLetterPruner{}
	job := retentionJobForTest(t, OutboxRetentionJobParams{Outbox: events, DeadLetters: dead})

	err := job.Run(context.Background())
	require.ErrorContains(t, err, "prune outbox events")
	assert.Zero(t, dead.calls)
}

func TestOutboxRetentionJobRequiresOutbox(t *testing.T) {
	_, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger: logger.New(logger.Options{Output: io.Discard}),
		DB:     passthroughTx{},
	})
	require.Error(t, err)
}
