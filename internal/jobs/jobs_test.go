package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
	"turnover/internal/events"
	"turnover/internal/models"
	"turnover/internal/repositories"
	"turnover/internal/services"
	"turnover/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) RunAssignmentPass(ctx context.Context) (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(channel events.Channel, event events.Event) error {
	return m.Called(channel, event.Type).Error(0)
}

func TestAssignmentPassJob_BroadcastsWhenJobsCreated(t *testing.T) {
	runner := &mockRunner{}
	runner.On("RunAssignmentPass").Return(3, nil)
	publisher := &mockPublisher{}
	publisher.On("Publish", events.BROADCAST_CHANNEL, events.PASS_COMPLETED).Return(nil)

	job := NewAssignmentPassJob(runner, publisher, services.EveryInterval)
	require.NoError(t, job.Execute(context.Background()))

	assert.Equal(t, "AssignmentPass", job.Name())
	assert.Equal(t, services.EveryInterval, job.Schedule())
	publisher.AssertExpectations(t)
}

func TestAssignmentPassJob_QuietPass(t *testing.T) {
	runner := &mockRunner{}
	runner.On("RunAssignmentPass").Return(0, nil)
	publisher := &mockPublisher{}

	job := NewAssignmentPassJob(runner, publisher, services.EveryInterval)
	require.NoError(t, job.Execute(context.Background()))
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestAssignmentPassJob_ReturnsPassFailure(t *testing.T) {
	runner := &mockRunner{}
	runner.On("RunAssignmentPass").Return(0, errors.New("db down"))

	job := NewAssignmentPassJob(runner, &mockPublisher{}, services.EveryInterval)
	assert.Error(t, job.Execute(context.Background()))
}

func TestSyncLogRetentionJob_PrunesOldEntries(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	ctx := context.Background()

	old := &models.SyncLog{Source: models.SyncSourceScheduler, Message: "stale"}
	require.NoError(t, repos.SyncLog.Create(ctx, db.SQL, old))
	require.NoError(t, repos.SyncLog.Create(ctx, db.SQL, &models.SyncLog{
		Source:  models.SyncSourceScheduler,
		Message: "recent",
	}))
	require.NoError(t, db.SQL.Model(old).Update("created_at", time.Now().UTC().AddDate(0, 0, -31)).Error)

	job := NewSyncLogRetentionJob(db.SQL, repos.SyncLog, services.Daily)
	require.NoError(t, job.Execute(ctx))

	remaining, err := repos.SyncLog.GetRecent(ctx, db.SQL, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent", remaining[0].Message)
}
