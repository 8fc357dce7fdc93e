package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickJob struct {
	ran chan struct{}
}

func (j *tickJob) Name() string       { return "tick" }
func (j *tickJob) Schedule() Schedule { return EveryInterval }
func (j *tickJob) Execute(ctx context.Context) error {
	select {
	case j.ran <- struct{}{}:
	default:
	}
	return nil
}

func TestSchedulerService_RunsIntervalJobImmediately(t *testing.T) {
	scheduler := NewSchedulerService(time.Hour)
	job := &tickJob{ran: make(chan struct{}, 1)}

	require.NoError(t, scheduler.AddJob(job))
	assert.Equal(t, 1, scheduler.GetJobCount())
	assert.False(t, scheduler.IsRunning())
	assert.Nil(t, scheduler.GetNextRunTime())

	require.NoError(t, scheduler.Start(context.Background()))
	defer func() { _ = scheduler.Stop(context.Background()) }()

	assert.True(t, scheduler.IsRunning())

	select {
	case <-job.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("interval job did not run at start")
	}

	next := scheduler.GetNextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))
}

func TestSchedulerService_StartWithoutJobs(t *testing.T) {
	scheduler := NewSchedulerService(time.Minute)

	require.NoError(t, scheduler.Start(context.Background()))
	assert.False(t, scheduler.IsRunning())
	require.NoError(t, scheduler.Stop(context.Background()))
}
