package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcwang/marketscan/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	ran      chan struct{}
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error {
	select {
	case j.ran <- struct{}{}:
	default:
	}
	return nil
}

func newStubJob(name string) *stubJob {
	return &stubJob{name: name, schedule: "0 0 18 * * MON-FRI", ran: make(chan struct{}, 1)}
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(logger.NewNop())

	require.NoError(t, s.AddJob(newStubJob("scan")))
	assert.Error(t, s.AddJob(newStubJob("scan")))
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(logger.NewNop())

	job := newStubJob("scan")
	job.schedule = "not a cron spec"
	assert.Error(t, s.AddJob(job))
}

func TestRunJobUnknown(t *testing.T) {
	s := New(logger.NewNop())
	assert.Error(t, s.RunJob("missing"))
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := New(logger.NewNop())
	job := newStubJob("scan")
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("scan"))

	select {
	case <-job.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}

	// History is written after the job returns.
	deadline := time.Now().Add(2 * time.Second)
	for {
		history, err := s.GetJobHistory("scan")
		require.NoError(t, err)
		if len(history.Results) > 0 {
			assert.True(t, history.Results[0].Success)
			assert.Equal(t, 1.0, history.GetSuccessRate())
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("history never recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestJobHistoryBound(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "scan", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 100)
	assert.Len(t, h.GetLatestResults(10), 10)
}

func TestGetJobHistoryUnknown(t *testing.T) {
	s := New(logger.NewNop())
	_, err := s.GetJobHistory("missing")
	assert.Error(t, err)
}
