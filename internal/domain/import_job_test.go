package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportJobLifecycle(t *testing.T) {
	start := time.Now().UTC()

	t.Run("complete", func(t *testing.T) {
		job := NewImportJob("job-1", "user-1", []string{"SHIP-1"}, 100, start)
		assert.Equal(t, JobStatusStarted, job.Status)

		require.NoError(t, job.Complete(100, start.Add(5*time.Second)))
		assert.Equal(t, JobStatusCompleted, job.Status)
		assert.Equal(t, 100, job.ProcessedItems)
		assert.Equal(t, 5*time.Second, job.Duration())
	})

	t.Run("timeout keeps partial progress", func(t *testing.T) {
		job := NewImportJob("job-2", "user-1", []string{"SHIP-1", "SHIP-2"}, 200, start)
		require.NoError(t, job.Timeout(120, start.Add(time.Minute)))
		assert.Equal(t, JobStatusTimeout, job.Status)
		assert.Equal(t, 120, job.ProcessedItems)
		assert.Empty(t, job.Error)
	})

	t.Run("fail records error", func(t *testing.T) {
		job := NewImportJob("job-3", "user-1", []string{"SHIP-1"}, 50, start)
		require.NoError(t, job.Fail(10, "bulk write failed", start.Add(time.Second)))
		assert.Equal(t, JobStatusFailed, job.Status)
		assert.Equal(t, "bulk write failed", job.Error)
	})

	t.Run("terminal status is one-way", func(t *testing.T) {
		job := NewImportJob("job-4", "user-1", []string{"SHIP-1"}, 50, start)
		require.NoError(t, job.Complete(50, start.Add(time.Second)))

		assert.ErrorIs(t, job.Timeout(10, start.Add(2*time.Second)), ErrJobFinished)
		assert.ErrorIs(t, job.Fail(10, "late failure", start.Add(2*time.Second)), ErrJobFinished)
		assert.ErrorIs(t, job.Complete(60, start.Add(2*time.Second)), ErrJobFinished)

		assert.Equal(t, JobStatusCompleted, job.Status)
		assert.Equal(t, 50, job.ProcessedItems)
	})

	t.Run("open job has zero duration", func(t *testing.T) {
		job := NewImportJob("job-5", "user-1", nil, 0, start)
		assert.Zero(t, job.Duration())
	})
}

func TestJobStatusTerminal(t *testing.T) {
	assert.False(t, JobStatusStarted.Terminal())
	assert.True(t, JobStatusCompleted.Terminal())
	assert.True(t, JobStatusTimeout.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
}
