package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"atsmatch/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyFileList(t *testing.T) {
	_, err := New(nil, Options{}, func(context.Context, []string) {}, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}

func TestNewAppliesDefaultsAndDeduplicates(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")

	w, err := New([]string{resume, resume}, Options{}, func(context.Context, []string) {}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{resume}, w.Files())
	assert.Equal(t, DefaultDebounceDelay, w.debounceDelay)
	assert.Equal(t, DefaultBurst, w.limiter.Burst())
	assert.Equal(t, []string{dir}, w.directories())
}

func TestChangedFiles(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	job := filepath.Join(dir, "job.txt")
	require.NoError(t, os.WriteFile(resume, []byte("v1"), 0o600))
	require.NoError(t, os.WriteFile(job, []byte("v1"), 0o600))

	w, err := New([]string{resume, job}, Options{}, func(context.Context, []string) {}, nil)
	require.NoError(t, err)

	assert.Empty(t, w.changedFiles())

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(job, later, later))
	assert.Equal(t, []string{job}, w.changedFiles())
	assert.Empty(t, w.changedFiles())

	require.NoError(t, os.Remove(resume))
	assert.Equal(t, []string{resume}, w.changedFiles())
}

func TestChangedFilesDetectsSizeWithSameModTime(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resume, []byte("v1"), 0o600))

	stamp := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(resume, stamp, stamp))

	w, err := New([]string{resume}, Options{}, func(context.Context, []string) {}, nil)
	require.NoError(t, err)
	assert.Empty(t, w.changedFiles())

	require.NoError(t, os.WriteFile(resume, []byte("version two"), 0o600))
	require.NoError(t, os.Chtimes(resume, stamp, stamp))
	assert.Equal(t, []string{resume}, w.changedFiles())
	assert.Empty(t, w.changedFiles())
}

func TestRunCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resume, []byte("draft"), 0o600))

	changes := make(chan []string, 10)
	w, err := New([]string{resume}, Options{DebounceDelay: 20 * time.Millisecond, MaxRunsPerSecond: 100, Burst: 10},
		func(_ context.Context, changed []string) { changes <- changed }, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	var n int
	require.Eventually(t, func() bool {
		n++
		_ = os.WriteFile(resume, []byte(fmt.Sprintf("revision %d", n)), 0o600)
		select {
		case changed := <-changes:
			return assert.Equal(t, []string{resume}, changed)
		default:
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func TestFireDefersWhenThrottled(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resume, []byte("draft"), 0o600))

	var runs, throttled atomic.Int32
	w, err := New([]string{resume}, Options{
		DebounceDelay:    time.Hour,
		MaxRunsPerSecond: 0.001,
		Burst:            1,
		OnThrottled:      func(context.Context, string) { throttled.Add(1) },
	}, func(context.Context, []string) { runs.Add(1) }, nil)
	require.NoError(t, err)
	t.Cleanup(w.stopTimer)

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(resume, later, later))
	w.fire(context.Background())
	assert.Equal(t, int32(1), runs.Load())

	evenLater := later.Add(time.Minute)
	require.NoError(t, os.Chtimes(resume, evenLater, evenLater))
	w.fire(context.Background())
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, int32(1), throttled.Load())
}
