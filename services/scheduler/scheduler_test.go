package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *memLogger) Debug(string, ...interface{}) {}
func (l *memLogger) Info(string, ...interface{})  {}
func (l *memLogger) Warn(string, ...interface{})  {}
func (l *memLogger) Fatal(string, ...interface{}) {}
func (l *memLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func TestScheduler_Add(t *testing.T) {
	s := New(&memLogger{}, time.Second)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Add("sync", "0 */6 * * *", noop))
	require.NoError(t, s.Add("disabled", "", noop))
	assert.Equal(t, 1, s.Len())

	assert.Error(t, s.Add("bad", "every day", noop))
}

func TestScheduler_Run(t *testing.T) {
	logger := &memLogger{}
	s := New(logger, time.Second)
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("tick", "@every 1s", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}))

	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
	logger.mu.Lock()
	assert.Empty(t, logger.errors)
	logger.mu.Unlock()
}
