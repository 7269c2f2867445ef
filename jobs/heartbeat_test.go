package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-lms/meridian-lms/internal/perf"
	_ "github.com/meridian-lms/meridian-lms/testing"
)

type heartbeatSpy struct {
	mu       sync.Mutex
	statuses []string
}

func (s *heartbeatSpy) Heartbeat(ctx context.Context, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func heartbeatTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := NewHeartbeatTask(time.Now())
	require.NoError(t, err)
	return task
}

func TestHeartbeatOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	spy := &heartbeatSpy{}
	job := NewHeartbeatJob(srv.URL, spy, nil, nil)

	require.NoError(t, job.Handle(context.Background(), heartbeatTask(t)))
	assert.Equal(t, []string{perf.StatusOnline}, spy.statuses)
}

func TestHeartbeatServerErrorIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	spy := &heartbeatSpy{}
	job := NewHeartbeatJob(srv.URL, spy, nil, nil)

	require.NoError(t, job.Handle(context.Background(), heartbeatTask(t)))
	assert.Equal(t, []string{perf.StatusOffline}, spy.statuses)
}

func TestHeartbeatUnreachableIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	spy := &heartbeatSpy{}
	job := NewHeartbeatJob(srv.URL, spy, nil, nil)

	require.NoError(t, job.Handle(context.Background(), heartbeatTask(t)), "an offline probe is a verdict, not a job failure")
	assert.Equal(t, []string{perf.StatusOffline}, spy.statuses)
}

func TestHeartbeatMalformedPayloadSkipsRetry(t *testing.T) {
	spy := &heartbeatSpy{}
	job := NewHeartbeatJob("http://127.0.0.1:1", spy, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskHeartbeat, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, spy.statuses)
}
