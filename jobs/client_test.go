package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientEnqueuesToDefaultQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	at := time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

	info, err := client.EnqueueHeartbeat(context.Background(), at)
	require.NoError(t, err)
	assert.Equal(t, TaskHeartbeat, info.Type)
	assert.Equal(t, QueueDefault, info.Queue)
	assert.Equal(t, asynq.TaskStatePending, info.State)

	info, err = client.EnqueueSessionPurge(context.Background(), at)
	require.NoError(t, err)
	assert.Equal(t, TaskSessionPurge, info.Type)
	assert.Equal(t, QueueDefault, info.Queue)

	pending, err := mr.List("asynq:{default}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 2, "both task ids sit in the pending list")
}
