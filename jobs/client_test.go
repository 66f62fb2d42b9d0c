package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type memoryEnqueuer struct {
	tasks  []*asynq.Task
	closed bool
}

func (e *memoryEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (e *memoryEnqueuer) Close() error {
	e.closed = true
	return nil
}

func TestEnqueueReportWarmup(t *testing.T) {
	queue := &memoryEnqueuer{}
	client := &Client{client: queue}

	_, err := client.EnqueueReportWarmup(context.Background(), ReportWarmupPayload{
		Start: "2024-01-01",
		End:   "2024-12-31",
	})
	require.NoError(t, err)

	require.Len(t, queue.tasks, 1)
	require.Equal(t, TaskReportWarmup, queue.tasks[0].Type())

	var payload ReportWarmupPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
	require.Equal(t, "2024-01-01", payload.Start)
	require.Equal(t, "2024-12-31", payload.End)
}

func TestEnqueueOverdueScan(t *testing.T) {
	queue := &memoryEnqueuer{}
	client := &Client{client: queue}

	_, err := client.EnqueueOverdueScan(context.Background(), OverdueScanPayload{Kind: "RECEIVABLE"})
	require.NoError(t, err)

	require.Len(t, queue.tasks, 1)
	require.Equal(t, TaskOverdueScan, queue.tasks[0].Type())

	var payload OverdueScanPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
	require.Equal(t, "RECEIVABLE", payload.Kind)

	require.NoError(t, client.Close())
	require.True(t, queue.closed)
}
