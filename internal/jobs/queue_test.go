package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, store ResultStore) *Worker {
	t.Helper()
	mr := miniredis.RunT(t)
	runner := NewRunner(store, zerolog.Nop(), WithSleep((&sleepRecorder{}).sleep))
	worker, err := NewWorker(
		asynq.RedisClientOpt{Addr: mr.Addr()},
		WorkerConfig{Queue: "calculation", Concurrency: 2},
		runner,
		zerolog.Nop(),
		nil,
	)
	require.NoError(t, err)
	return worker
}

func TestWorkerHandleTaskRunsJob(t *testing.T) {
	store := newRecordingStore()
	worker := newTestWorker(t, store)

	body, err := json.Marshal(Payload{JobID: "job-1", Digits: 4})
	require.NoError(t, err)

	require.NoError(t, worker.handleTask(context.Background(), asynq.NewTask(TaskTypeCalculatePi, body)))

	record, err := store.Get(context.Background(), "job-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, StateSucceeded, record.State)
	assert.Equal(t, "3.1416", record.Result)
}

func TestWorkerHandleTaskRejectsBadPayload(t *testing.T) {
	worker := newTestWorker(t, newRecordingStore())

	err := worker.handleTask(context.Background(), asynq.NewTask(TaskTypeCalculatePi, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = worker.handleTask(context.Background(), asynq.NewTask(TaskTypeCalculatePi, []byte(`{"digits":3}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWorkerHandleTaskFailureSkipsRetry(t *testing.T) {
	store := newRecordingStore()
	worker := newTestWorker(t, store)

	body, err := json.Marshal(Payload{JobID: "job-2", Digits: 0})
	require.NoError(t, err)

	err = worker.handleTask(context.Background(), asynq.NewTask(TaskTypeCalculatePi, body))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	record, _ := store.Get(context.Background(), "job-2")
	require.NotNil(t, record)
	assert.Equal(t, StateFailed, record.State)
}

func TestWorkerHandleTaskCanceledIsRequeued(t *testing.T) {
	worker := newTestWorker(t, newRecordingStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body, err := json.Marshal(Payload{JobID: "job-3", Digits: 2})
	require.NoError(t, err)

	err = worker.handleTask(ctx, asynq.NewTask(TaskTypeCalculatePi, body))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestNewWorkerValidates(t *testing.T) {
	_, err := NewWorker(asynq.RedisClientOpt{Addr: "localhost:0"}, WorkerConfig{Queue: "q"}, nil, zerolog.Nop(), nil)
	assert.Error(t, err)

	runner := NewRunner(newRecordingStore(), zerolog.Nop())
	_, err = NewWorker(asynq.RedisClientOpt{Addr: "localhost:0"}, WorkerConfig{}, runner, zerolog.Nop(), nil)
	assert.Error(t, err)
}

func TestAsynqEnqueuer(t *testing.T) {
	mr := miniredis.RunT(t)
	enqueuer := NewAsynqEnqueuer(asynq.RedisClientOpt{Addr: mr.Addr()}, "calculation")
	t.Cleanup(func() { _ = enqueuer.Close() })
	ctx := context.Background()

	require.NoError(t, enqueuer.Enqueue(ctx, Payload{JobID: "job-4", Digits: 10}))

	err := enqueuer.Enqueue(ctx, Payload{JobID: "job-4", Digits: 10})
	assert.ErrorIs(t, err, asynq.ErrTaskIDConflict)

	assert.Error(t, enqueuer.Enqueue(ctx, Payload{Digits: 10}))
}

func TestAsynqEnqueuerUnreachableBroker(t *testing.T) {
	mr := miniredis.RunT(t)
	enqueuer := NewAsynqEnqueuer(asynq.RedisClientOpt{Addr: mr.Addr()}, "calculation")
	t.Cleanup(func() { _ = enqueuer.Close() })
	mr.Close()

	assert.Error(t, enqueuer.Enqueue(context.Background(), Payload{JobID: "job-5", Digits: 1}))
}
