package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TaskTypeCalculatePi は円周率計算ジョブのタスク種別です。
const TaskTypeCalculatePi = "pi:calculate"

// Payload はキューに載せるジョブのペイロードです。
type Payload struct {
	JobID  string `json:"jobId"`
	Digits int    `json:"digits"`
}

// Enqueuer はジョブを非同期キューに投入します。
type Enqueuer interface {
	Enqueue(ctx context.Context, payload Payload) error
}

// AsynqEnqueuer は asynq クライアントで Enqueuer を実装します。
type AsynqEnqueuer struct {
	client *asynq.Client
	queue  string
}

// NewAsynqEnqueuer は AsynqEnqueuer を作成します。
func NewAsynqEnqueuer(opt asynq.RedisConnOpt, queue string) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client: asynq.NewClient(opt),
		queue:  queue,
	}
}

// Enqueue はジョブをキューに投入します。
// ジョブIDをタスクIDとして使うため、同じジョブが二重に投入されることはありません。
func (e *AsynqEnqueuer) Enqueue(ctx context.Context, payload Payload) error {
	if payload.JobID == "" {
		return fmt.Errorf("payload.JobID is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeCalculatePi, body)
	_, err = e.client.EnqueueContext(ctx, task,
		asynq.Queue(e.queue),
		asynq.TaskID(payload.JobID),
		asynq.MaxRetry(0),
	)
	return err
}

// Close はクライアントを閉じます。
func (e *AsynqEnqueuer) Close() error {
	return e.client.Close()
}

// WorkerConfig は Worker の設定です。
type WorkerConfig struct {
	Queue       string
	Concurrency int
}

// Worker は Asynq サーバー上で Runner を実行します。
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner *Runner
	logger zerolog.Logger
}

// NewWorker は Worker を初期化します。
func NewWorker(opt asynq.RedisConnOpt, cfg WorkerConfig, runner *Runner, logger zerolog.Logger, asynqLogger asynq.Logger) (*Worker, error) {
	if runner == nil {
		return nil, errors.New("runner is nil")
	}
	if cfg.Queue == "" {
		return nil, errors.New("queue is required")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				cfg.Queue: 1,
			},
			Logger: asynqLogger,
		},
	)

	mux := asynq.NewServeMux()
	worker := &Worker{
		server: server,
		mux:    mux,
		runner: runner,
		logger: logger,
	}
	mux.HandleFunc(TaskTypeCalculatePi, worker.handleTask)
	return worker, nil
}

// Start はワーカーをバックグラウンドで起動します。
func (w *Worker) Start() error {
	return w.server.Start(w.mux)
}

// Shutdown は処理中のタスクを待ってからサーバーを停止します。
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleTask(ctx context.Context, task *asynq.Task) error {
	var payload Payload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		w.logger.Error().Err(err).Msg("discarding malformed task payload")
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.JobID == "" {
		return fmt.Errorf("missing jobId in payload: %w", asynq.SkipRetry)
	}

	err := w.runner.Run(ctx, payload.JobID, payload.Digits)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		// シャットダウン時は asynq がタスクを再投入するので、そのまま返す
		return err
	default:
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
}
